package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagNumber
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Type     flagType
	Desc     string
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed argument values, e.g. subcommands
	FilePattern string   // glob for file arguments
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSets.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"engine":       {Values: []string{"xelatex", "chromium"}},
	"config":       {FileGlob: "*.yaml,*.yml"},
	"output":       {FileGlob: "*.pdf"},
	"template":     {FileGlob: "*.md"},
	"metrics-file": {FileGlob: "*.prom"},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet,
// enriched with flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int64", "float64", "duration":
			fd.Type = flagNumber
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the same FlagSets the commands parse.
func getCommands() []commandDef {
	env := &Environment{Stdout: io.Discard, Stderr: io.Discard}

	return []commandDef{
		{Name: "generate", Desc: "Generate the cover page of a document", Flags: extractFlagsFromFlagSet(generateFlagSet(&generateFlags{}, env))},
		{Name: "process", Desc: "Print the file paths to deliver for a document", Flags: extractFlagsFromFlagSet(processFlagSet(&processFlags{}, env))},
		{Name: "warm", Desc: "Fill the file cache for many documents", Flags: extractFlagsFromFlagSet(warmFlagSet(&warmFlags{}, env))},
		{Name: "templates", Desc: "List, check, or install cover templates", Flags: extractFlagsFromFlagSet(templatesFlagSet("templates", &templatesFlags{}, env)), Args: []string{"list", "check", "init"}},
		{Name: "import", Desc: "Load a JSONL export into the catalog", Flags: extractFlagsFromFlagSet(importFlagSet(&commonFlags{}, env)), FilePattern: "*.jsonl"},
		{Name: "inspect", Desc: "Show page counts of PDF files", Flags: extractFlagsFromFlagSet(inspectFlagSet(&inspectFlags{}, env)), FilePattern: "*.pdf"},
		{Name: "doctor", Desc: "Check the toolchain and workspace", Flags: extractFlagsFromFlagSet(doctorFlagSet(&doctorFlags{}, env))},
		{Name: "completion", Desc: "Generate shell completion script", Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish)}},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var buf bytes.Buffer
	commands := getCommands()

	switch shell {
	case ShellBash:
		generateBash(&buf, commands)
	case ShellZsh:
		generateZsh(&buf, commands)
	case ShellFish:
		generateFish(&buf, commands)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func generateBash(b *bytes.Buffer, commands []commandDef) {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
	}

	b.WriteString("# bash completion for opuspdf\n")
	b.WriteString("_opuspdf() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(names, " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	// Values of flags that take one.
	b.WriteString("    case \"${prev}\" in\n")
	seen := make(map[string]bool)
	for _, c := range commands {
		for _, f := range c.Flags {
			if seen[f.Long] || f.Type == flagBool {
				continue
			}
			seen[f.Long] = true
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern = "-" + f.Short + "|" + pattern
			}
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(b, "        %s) COMPREPLY=($(compgen -W %q -- \"${cur}\")); return ;;\n", pattern, strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(b, "        %s) COMPREPLY=($(compgen -f -- \"${cur}\")); return ;;\n", pattern)
			case flagDir:
				fmt.Fprintf(b, "        %s) COMPREPLY=($(compgen -d -- \"${cur}\")); return ;;\n", pattern)
			default:
				fmt.Fprintf(b, "        %s) return ;;\n", pattern)
			}
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"${cmd}\" in\n")
	for _, c := range commands {
		var words []string
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
			if f.Short != "" {
				words = append(words, "-"+f.Short)
			}
		}
		words = append(words, c.Args...)
		switch {
		case c.FilePattern != "":
			fmt.Fprintf(b, "        %s) COMPREPLY=($(compgen -W %q -- \"${cur}\") $(compgen -f -- \"${cur}\")) ;;\n", c.Name, strings.Join(words, " "))
		case len(words) > 0:
			fmt.Fprintf(b, "        %s) COMPREPLY=($(compgen -W %q -- \"${cur}\")) ;;\n", c.Name, strings.Join(words, " "))
		}
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _opuspdf opuspdf\n")
}

func generateZsh(b *bytes.Buffer, commands []commandDef) {
	b.WriteString("#compdef opuspdf\n\n")
	b.WriteString("_opuspdf() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range commands {
		fmt.Fprintf(b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range commands {
		if len(c.Flags) == 0 && len(c.Args) == 0 && c.FilePattern == "" {
			continue
		}
		fmt.Fprintf(b, "        %s)\n", c.Name)
		b.WriteString("            _arguments")
		for _, f := range c.Flags {
			b.WriteString(" \\\n                ")
			b.WriteString(zshFlagSpec(f))
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(b, " \\\n                '1:argument:(%s)'", strings.Join(c.Args, " "))
		case c.FilePattern != "":
			fmt.Fprintf(b, " \\\n                '*:file:_files -g \"%s\"'", c.FilePattern)
		}
		b.WriteString("\n            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _opuspdf opuspdf\n")
}

func zshFlagSpec(f flagDef) string {
	desc := zshEscape(f.Desc)
	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagFile:
		action = fmt.Sprintf(":file:_files -g \"%s\"", strings.ReplaceAll(f.FileGlob, ",", " "))
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":" + f.Long + ":"
	}

	if f.Short != "" {
		return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
	}
	return fmt.Sprintf("'--%s[%s]%s'", f.Long, desc, action)
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")
	return r.Replace(s)
}

func generateFish(b *bytes.Buffer, commands []commandDef) {
	b.WriteString("# fish completion for opuspdf\n")
	b.WriteString("complete -c opuspdf -f\n")
	for _, c := range commands {
		fmt.Fprintf(b, "complete -c opuspdf -n __fish_use_subcommand -a %s -d %s\n", c.Name, fishQuote(c.Desc))
	}
	for _, c := range commands {
		cond := fmt.Sprintf("'__fish_seen_subcommand_from %s'", c.Name)
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c opuspdf -n %s -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -xa " + fishQuote(strings.Join(f.Values, " "))
			case flagFile, flagDir:
				line += " -r -F"
			default:
				line += " -x"
			}
			b.WriteString(line + " -d " + fishQuote(f.Desc) + "\n")
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(b, "complete -c opuspdf -n %s -a %s\n", cond, fishQuote(strings.Join(c.Args, " ")))
		}
		if c.FilePattern != "" {
			fmt.Fprintf(b, "complete -c opuspdf -n %s -F\n", cond)
		}
	}
}

func fishQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: opuspdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(opuspdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(opuspdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    opuspdf completion fish > ~/.config/fish/completions/opuspdf.fish")
}
