package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: opuspdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate     Generate the cover page of a document")
	fmt.Fprintln(w, "  process      Print the file paths to deliver for a document")
	fmt.Fprintln(w, "  warm         Fill the file cache for many documents")
	fmt.Fprintln(w, "  templates    List, check, or install cover templates")
	fmt.Fprintln(w, "  import       Load a JSONL export into the catalog")
	fmt.Fprintln(w, "  inspect      Show page counts of PDF files")
	fmt.Fprintln(w, "  doctor       Check the toolchain and workspace")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'opuspdf help <command>' for details on a specific command.")
}

// printCommonFlags prints the flags every config-aware command accepts.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log debug details")
}

func printCoverFlags(w io.Writer) {
	fmt.Fprintln(w, "      --engine <s>          PDF engine: xelatex, chromium")
	fmt.Fprintln(w, "      --timeout <d>         Per-stage deadline (e.g., 90s, 2m)")
	fmt.Fprintln(w, "      --keep-temp           Keep intermediate files")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: opuspdf generate <docId> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate the cover page of a document and write it to the current directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default {docId}.pdf)")
	fmt.Fprintln(w, "  -t, --template <name>     Template name or path, overrides collection templates")
	printCoverFlags(w)
	printCommonFlags(w)
}

// printProcessUsage prints usage for the process command.
func printProcessUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: opuspdf process <docId> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Prepend covers to the PDF files of a document and print the path to deliver")
	fmt.Fprintln(w, "for each file: the cached copy, or the original when no cover can be added.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -f, --file <name>         Only process this file")
	fmt.Fprintln(w, "      --refresh             Drop cached covers of the document first")
	printCoverFlags(w)
	printCommonFlags(w)
}

// printWarmUsage prints usage for the warm command.
func printWarmUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: opuspdf warm [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fill the file cache for every document of the catalog.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --collection <id>     Only documents in this collection or below")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --rate <n>            Maximum documents per second (0 = unlimited)")
	fmt.Fprintln(w, "      --metrics-file <path> Write Prometheus metrics in text format")
	printCoverFlags(w)
	printCommonFlags(w)
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: opuspdf templates <list|check|init> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  list                      List templates and their assignments")
	fmt.Fprintln(w, "  check [name...]           Check front matter and image references")
	fmt.Fprintln(w, "  init [dir]                Install the starter templates")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print check reports as JSON")
	fmt.Fprintln(w, "      --force               Overwrite existing files on init")
	printCommonFlags(w)
}

// printImportUsage prints usage for the import command.
func printImportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: opuspdf import <file.jsonl> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load documents and collections from a JSONL export into the catalog.")
	fmt.Fprintln(w, "Records replace existing ones with the same id. An invalid line aborts")
	fmt.Fprintln(w, "the import without changes.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printCommonFlags(w)
}

// printInspectUsage prints usage for the inspect command.
func printInspectUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: opuspdf inspect <file.pdf...> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show the page count of PDF files.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --text                Include the text of the first page")
	fmt.Fprintln(w, "      --json                Print results as JSON")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: opuspdf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check pandoc, the PDF engines, and the workspace.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print results as JSON")
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "generate":
		printGenerateUsage(env.Stdout)
	case "process":
		printProcessUsage(env.Stdout)
	case "warm":
		printWarmUsage(env.Stdout)
	case "templates":
		printTemplatesUsage(env.Stdout)
	case "import":
		printImportUsage(env.Stdout)
	case "inspect":
		printInspectUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: opuspdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: opuspdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
