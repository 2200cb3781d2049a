package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/OPUS4/opus4-pdf/internal/fileutil"
	"github.com/OPUS4/opus4-pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrEmptyConfigName   = errors.New("config name cannot be empty")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrConfigInvalid     = errors.New("invalid config")
	ErrInvalidCollection = errors.New("invalid collection key")
)

// Supported PDF engines.
const (
	EngineXeLaTeX  = "xelatex"
	EngineChromium = "chromium"
)

// Field length limits.
const (
	MaxNameLength     = 200
	MaxURLLength      = 2048
	MaxPathLength     = 4096
	MaxTemplateLength = 255
)

// Defaults applied by DefaultConfig and LoadConfig.
const (
	DefaultTemplate = "default-cover.md"
	DefaultPandoc   = "pandoc"
	DefaultTimeout  = 2 * time.Minute
	DefaultLogLevel = "info"
)

// DefaultConfigKeys lists the repository settings exposed to templates as config-* variables.
var DefaultConfigKeys = []string{"name", "url"}

// Config holds repository settings relevant to cover generation.
//
// Decoding is lenient: the file may carry other repository settings, all of
// which stay reachable through Value for template metadata.
type Config struct {
	Name      string         `yaml:"name"`
	URL       string         `yaml:"url"`
	Workspace string         `yaml:"workspace"`
	Catalog   string         `yaml:"catalog"`
	PDF       PDFConfig      `yaml:"pdf"`
	Licences  LicencesConfig `yaml:"licences"`
	Log       LogConfig      `yaml:"log"`

	raw map[string]any
}

// PDFConfig groups PDF related settings.
type PDFConfig struct {
	Covers CoversConfig `yaml:"covers"`
}

// CoversConfig defines cover generation options.
type CoversConfig struct {
	Default    string   `yaml:"default"`    // Template name used when nothing more specific matches
	Path       string   `yaml:"path"`       // Templates directory
	Engine     string   `yaml:"engine"`     // "xelatex" (default) or "chromium"
	Pandoc     string   `yaml:"pandoc"`     // Pandoc executable
	Timeout    string   `yaml:"timeout"`    // Per-stage deadline, Go duration syntax
	KeepTemp   bool     `yaml:"keepTemp"`   // Keep intermediate files for debugging
	ConfigKeys []string `yaml:"configKeys"` // Settings exposed as config-* metadata
}

// LicencesConfig defines licence related options.
type LicencesConfig struct {
	Logos LogosConfig `yaml:"logos"`
}

// LogosConfig locates licence logo images.
type LogosConfig struct {
	Path string `yaml:"path"`
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"` // debug, info, warn, error
	Pretty bool   `yaml:"pretty"`
}

// DefaultConfig returns a configuration with defaults and no workspace.
func DefaultConfig() *Config {
	cfg := &Config{raw: map[string]any{}}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.PDF.Covers.Default == "" {
		c.PDF.Covers.Default = DefaultTemplate
	}
	if c.PDF.Covers.Engine == "" {
		c.PDF.Covers.Engine = EngineXeLaTeX
	}
	if c.PDF.Covers.Pandoc == "" {
		c.PDF.Covers.Pandoc = DefaultPandoc
	}
	if c.PDF.Covers.ConfigKeys == nil {
		c.PDF.Covers.ConfigKeys = append([]string(nil), DefaultConfigKeys...)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks field values and the collection template table.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Length(0, MaxNameLength)),
		validation.Field(&c.URL, validation.Length(0, MaxURLLength)),
		validation.Field(&c.Workspace, validation.Length(0, MaxPathLength)),
		validation.Field(&c.Catalog, validation.Length(0, MaxPathLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	covers := &c.PDF.Covers
	err = validation.ValidateStruct(covers,
		validation.Field(&covers.Default, validation.Length(0, MaxTemplateLength)),
		validation.Field(&covers.Path, validation.Length(0, MaxPathLength)),
		validation.Field(&covers.Engine, validation.In(EngineXeLaTeX, EngineChromium)),
		validation.Field(&covers.Timeout, validation.By(checkDuration)),
		validation.Field(&covers.ConfigKeys, validation.Each(validation.Required, validation.Length(1, MaxNameLength))),
	)
	if err != nil {
		return fmt.Errorf("%w: pdf.covers: %v", ErrConfigInvalid, err)
	}

	err = validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
	)
	if err != nil {
		return fmt.Errorf("%w: log: %v", ErrConfigInvalid, err)
	}

	if _, err := c.CollectionTemplates(); err != nil {
		return err
	}
	return nil
}

func checkDuration(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return errors.New("must be a duration such as 90s or 2m")
	}
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

// Timeout returns the per-stage deadline, DefaultTimeout when unset.
func (c *Config) Timeout() time.Duration {
	if d, err := time.ParseDuration(c.PDF.Covers.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// Value returns the setting found at a dotted key, "" when missing or not a scalar.
func (c *Config) Value(dottedKey string) string {
	v, _ := yamlutil.LookupString(c.raw, dottedKey)
	return v
}

// CollectionTemplates returns the cover template configured per collection
// under collection.<id>.cover. Keys must be positive integers.
func (c *Config) CollectionTemplates() (map[int]string, error) {
	templates := make(map[int]string)

	node, ok := yamlutil.Lookup(c.raw, "collection")
	if !ok || node == nil {
		return templates, nil
	}

	entries, err := mapEntries(node)
	if err != nil {
		return nil, fmt.Errorf("%w: collection: %v", ErrInvalidCollection, err)
	}

	for key, value := range entries {
		id, err := strconv.Atoi(key)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q is not a collection id", ErrInvalidCollection, key)
		}
		cover, _ := yamlutil.LookupString(value, "cover")
		if cover == "" {
			continue
		}
		if len(cover) > MaxTemplateLength {
			return nil, fmt.Errorf("%w: collection.%d.cover exceeds %d characters", ErrInvalidCollection, id, MaxTemplateLength)
		}
		templates[id] = cover
	}
	return templates, nil
}

func mapEntries(node any) (map[string]any, error) {
	switch m := node.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a mapping, got %T", node)
}

// SetValue overrides a top-level scalar setting, keeping Value in sync with
// the typed fields. Used for CLI and environment overrides of name and url.
func (c *Config) SetValue(key, value string) {
	if c.raw == nil {
		c.raw = map[string]any{}
	}
	c.raw[key] = value
}

// Workspace layout.

// FilecacheDir returns {workspace}/filecache.
func (c *Config) FilecacheDir() string { return c.workspaceDir("filecache") }

// TempDir returns {workspace}/tmp.
func (c *Config) TempDir() string { return c.workspaceDir("tmp") }

// FilesDir returns {workspace}/files, where document files are stored per document id.
func (c *Config) FilesDir() string { return c.workspaceDir("files") }

func (c *Config) workspaceDir(name string) string {
	if c.Workspace == "" {
		return ""
	}
	return filepath.Join(c.Workspace, name)
}

// TemplatesDir returns the configured templates directory, falling back to
// {workspace}/covers.
func (c *Config) TemplatesDir() string {
	if c.PDF.Covers.Path != "" {
		return c.PDF.Covers.Path
	}
	return c.workspaceDir("covers")
}

// LogosDir returns the licence logos directory, "" when not configured.
func (c *Config) LogosDir() string {
	return c.Licences.Logos.Path
}

// EnsureWorkspace creates the filecache and tmp directories.
func (c *Config) EnsureWorkspace() error {
	for _, dir := range []string{c.FilecacheDir(), c.TempDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// SortedCollectionIDs returns the ids of CollectionTemplates in ascending order.
func SortedCollectionIDs(templates map[int]string) []int {
	ids := make([]int, 0, len(templates))
	for id := range templates {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yamlutil.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	raw := map[string]any{}
	if err := yamlutil.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.raw = raw

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/opus4-pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "opus4-pdf", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
