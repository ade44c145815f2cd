package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/form"
	"github.com/goliatone/go-adlform/pkg/schema"
)

const (
	appDir       = "adlform"
	fileName     = "config.yaml"
	databaseName = "assistants.db"
)

// Config holds the CLI settings. Zero-valued fields in a config file keep the
// defaults from Default.
type Config struct {
	// SchemaSource is a file path or http(s) URL. Empty selects the built-in
	// assistant schema.
	SchemaSource string `yaml:"schema_source,omitempty"`
	// OpenAPIComponent names the components.schemas entry to use when
	// SchemaSource is an OpenAPI document.
	OpenAPIComponent  string        `yaml:"openapi_component,omitempty"`
	DatabasePath      string        `yaml:"database_path,omitempty"`
	DefaultMode       string        `yaml:"default_mode,omitempty"`
	LongTextThreshold int           `yaml:"long_text_threshold,omitempty"`
	ToolsPath         string        `yaml:"tools_path,omitempty"`
	LogLevel          string        `yaml:"log_level,omitempty"`
	HTTPTimeout       time.Duration `yaml:"http_timeout,omitempty"`
	Owner             string        `yaml:"owner,omitempty"`
	Author            AuthorConfig  `yaml:"author,omitempty"`
}

// AuthorConfig fills metadata.author when a new document is created.
type AuthorConfig struct {
	Name         string `yaml:"name,omitempty"`
	Email        string `yaml:"email,omitempty"`
	Organization string `yaml:"organization,omitempty"`
	Role         string `yaml:"role,omitempty"`
	Contact      string `yaml:"contact,omitempty"`
}

// Dir returns $XDG_CONFIG_HOME/adlform, or the platform equivalent.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "." + appDir
	}
	return filepath.Join(base, appDir)
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), fileName)
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DatabasePath:      filepath.Join(Dir(), databaseName),
		DefaultMode:       schema.ModeSimple.String(),
		LongTextThreshold: form.DefaultLongTextThreshold,
		ToolsPath:         form.DefaultToolsPath.String(),
		LogLevel:          "warn",
		HTTPTimeout:       10 * time.Second,
		Owner:             currentUser(),
	}
}

// Load reads path over the defaults. An empty path selects DefaultPath, and a
// missing default file yields the defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		return LoadFromPath(path)
	}
	cfg, err := LoadFromPath(DefaultPath())
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFromPath reads and validates the config file at path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate checks the fields that have a fixed vocabulary.
func (c *Config) Validate() error {
	if _, err := c.Mode(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Tools(); err != nil {
		return err
	}
	if c.LongTextThreshold < 0 {
		return fmt.Errorf("long_text_threshold must not be negative, got %d", c.LongTextThreshold)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative, got %s", c.HTTPTimeout)
	}
	return nil
}

// Mode parses DefaultMode.
func (c *Config) Mode() (schema.Mode, error) {
	return schema.ParseMode(c.DefaultMode)
}

// Level parses LogLevel. Empty means warn.
func (c *Config) Level() (slog.Level, error) {
	return ParseLevel(c.LogLevel)
}

// Tools parses ToolsPath. Empty selects form.DefaultToolsPath.
func (c *Config) Tools() (document.Path, error) {
	if strings.TrimSpace(c.ToolsPath) == "" {
		return form.DefaultToolsPath, nil
	}
	path, err := document.ParsePath(c.ToolsPath)
	if err != nil {
		return nil, fmt.Errorf("tools_path: %w", err)
	}
	return path, nil
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", raw)
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "local"
}
