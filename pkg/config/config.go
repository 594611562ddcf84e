package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// Embedded default configuration
//
//go:embed default_config.toml
var embeddedConfigData []byte

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables that override file configuration.
const (
	EnvTagFilter  = "COMPMAP_TAG_FILTER"
	EnvListenAddr = "COMPMAP_LISTEN_ADDR"
	EnvLogFormat  = "COMPMAP_LOG_FORMAT"
	EnvColor      = "COMPMAP_COLOR"
)

// LocalConfigName is the file searched for next to the analyzed project.
const LocalConfigName = "compmap.toml"

// Config holds the application configuration.
type Config struct {
	Nodes    NodePolicy    `toml:"nodes"`
	Packages PackageConfig `toml:"packages"`
	View     ViewConfig    `toml:"view"`
	Loader   LoaderConfig  `toml:"loader"`
	Export   ExportConfig  `toml:"export"`
	Server   ServerConfig  `toml:"server"`
	Watch    WatchConfig   `toml:"watch"`
	Log      LogConfig     `toml:"log"`
}

// NodePolicy decides which declared components become graph nodes.
type NodePolicy struct {
	RequireMarker          bool     `toml:"require_marker"`
	ExcludeAbstract        bool     `toml:"exclude_abstract"`
	ExcludeInfrastructure  bool     `toml:"exclude_infrastructure"`
	ExcludePackagePrefixes []string `toml:"exclude_package_prefixes" validate:"dive,required"`
}

// PackageConfig holds package classification patterns.
type PackageConfig struct {
	StdlibPatterns     []string `toml:"stdlib_patterns"`
	StdlibPrefixes     []string `toml:"stdlib_prefixes"`
	DependencyPatterns []string `toml:"dependency_patterns"`
}

// ViewConfig holds the defaults of the tree and export views.
type ViewConfig struct {
	TagFilter string `toml:"tag_filter" validate:"tagexpr"`
	Reverse   bool   `toml:"reverse"`
	Color     string `toml:"color" validate:"oneof=auto always never"`
}

// LoaderConfig controls how Go packages are loaded.
type LoaderConfig struct {
	Patterns        []string `toml:"patterns" validate:"min=1,dive,required"`
	Tests           bool     `toml:"tests"`
	BuildTags       []string `toml:"build_tags"`
	DirectivePrefix string   `toml:"directive_prefix" validate:"required,alphanum"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Format string `toml:"format" validate:"oneof=markdown json yaml mermaid"`
	Title  string `toml:"title" validate:"required"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	ListenAddr         string `toml:"listen_addr" validate:"required"`
	ReadTimeoutSeconds int    `toml:"read_timeout_seconds" validate:"gte=0"`
}

// WatchConfig holds file watcher settings.
type WatchConfig struct {
	DebounceMillis int      `toml:"debounce_millis" validate:"gte=0"`
	IgnorePatterns []string `toml:"ignore_patterns"`
}

// LogConfig selects the log output format.
type LogConfig struct {
	Format string `toml:"format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns the default configuration with optional local overrides.
// It always starts with the embedded config, then decodes a local compmap.toml on top of it.
func DefaultConfig() (*Config, error) {
	config, err := embeddedConfig()
	if err != nil {
		return nil, err
	}

	// Look for local compmap.toml to override defaults
	localConfigPaths := []string{
		LocalConfigName,
		"../" + LocalConfigName,
		"../../" + LocalConfigName,
	}

	for _, path := range localConfigPaths {
		if _, err := os.Stat(path); err == nil {
			if err := decodeFileInto(path, config); err != nil {
				// Log warning but continue with embedded config
				fmt.Fprintf(os.Stderr, "Warning: failed to load local config %s: %v\n", path, err)
				return embeddedConfig()
			}
			break
		}
	}

	return config, nil
}

// LoadFromFile loads configuration from a TOML file layered over the embedded defaults.
func LoadFromFile(filepath string) (*Config, error) {
	config, err := embeddedConfig()
	if err != nil {
		return nil, err
	}
	if err := decodeFileInto(filepath, config); err != nil {
		return nil, err
	}
	return config, nil
}

// Load resolves the effective configuration: explicit file or local override,
// then .env and COMPMAP_* environment overrides, then validation.
func Load(path string) (*Config, error) {
	var (
		config *Config
		err    error
	)
	if path != "" {
		config, err = LoadFromFile(path)
	} else {
		config, err = DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	// A missing .env is the common case.
	_ = godotenv.Load()

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTagFilter); ok {
		c.View.TagFilter = v
	}
	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		c.Server.ListenAddr = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvColor); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				c.View.Color = "always"
			} else {
				c.View.Color = "never"
			}
		} else {
			c.View.Color = v
		}
	}
	return nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// TagFilter returns the parsed view tag filter.
func (c *Config) TagFilter() models.Tag {
	tag, err := models.ParseTag(c.View.TagFilter)
	if err != nil {
		return models.TagNone
	}
	return tag
}

// IsStandardLibrary checks if a package is from the Go standard library.
func (c *Config) IsStandardLibrary(packagePath string) bool {
	for _, pattern := range c.Packages.StdlibPatterns {
		if packagePath == pattern || strings.HasPrefix(packagePath, pattern+"/") {
			return true
		}
	}

	for _, prefix := range c.Packages.StdlibPrefixes {
		if strings.HasPrefix(packagePath, prefix) {
			return true
		}
	}

	return false
}

// IsDependency checks if a package is a third-party dependency.
func (c *Config) IsDependency(packagePath string) bool {
	for _, pattern := range c.Packages.DependencyPatterns {
		if strings.HasPrefix(packagePath, pattern) {
			return true
		}
	}
	return false
}

// IsExcludedPackage checks the explicit exclusion prefixes of the node policy.
func (c *Config) IsExcludedPackage(packagePath string) bool {
	for _, prefix := range c.Nodes.ExcludePackagePrefixes {
		if strings.HasPrefix(packagePath, prefix) {
			return true
		}
	}
	return false
}

func embeddedConfig() (*Config, error) {
	var config Config
	if err := toml.Unmarshal(embeddedConfigData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse embedded config: %w", err)
	}
	return &config, nil
}

func decodeFileInto(filepath string, config *Config) error {
	if _, err := toml.DecodeFile(filepath, config); err != nil {
		return fmt.Errorf("failed to load config from %s: %w", filepath, err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("tagexpr", func(fl validator.FieldLevel) bool {
		_, err := models.ParseTag(fl.Field().String())
		return err == nil
	})
	return v
}
