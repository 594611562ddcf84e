package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

func TestDefaultConfig(t *testing.T) {
	config, err := DefaultConfig()
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if config == nil {
		t.Fatal("Default config is nil")
	}

	if !config.Nodes.RequireMarker {
		t.Error("Expected require_marker to default to true")
	}
	if config.Loader.DirectivePrefix != "compmap" {
		t.Errorf("Expected directive prefix 'compmap', got %q", config.Loader.DirectivePrefix)
	}
	if len(config.Packages.StdlibPatterns) == 0 {
		t.Error("No stdlib patterns found in default config")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestIsStandardLibrary(t *testing.T) {
	config, err := DefaultConfig()
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	tests := []struct {
		name        string
		packagePath string
		expected    bool
	}{
		{"fmt package", "fmt", true},
		{"net/http package", "net/http", true},
		{"go/types package", "go/types", true},
		{"vendor package", "vendor/example.com/pkg", true},
		{"user package", "example.com/game/stats", false},
		{"prefix lookalike", "format/thing", false},
		{"empty package", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := config.IsStandardLibrary(tt.packagePath)
			if result != tt.expected {
				t.Errorf("IsStandardLibrary(%q) = %v, want %v", tt.packagePath, result, tt.expected)
			}
		})
	}
}

func TestLoadFromFileLayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := `
[nodes]
require_marker = false

[view]
tag_filter = "Gameplay|UI"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.False(t, config.Nodes.RequireMarker)
	assert.True(t, config.Nodes.ExcludeAbstract, "keys absent from the file keep their defaults")
	assert.Equal(t, models.TagGameplay|models.TagUI, config.TagFilter())
	assert.Equal(t, "compmap", config.Loader.DirectivePrefix)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	config, err := DefaultConfig()
	require.NoError(t, err)

	env := map[string]string{
		EnvTagFilter:  "Audio",
		EnvListenAddr: "127.0.0.1:9000",
		EnvLogFormat:  "json",
		EnvColor:      "false",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	require.NoError(t, config.ApplyEnv(lookup))
	assert.Equal(t, models.TagAudio, config.TagFilter())
	assert.Equal(t, "127.0.0.1:9000", config.Server.ListenAddr)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "never", config.View.Color)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad tag filter", func(c *Config) { c.View.TagFilter = "Physics" }, true},
		{"bad color", func(c *Config) { c.View.Color = "rainbow" }, true},
		{"bad export format", func(c *Config) { c.Export.Format = "pdf" }, true},
		{"no patterns", func(c *Config) { c.Loader.Patterns = nil }, true},
		{"directive prefix with colon", func(c *Config) { c.Loader.DirectivePrefix = "comp:map" }, true},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMillis = -1 }, true},
		{"json logs", func(c *Config) { c.Log.Format = "json" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := DefaultConfig()
			require.NoError(t, err)
			tt.mutate(config)

			err = config.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig), "expected ErrInvalidConfig, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContextAwareConfigIncludes(t *testing.T) {
	base, err := DefaultConfig()
	require.NoError(t, err)
	base.Nodes.ExcludePackagePrefixes = []string{"github.com/example/game/generated"}

	ctx := NewContextAwareConfig(base, "github.com/example/game")

	tests := []struct {
		name        string
		packagePath string
		expected    bool
	}{
		{"project root", "github.com/example/game", true},
		{"project subpackage", "github.com/example/game/stats", true},
		{"explicitly excluded", "github.com/example/game/generated/mocks", false},
		{"third-party", "github.com/gin-gonic/gin", false},
		{"stdlib", "net/http", false},
		{"lookalike prefix is not project", "github.com/example/gameserver", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ctx.Includes(tt.packagePath))
		})
	}

	base.Nodes.ExcludeInfrastructure = false
	assert.True(t, ctx.Includes("github.com/gin-gonic/gin"))
}
