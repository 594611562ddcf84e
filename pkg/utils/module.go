package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// ErrNoModule is returned when no go.mod exists at or above a directory.
var ErrNoModule = errors.New("no go.mod found")

// ModuleInfo identifies the Go module that owns a directory.
type ModuleInfo struct {
	Dir  string // directory holding go.mod
	Path string // module path declared in go.mod
}

// FindModule walks up from dir to the nearest go.mod and parses its module path.
func FindModule(dir string) (*ModuleInfo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	for current := abs; ; {
		gomod := filepath.Join(current, "go.mod")
		if FileExists(gomod) {
			data, err := os.ReadFile(gomod) // #nosec G304 - fixed file name under a resolved directory
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", gomod, err)
			}
			path := modfile.ModulePath(data)
			if path == "" {
				return nil, fmt.Errorf("%s declares no module path", gomod)
			}
			return &ModuleInfo{Dir: current, Path: path}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, fmt.Errorf("%w at or above %s", ErrNoModule, abs)
		}
		current = parent
	}
}

// OutputFilename creates a standardized export file name from a module path,
// e.g. "github.com/acme/game-server" and "markdown" give "game-server.compmap.md".
func OutputFilename(modulePath, format string) string {
	baseName := modulePath
	if idx := strings.Index(baseName, "@"); idx != -1 {
		baseName = baseName[:idx]
	}
	if parts := strings.Split(baseName, "/"); len(parts) > 0 {
		baseName = parts[len(parts)-1]
	}

	baseName = strings.ReplaceAll(baseName, " ", "-")
	baseName = strings.ReplaceAll(baseName, "_", "-")
	baseName = strings.ReplaceAll(baseName, ":", "-")
	if baseName == "" || baseName == "." {
		baseName = "components"
	}

	ext := format
	switch format {
	case "markdown", "":
		ext = "md"
	case "mermaid":
		ext = "mmd"
	}
	return baseName + ".compmap." + ext
}
