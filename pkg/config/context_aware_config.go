package config

import "strings"

// ContextAwareConfig wraps the base Config with the module being analyzed so
// that components declared in the project are never mistaken for infrastructure.
type ContextAwareConfig struct {
	*Config
	RootPackage string // Module path of the analyzed project
}

// NewContextAwareConfig creates a context-aware config over base for rootPackage.
func NewContextAwareConfig(base *Config, rootPackage string) *ContextAwareConfig {
	return &ContextAwareConfig{
		Config:      base,
		RootPackage: rootPackage,
	}
}

// IsProjectPackage reports whether packagePath is the root module or one of its subpackages.
func (c *ContextAwareConfig) IsProjectPackage(packagePath string) bool {
	if c.RootPackage == "" {
		return false
	}
	return packagePath == c.RootPackage || strings.HasPrefix(packagePath, c.RootPackage+"/")
}

// IsInfrastructure reports whether components of packagePath belong to the
// standard library or a third-party dependency rather than the project.
// A package is infrastructure if:
// 1. It is not part of the project, AND
// 2. It matches a standard library or dependency pattern.
func (c *ContextAwareConfig) IsInfrastructure(packagePath string) bool {
	if c.IsProjectPackage(packagePath) {
		return false
	}
	return c.IsStandardLibrary(packagePath) || c.IsDependency(packagePath)
}

// Includes applies the package side of the node policy.
func (c *ContextAwareConfig) Includes(packagePath string) bool {
	if c.IsExcludedPackage(packagePath) {
		return false
	}
	if c.Nodes.ExcludeInfrastructure && c.IsInfrastructure(packagePath) {
		return false
	}
	return true
}
