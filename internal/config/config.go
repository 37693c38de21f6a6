package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds per-project settings from lency.yaml plus CLI overrides.
type Config struct {
	// SrcRoot is the project source tree searched first for imports.
	SrcRoot string `yaml:"src"`
	// StdlibRoot is the standard-library tree searched second.
	StdlibRoot string `yaml:"stdlib"`
	// Strict promotes warnings to errors.
	Strict bool `yaml:"strict"`
}

// Default returns the configuration used when no lency.yaml is present:
// the project root doubles as the source root and the stdlib is the
// `std` directory under the project root (overridable via --stdlib).
func Default(projectRoot string) *Config {
	return &Config{
		SrcRoot:    projectRoot,
		StdlibRoot: filepath.Join(projectRoot, "std"),
	}
}

// Load reads lency.yaml from projectRoot if it exists, falling back to
// Default. Relative paths in the file are resolved against projectRoot.
func Load(projectRoot string) (*Config, error) {
	cfg := Default(projectRoot)

	data, err := os.ReadFile(filepath.Join(projectRoot, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.SrcRoot == "" {
		cfg.SrcRoot = projectRoot
	}
	if !filepath.IsAbs(cfg.SrcRoot) {
		cfg.SrcRoot = filepath.Join(projectRoot, cfg.SrcRoot)
	}
	if cfg.StdlibRoot != "" && !filepath.IsAbs(cfg.StdlibRoot) {
		cfg.StdlibRoot = filepath.Join(projectRoot, cfg.StdlibRoot)
	}
	return cfg, nil
}
