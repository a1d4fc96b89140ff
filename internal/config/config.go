// Package config loads the YAML-backed analyzer configuration: analyzed
// roots, ignore globs, thread count, taint sink/source registries, and
// per-kind severity/suppression overrides.
//
// Grounded on the teacher's internal/config package (named constants
// plus IsTestMode/IsLSPMode globals bound from pkg/ext's funxy.yaml)
// generalized into a real file-backed loader. Library: gopkg.in/yaml.v3
// (teacher direct dep).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vetta-lang/vetta/internal/issues"
)

// TaintRule binds a label to the call sites that introduce or must
// never receive it.
type TaintRule struct {
	Label     string   `yaml:"label"`
	Functions []string `yaml:"functions"`
}

// Config is the root of a vetta.yaml file.
type Config struct {
	Roots   []string `yaml:"roots"`
	Ignore  []string `yaml:"ignore"`
	Threads int      `yaml:"threads"`

	CacheDir              string `yaml:"cache_dir"`
	FindUnusedDefinitions bool   `yaml:"find_unused_definitions"`
	SecurityAnalysis      bool   `yaml:"security_analysis"`

	TaintSources []TaintRule `yaml:"taint_sources"`
	TaintSinks   []TaintRule `yaml:"taint_sinks"`

	SeverityOverrides map[issues.Kind]issues.Severity `yaml:"severity_overrides"`
	Suppress          []string                        `yaml:"suppress"`
}

// Default returns a Config with the same defaults the teacher ships in
// internal/config's named constants: one thread per CPU signaled by 0
// (the runner resolves 0 to runtime.NumCPU), no ignores, cache under
// ".vetta-cache".
func Default() *Config {
	return &Config{
		Threads:  0,
		CacheDir: ".vetta-cache",
	}
}

// Load reads and parses a YAML config file, applying Default() for any
// field the file leaves at its zero value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.Threads == 0 {
		cfg.Threads = Default().Threads
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = Default().CacheDir
	}
	return cfg, nil
}

// SeverityFor resolves a kind's effective severity: a config override
// if present, otherwise the issue package's built-in default.
func (c *Config) SeverityFor(k issues.Kind) issues.Severity {
	if c == nil {
		return issues.DefaultSeverity(k)
	}
	if sev, ok := c.SeverityOverrides[k]; ok {
		return sev
	}
	return issues.DefaultSeverity(k)
}

// IsSuppressed reports whether kind k is globally suppressed by name in
// the config's suppress list.
func (c *Config) IsSuppressed(k issues.Kind) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Suppress {
		if issues.Kind(s) == k {
			return true
		}
	}
	return false
}
