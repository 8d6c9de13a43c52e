// Package config handles screening run configuration loading and management.
package config

import (
	"runtime"
	"time"

	"github.com/Faultbox/meshscreen/internal/validate"
)

// Config holds all screening run settings.
type Config struct {
	Run       RunConfig       `yaml:"run"`
	Source    SourceConfig    `yaml:"source"`
	Validator validate.Config `yaml:"validator"`
	Report    ReportConfig    `yaml:"report"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RunConfig holds output and concurrency settings.
type RunConfig struct {
	OutputDir string `yaml:"output_dir"`
	Workers   int    `yaml:"workers"`
}

// SourceConfig holds asset acquisition settings.
type SourceConfig struct {
	MirrorBase   string        `yaml:"mirror_base"`   // Base URL assets are fetched from
	CatalogPath  string        `yaml:"catalog_path"`  // JSON catalog mapping asset ids to sources
	IDListPath   string        `yaml:"id_list_path"`  // JSON array of eligible asset ids
	FetchTimeout time.Duration `yaml:"fetch_timeout"` // Per-download timeout
}

// ReportConfig holds run report persistence settings.
type ReportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // SQLite database path
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			OutputDir: "screened",
			Workers:   runtime.NumCPU(),
		},
		Source: SourceConfig{
			MirrorBase:   "",
			CatalogPath:  "catalog.json",
			IDListPath:   "eligible_ids.json",
			FetchTimeout: 60 * time.Second,
		},
		Validator: validate.DefaultConfig(),
		Report: ReportConfig{
			Enabled: false,
			Path:    "screening.db",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
