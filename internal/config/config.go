// Package config loads stencilbench run configuration from YAML or JSON.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/stencilbench/internal/report"
	"github.com/banshee-data/stencilbench/internal/trials"
	"github.com/banshee-data/stencilbench/internal/volume"
)

// ExampleConfigPath is the documented example configuration.
const ExampleConfigPath = "config/stencilbench.example.yaml"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the run configuration. Unset fields fall back to the defaults
// returned by the Get* methods, so partial files are safe.
type Config struct {
	// Aggregation
	SourceDirs  []string `yaml:"source_dirs,omitempty"`
	DestDir     *string  `yaml:"dest_dir,omitempty"`
	MetricLine  *int     `yaml:"metric_line,omitempty"`
	SummaryFile *string  `yaml:"summary_file,omitempty"`
	StrictNames *bool    `yaml:"strict_names,omitempty"`
	Workers     *int     `yaml:"workers,omitempty"`

	// Outputs
	Plots    *bool   `yaml:"plots,omitempty"`
	HTML     *bool   `yaml:"html,omitempty"`
	PDF      *bool   `yaml:"pdf,omitempty"`
	Database *string `yaml:"database,omitempty"`

	// Report labels
	PrimaryMetric *int              `yaml:"primary_metric,omitempty"`
	MetricNames   []string          `yaml:"metric_names,omitempty"`
	VersionLabels map[string]string `yaml:"version_labels,omitempty"`

	// Verification
	Tolerance       *float64 `yaml:"tolerance,omitempty"`
	IncludeBoundary *bool    `yaml:"include_boundary,omitempty"`
}

// Load reads a Config from a .yaml, .yml or .json file no larger than 1MB.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("config file must have .yaml, .yml or .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return cfg, nil
}

// Parse decodes and validates configuration bytes. JSON input is accepted
// since it is valid YAML.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *Config) Validate() error {
	for i, d := range c.SourceDirs {
		if d == "" {
			return fmt.Errorf("source_dirs[%d] is empty", i)
		}
	}
	if c.DestDir != nil && *c.DestDir == "" {
		return errors.New("dest_dir must not be empty")
	}
	if c.MetricLine != nil && *c.MetricLine < 0 {
		return fmt.Errorf("metric_line must be non-negative, got %d", *c.MetricLine)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.PrimaryMetric != nil && *c.PrimaryMetric < 0 {
		return fmt.Errorf("primary_metric must be non-negative, got %d", *c.PrimaryMetric)
	}
	if c.SummaryFile != nil && (*c.SummaryFile == "" || filepath.IsAbs(*c.SummaryFile)) {
		return fmt.Errorf("summary_file must be a relative file name, got %q", *c.SummaryFile)
	}
	if c.Tolerance != nil && *c.Tolerance < 0 {
		return fmt.Errorf("tolerance must be non-negative, got %g", *c.Tolerance)
	}
	return nil
}

// GetSourceDirs returns the trial directories or the default three.
func (c *Config) GetSourceDirs() []string {
	if len(c.SourceDirs) == 0 {
		return []string{"results", "results2", "results3"}
	}
	return c.SourceDirs
}

// GetDestDir returns dest_dir or the default.
func (c *Config) GetDestDir() string {
	if c.DestDir == nil {
		return "results_avg"
	}
	return *c.DestDir
}

// GetMetricLine returns metric_line or the default.
func (c *Config) GetMetricLine() int {
	if c.MetricLine == nil {
		return trials.DefaultMetricLine
	}
	return *c.MetricLine
}

// GetSummaryFile returns summary_file or the default.
func (c *Config) GetSummaryFile() string {
	if c.SummaryFile == nil {
		return "summary.txt"
	}
	return *c.SummaryFile
}

func (c *Config) GetStrictNames() bool {
	return c.StrictNames != nil && *c.StrictNames
}

// GetWorkers returns workers; 0 means one per CPU.
func (c *Config) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetPlots reports whether PNG plots are written (default true).
func (c *Config) GetPlots() bool {
	return c.Plots == nil || *c.Plots
}

func (c *Config) GetHTML() bool {
	return c.HTML != nil && *c.HTML
}

func (c *Config) GetPDF() bool {
	return c.PDF != nil && *c.PDF
}

// GetDatabase returns the results database path; empty disables it.
func (c *Config) GetDatabase() string {
	if c.Database == nil {
		return ""
	}
	return *c.Database
}

// GetTolerance returns the bounds tolerance used when cross-checking
// program output.
func (c *Config) GetTolerance() float64 {
	if c.Tolerance == nil {
		return volume.DefaultTolerance
	}
	return *c.Tolerance
}

func (c *Config) GetIncludeBoundary() bool {
	return c.IncludeBoundary != nil && *c.IncludeBoundary
}

// TrialOptions converts the aggregation settings.
func (c *Config) TrialOptions() trials.Options {
	return trials.Options{
		SourceDirs:  c.GetSourceDirs(),
		DestDir:     c.GetDestDir(),
		MetricLine:  c.GetMetricLine(),
		StrictNames: c.GetStrictNames(),
		Workers:     c.GetWorkers(),
	}
}

// ReportOptions overlays configured labels on report.DefaultOptions.
func (c *Config) ReportOptions() report.Options {
	o := report.DefaultOptions()
	if c.PrimaryMetric != nil {
		o.PrimaryMetric = *c.PrimaryMetric
		o.ScalingYLabel = ""
	}
	if len(c.MetricNames) > 0 {
		o.MetricNames = c.MetricNames
	}
	for v, label := range c.VersionLabels {
		o.VersionLabels[v] = label
	}
	return o
}
