package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestGetterDefaults(t *testing.T) {
	cfg := &Config{}

	if got := cfg.GetSourceDirs(); !reflect.DeepEqual(got, []string{"results", "results2", "results3"}) {
		t.Errorf("GetSourceDirs() = %v", got)
	}
	if got := cfg.GetDestDir(); got != "results_avg" {
		t.Errorf("GetDestDir() = %q, want results_avg", got)
	}
	if got := cfg.GetMetricLine(); got != 2 {
		t.Errorf("GetMetricLine() = %d, want 2", got)
	}
	if got := cfg.GetSummaryFile(); got != "summary.txt" {
		t.Errorf("GetSummaryFile() = %q, want summary.txt", got)
	}
	if cfg.GetStrictNames() {
		t.Error("GetStrictNames() = true, want false")
	}
	if got := cfg.GetWorkers(); got != 0 {
		t.Errorf("GetWorkers() = %d, want 0", got)
	}
	if !cfg.GetPlots() || cfg.GetHTML() || cfg.GetPDF() {
		t.Errorf("outputs = plots:%v html:%v pdf:%v, want true/false/false", cfg.GetPlots(), cfg.GetHTML(), cfg.GetPDF())
	}
	if got := cfg.GetDatabase(); got != "" {
		t.Errorf("GetDatabase() = %q, want empty", got)
	}
	if got := cfg.GetTolerance(); got != 1e-3 {
		t.Errorf("GetTolerance() = %g, want 0.001", got)
	}
	if cfg.GetIncludeBoundary() {
		t.Error("GetIncludeBoundary() = true, want false")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "run.yaml", `
source_dirs: [a, b]
dest_dir: merged
metric_line: 3
strict_names: true
workers: 4
html: true
database: bench.db
primary_metric: 1
metric_names: [IO, Compute]
version_labels:
  v1: serial
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	opts := cfg.TrialOptions()
	if !reflect.DeepEqual(opts.SourceDirs, []string{"a", "b"}) || opts.DestDir != "merged" ||
		opts.MetricLine != 3 || !opts.StrictNames || opts.Workers != 4 {
		t.Errorf("TrialOptions() = %+v", opts)
	}
	if !cfg.GetHTML() || cfg.GetDatabase() != "bench.db" {
		t.Errorf("html=%v database=%q", cfg.GetHTML(), cfg.GetDatabase())
	}

	ro := cfg.ReportOptions()
	if ro.PrimaryMetric != 1 {
		t.Errorf("PrimaryMetric = %d, want 1", ro.PrimaryMetric)
	}
	if !reflect.DeepEqual(ro.MetricNames, []string{"IO", "Compute"}) {
		t.Errorf("MetricNames = %v", ro.MetricNames)
	}
	if ro.VersionLabels["v1"] != "serial" || ro.VersionLabels["v2"] != "v2: with parallel i/o" {
		t.Errorf("VersionLabels = %v", ro.VersionLabels)
	}
	if ro.ScalingYLabel != "" {
		t.Errorf("ScalingYLabel = %q, want derived label", ro.ScalingYLabel)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "run.json", `{"dest_dir": "out", "plots": false, "tolerance": 0.01}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GetDestDir() != "out" || cfg.GetPlots() || cfg.GetTolerance() != 0.01 {
		t.Errorf("cfg = dest:%q plots:%v tol:%g", cfg.GetDestDir(), cfg.GetPlots(), cfg.GetTolerance())
	}
	// Unset keys keep their defaults.
	if cfg.GetMetricLine() != 2 {
		t.Errorf("GetMetricLine() = %d, want 2", cfg.GetMetricLine())
	}
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load(writeConfig(t, "empty.yml", ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GetDestDir() != "results_avg" {
		t.Errorf("GetDestDir() = %q", cfg.GetDestDir())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"wrong extension", "run.toml", "dest_dir = 'x'", "extension"},
		{"unknown key", "run.yaml", "dest: x\n", "field dest not found"},
		{"bad type", "run.yaml", "metric_line: two\n", "failed to parse"},
		{"negative metric line", "run.yaml", "metric_line: -1\n", "metric_line"},
		{"negative workers", "run.yaml", "workers: -3\n", "workers"},
		{"empty source", "run.yaml", "source_dirs: [a, '']\n", "source_dirs[1]"},
		{"empty dest", "run.yaml", "dest_dir: ''\n", "dest_dir"},
		{"absolute summary", "run.yaml", "summary_file: /tmp/s.txt\n", "summary_file"},
		{"negative tolerance", "run.json", `{"tolerance": -1}`, "tolerance"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.file, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load("/nonexistent/path/to/config.yaml"); err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoad_RejectsLargeFile(t *testing.T) {
	big := "# " + strings.Repeat("x", maxFileSize) + "\n"
	if _, err := Load(writeConfig(t, "big.yaml", big)); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("Load() error = %v, want too large", err)
	}
}

func TestLoadExampleConfigFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", ExampleConfigPath))
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	defaults := &Config{}
	if !reflect.DeepEqual(cfg.TrialOptions(), defaults.TrialOptions()) {
		t.Errorf("example TrialOptions() = %+v, want defaults %+v", cfg.TrialOptions(), defaults.TrialOptions())
	}
	if !reflect.DeepEqual(cfg.ReportOptions().MetricNames, defaults.ReportOptions().MetricNames) {
		t.Errorf("example metric names differ from defaults")
	}
	if cfg.GetTolerance() != defaults.GetTolerance() || cfg.GetPlots() != defaults.GetPlots() {
		t.Error("example verification/output settings differ from defaults")
	}
}
