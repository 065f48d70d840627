// Package report renders merged trial summaries: the fixed-width summary
// table, PNG scaling plots, an interactive HTML page and a PDF digest.
package report

import "fmt"

// Version tags the plots group by.
const (
	BaselineVersion = "v0"
	SerialIOVersion = "v1"
	ParallelVersion = "v2"
)

// Options controls labels and the plotted metric.
type Options struct {
	// PrimaryMetric is the column plotted in scaling plots.
	PrimaryMetric int
	// MetricNames label the metric columns in value plots.
	MetricNames []string
	// VersionLabels are legend entries keyed by version tag.
	VersionLabels map[string]string
	// VersionSuffixes are appended to value plot titles.
	VersionSuffixes map[string]string
	// ScalingYLabel and ValueYLabel label the y axes.
	ScalingYLabel string
	ValueYLabel   string
}

// DefaultOptions returns the labels used for the stencil benchmark.
func DefaultOptions() Options {
	return Options{
		PrimaryMetric: 2,
		MetricNames:   []string{"Data I/O Time", "Computation Time", "Total Time"},
		VersionLabels: map[string]string{
			BaselineVersion: "v0: single process baseline",
			SerialIOVersion: "v1: without parallel i/o",
			ParallelVersion: "v2: with parallel i/o",
		},
		VersionSuffixes: map[string]string{
			SerialIOVersion: " - without parallel i/o",
			ParallelVersion: " - with parallel i/o",
		},
		ScalingYLabel: "Total time (s)",
		ValueYLabel:   "Time (s)",
	}
}

func (o Options) metricName(i int) string {
	if i < len(o.MetricNames) && o.MetricNames[i] != "" {
		return o.MetricNames[i]
	}
	return fmt.Sprintf("Value%d", i+1)
}

func (o Options) versionLabel(v string) string {
	if l, ok := o.VersionLabels[v]; ok {
		return l
	}
	return v
}

func (o Options) scalingYLabel() string {
	if o.ScalingYLabel == "" {
		return o.metricName(o.PrimaryMetric) + " (s)"
	}
	return o.ScalingYLabel
}

func (o Options) valueYLabel() string {
	if o.ValueYLabel == "" {
		return "Time (s)"
	}
	return o.ValueYLabel
}
