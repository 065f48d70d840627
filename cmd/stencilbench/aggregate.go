package main

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banshee-data/stencilbench/internal/fsutil"
	"github.com/banshee-data/stencilbench/internal/monitoring"
	"github.com/banshee-data/stencilbench/internal/report"
	"github.com/banshee-data/stencilbench/internal/security"
	"github.com/banshee-data/stencilbench/internal/trials"
)

// PDFName is the digest written under the destination directory.
const PDFName = "report.pdf"

type aggregateFlags struct {
	sources     []string
	dest        string
	metricLine  int
	summaryFile string
	strict      bool
	workers     int
	plots       bool
	html        bool
	pdf         bool
}

func newAggregateCmd(g *globalOptions) *cobra.Command {
	f := &aggregateFlags{}
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Merge trial directories into mean/std result files and a summary",
		Long: `Merge the result files found in every source directory. Each merged file
is the first trial's file with the metric line replaced by the per-column mean
and the relative standard deviation appended. A summary table, plots and an
optional HTML page and PDF digest are written to the destination directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(cmd, g, f)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&f.sources, "source", "s", nil, "Trial directories (repeat or comma separate)")
	flags.StringVarP(&f.dest, "dest", "d", "", "Destination directory for merged files")
	flags.IntVar(&f.metricLine, "metric-line", trials.DefaultMetricLine, "Zero-based line holding the timing row")
	flags.StringVar(&f.summaryFile, "summary", "", "Summary table file name inside the destination")
	flags.BoolVar(&f.strict, "strict", false, "Fail files whose names carry no core configuration or process count")
	flags.IntVarP(&f.workers, "workers", "w", 0, "Concurrent merges (0 = one per CPU)")
	flags.BoolVar(&f.plots, "plots", true, "Write PNG scaling and value plots")
	flags.BoolVar(&f.html, "html", false, "Write the interactive HTML scaling page")
	flags.BoolVar(&f.pdf, "pdf", false, "Write the PDF digest")
	return cmd
}

func runAggregate(cmd *cobra.Command, g *globalOptions, f *aggregateFlags) error {
	cfg := g.cfg
	opts := cfg.TrialOptions()
	summaryFile := cfg.GetSummaryFile()
	plots, html, pdf := cfg.GetPlots(), cfg.GetHTML(), cfg.GetPDF()

	flags := cmd.Flags()
	if flags.Changed("source") {
		opts.SourceDirs = f.sources
	}
	if flags.Changed("dest") {
		opts.DestDir = f.dest
	}
	if flags.Changed("metric-line") {
		opts.MetricLine = f.metricLine
	}
	if flags.Changed("summary") {
		summaryFile = f.summaryFile
	}
	if flags.Changed("strict") {
		opts.StrictNames = f.strict
	}
	if flags.Changed("workers") {
		opts.Workers = f.workers
	}
	if flags.Changed("plots") {
		plots = f.plots
	}
	if flags.Changed("html") {
		html = f.html
	}
	if flags.Changed("pdf") {
		pdf = f.pdf
	}

	allowed, err := security.DefaultOutputDirs()
	if err != nil {
		return err
	}
	if err := security.ValidateOutputPath(opts.DestDir, allowed...); err != nil {
		return fmt.Errorf("invalid destination: %w", err)
	}

	fsys := fsutil.OSFileSystem{}
	agg, err := trials.NewAggregator(fsys, opts)
	if err != nil {
		return err
	}
	res, err := agg.Run(cmd.Context())
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(opts.DestDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.DestDir, err)
	}

	var table bytes.Buffer
	if err := report.WriteSummaryTable(&table, res.Records); err != nil {
		return err
	}
	summaryPath, err := security.JoinWithin(opts.DestDir, summaryFile)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(fsys, summaryPath, table.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	monitoring.Logf("Wrote summary table to %s", summaryPath)

	ro := cfg.ReportOptions()
	if err := writeReports(fsys, opts.DestDir, res.Records, ro, plots, html, pdf); err != nil {
		return err
	}

	if err := recordBatch(g, opts, res); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Merged %d files into %s (%d failed)\n", len(res.Records), opts.DestDir, len(res.Failures))
	for _, fail := range res.Failures {
		fmt.Fprintf(out, "  failed: %v\n", fail)
	}
	return nil
}

func writeReports(fsys fsutil.FileSystem, dest string, recs []trials.SummaryRecord, ro report.Options, plots, html, pdf bool) error {
	var scaling []report.Figure
	if plots || pdf {
		var err error
		if scaling, err = report.ScalingPlots(recs, ro); err != nil {
			return fmt.Errorf("failed to render scaling plots: %w", err)
		}
	}
	if plots {
		values, err := report.ValuePlots(recs, ro)
		if err != nil {
			return fmt.Errorf("failed to render value plots: %w", err)
		}
		if err := report.SaveFigures(fsys, dest, append(scaling, values...)); err != nil {
			return err
		}
	}
	if html {
		err := writeArtefact(fsys, dest, report.HTMLName, func(w io.Writer) error {
			return report.RenderScalingHTML(w, recs, ro)
		})
		if err != nil {
			return err
		}
	}
	if pdf {
		err := writeArtefact(fsys, dest, PDFName, func(w io.Writer) error {
			return report.WritePDF(w, "Stencil benchmark summary", recs, scaling)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeArtefact(fsys fsutil.FileSystem, dest, name string, render func(io.Writer) error) error {
	p, err := security.JoinWithin(dest, name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(fsys, p, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	monitoring.Logf("Wrote %s", p)
	return nil
}

func recordBatch(g *globalOptions, opts trials.Options, res *trials.BatchResult) error {
	db, err := g.openDB()
	if err != nil || db == nil {
		return err
	}
	defer db.Close()

	b := db.NewBatch(opts.SourceDirs, opts.DestDir, opts.MetricLine)
	b.FilesOK = len(res.Records)
	b.Failed = len(res.Failures)
	if err := db.RecordBatch(b, res.Records); err != nil {
		return fmt.Errorf("failed to record batch: %w", err)
	}
	monitoring.Logf("Recorded batch %s", b.ID)
	return nil
}
