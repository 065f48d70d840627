package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"path"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/stencilbench/internal/fsutil"
	"github.com/banshee-data/stencilbench/internal/monitoring"
	"github.com/banshee-data/stencilbench/internal/trials"
)

const (
	figureWidth  = 8 * vg.Inch
	figureHeight = 6 * vg.Inch

	scalingDir = "plots"
	valuesDir  = "value_plots"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 128, A: 255}
	blue  = color.RGBA{B: 255, A: 255}

	metricColors = []color.Color{red, green, blue,
		color.RGBA{R: 255, G: 165, A: 255},
		color.RGBA{R: 128, B: 128, A: 255},
		color.RGBA{G: 128, B: 128, A: 255},
	}
)

// Figure is a rendered PNG and the path it belongs at, relative to the
// output directory.
type Figure struct {
	Name string
	PNG  []byte
}

// errPoints feeds plotter.NewYErrorBars.
type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

// series is one version's (processes, value, error) points for a metric,
// sorted by process count.
type series struct {
	xys  plotter.XYs
	errs plotter.YErrors
}

func seriesFor(recs []trials.SummaryRecord, metric int) series {
	var s series
	for _, r := range recs {
		if metric >= len(r.Mean) {
			continue
		}
		abs := r.AbsoluteErrors()
		s.xys = append(s.xys, plotter.XY{X: float64(r.Identity.File.Processes), Y: r.Mean[metric]})
		s.errs = append(s.errs, struct{ Low, High float64 }{abs[metric], abs[metric]})
	}
	return s
}

// groupByCore buckets recognised records by core configuration and then
// version, each bucket sorted by process count. Keys are returned sorted.
func groupByCore(recs []trials.SummaryRecord) ([]string, map[string]map[string][]trials.SummaryRecord) {
	groups := make(map[string]map[string][]trials.SummaryRecord)
	for _, r := range recs {
		if !r.Identity.Recognized {
			continue
		}
		core := r.Identity.File.CoreConfig
		if groups[core] == nil {
			groups[core] = make(map[string][]trials.SummaryRecord)
		}
		groups[core][r.Identity.Version] = append(groups[core][r.Identity.Version], r)
	}
	cores := make([]string, 0, len(groups))
	for core, byVersion := range groups {
		cores = append(cores, core)
		for _, rs := range byVersion {
			sort.SliceStable(rs, func(i, j int) bool {
				return rs[i].Identity.File.Processes < rs[j].Identity.File.Processes
			})
		}
	}
	sort.Strings(cores)
	return cores, groups
}

func addErrorSeries(p *plot.Plot, s series, c color.Color, label string) error {
	if len(s.xys) == 0 {
		return nil
	}
	line, points, err := plotter.NewLinePoints(s.xys)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	points.Color = c

	bars, err := plotter.NewYErrorBars(errPoints{XYs: s.xys, YErrors: s.errs})
	if err != nil {
		return err
	}
	bars.Color = c
	bars.Width = vg.Points(2)

	p.Add(line, points, bars)
	if label != "" {
		p.Legend.Add(label, line, points)
	}
	return nil
}

func renderPNG(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(figureWidth, figureHeight, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ScalingPlots draws, for every core configuration that has both v1 and v2
// records, the primary metric against process count with error bars. A v0
// record, when present, is drawn as a dotted baseline.
func ScalingPlots(recs []trials.SummaryRecord, opts Options) ([]Figure, error) {
	cores, groups := groupByCore(recs)
	var figs []Figure
	for _, core := range cores {
		byVersion := groups[core]
		v1, v2 := byVersion[SerialIOVersion], byVersion[ParallelVersion]
		if len(v1) == 0 || len(v2) == 0 {
			continue
		}

		p := plot.New()
		p.Title.Text = "Test case: " + core
		p.X.Label.Text = "Number of Processes"
		p.Y.Label.Text = opts.scalingYLabel()
		p.Add(plotter.NewGrid())

		if err := addErrorSeries(p, seriesFor(v1, opts.PrimaryMetric), red, opts.versionLabel(SerialIOVersion)); err != nil {
			return nil, fmt.Errorf("%s v1: %w", core, err)
		}
		if err := addErrorSeries(p, seriesFor(v2, opts.PrimaryMetric), blue, opts.versionLabel(ParallelVersion)); err != nil {
			return nil, fmt.Errorf("%s v2: %w", core, err)
		}
		if v0 := byVersion[BaselineVersion]; len(v0) > 0 && opts.PrimaryMetric < len(v0[0].Mean) {
			y := v0[0].Mean[opts.PrimaryMetric]
			baseline := plotter.NewFunction(func(float64) float64 { return y })
			baseline.Color = green
			baseline.Width = vg.Points(2)
			baseline.Dashes = []vg.Length{vg.Points(2), vg.Points(3)}
			p.Add(baseline)
			p.Legend.Add(opts.versionLabel(BaselineVersion), baseline)
			p.Y.Min = math.Min(p.Y.Min, y)
			p.Y.Max = math.Max(p.Y.Max, y)
		}

		png, err := renderPNG(p)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", core, err)
		}
		figs = append(figs, Figure{Name: path.Join(scalingDir, core+"_line_plot.png"), PNG: png})
	}
	return figs, nil
}

// ValuePlots draws every metric column against process count, one figure
// per (core configuration, v1|v2).
func ValuePlots(recs []trials.SummaryRecord, opts Options) ([]Figure, error) {
	cores, groups := groupByCore(recs)
	var figs []Figure
	for _, core := range cores {
		for _, version := range []string{SerialIOVersion, ParallelVersion} {
			rs := groups[core][version]
			if len(rs) == 0 {
				continue
			}
			metrics := 0
			for _, r := range rs {
				metrics = max(metrics, len(r.Mean))
			}

			p := plot.New()
			p.Title.Text = fmt.Sprintf("Test case: %s - %s%s", core, version, opts.VersionSuffixes[version])
			p.X.Label.Text = "Number of Processes"
			p.Y.Label.Text = opts.valueYLabel()
			p.Add(plotter.NewGrid())
			for m := 0; m < metrics; m++ {
				c := metricColors[m%len(metricColors)]
				if err := addErrorSeries(p, seriesFor(rs, m), c, opts.metricName(m)); err != nil {
					return nil, fmt.Errorf("%s %s metric %d: %w", core, version, m, err)
				}
			}

			png, err := renderPNG(p)
			if err != nil {
				return nil, fmt.Errorf("rendering %s %s: %w", core, version, err)
			}
			figs = append(figs, Figure{
				Name: path.Join(valuesDir, fmt.Sprintf("%s_%s_values_plot.png", core, version)),
				PNG:  png,
			})
		}
	}
	return figs, nil
}

// SaveFigures writes figs under dir, creating subdirectories as needed.
func SaveFigures(fsys fsutil.FileSystem, dir string, figs []Figure) error {
	for _, f := range figs {
		dest := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := fsys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := fsutil.WriteFileAtomic(fsys, dest, f.PNG, 0o644); err != nil {
			return fmt.Errorf("saving %s: %w", dest, err)
		}
		monitoring.Logf("Saved plot %s", dest)
	}
	return nil
}
