package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/stencilbench/internal/trials"
)

// HTMLName is where RenderScalingHTML output goes, relative to the output
// directory.
const HTMLName = "plots/index.html"

var versionColors = map[string]string{
	BaselineVersion: "green",
	SerialIOVersion: "red",
	ParallelVersion: "blue",
}

func lineData(recs []trials.SummaryRecord, metric int) []opts.LineData {
	data := make([]opts.LineData, 0, len(recs))
	for _, r := range recs {
		if metric >= len(r.Mean) {
			continue
		}
		abs := r.AbsoluteErrors()[metric]
		data = append(data, opts.LineData{
			Name:  fmt.Sprintf("np=%d ±%.4f", r.Identity.File.Processes, abs),
			Value: []interface{}{r.Identity.File.Processes, r.Mean[metric]},
		})
	}
	return data
}

// RenderScalingHTML writes one interactive chart per core configuration
// with the primary metric of every v1 and v2 run against process count.
// The v0 baseline, when present, spans the plotted process range.
func RenderScalingHTML(w io.Writer, recs []trials.SummaryRecord, o Options) error {
	cores, groups := groupByCore(recs)
	page := components.NewPage()
	page.SetPageTitle("Stencil benchmark scaling")

	for _, core := range cores {
		byVersion := groups[core]
		if len(byVersion[SerialIOVersion]) == 0 && len(byVersion[ParallelVersion]) == 0 {
			continue
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: "Test case: " + core, Width: "900px", Height: "600px"}),
			charts.WithTitleOpts(opts.Title{Title: "Test case: " + core, Subtitle: o.metricName(o.PrimaryMetric)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
			charts.WithXAxisOpts(opts.XAxis{Name: "Number of Processes", Type: "value", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: o.scalingYLabel(), Type: "value"}),
		)

		lo, hi := math.Inf(1), math.Inf(-1)
		for _, version := range []string{SerialIOVersion, ParallelVersion} {
			rs := byVersion[version]
			if len(rs) == 0 {
				continue
			}
			lo = math.Min(lo, float64(rs[0].Identity.File.Processes))
			hi = math.Max(hi, float64(rs[len(rs)-1].Identity.File.Processes))
			line.AddSeries(o.versionLabel(version), lineData(rs, o.PrimaryMetric),
				charts.WithLineStyleOpts(opts.LineStyle{Color: versionColors[version], Width: 2}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: versionColors[version]}),
			)
		}
		if v0 := byVersion[BaselineVersion]; len(v0) > 0 && o.PrimaryMetric < len(v0[0].Mean) {
			y := v0[0].Mean[o.PrimaryMetric]
			line.AddSeries(o.versionLabel(BaselineVersion), []opts.LineData{
				{Value: []interface{}{lo, y}},
				{Value: []interface{}{hi, y}},
			},
				charts.WithLineStyleOpts(opts.LineStyle{Color: versionColors[BaselineVersion], Width: 2, Type: "dotted"}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: versionColors[BaselineVersion]}),
				charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			)
		}
		page.AddCharts(line)
	}
	return page.Render(w)
}
