package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
	"github.com/KaramelBytes/pulseboard/internal/insight"
)

// ErrNothingToExplore is returned when a dataset lacks the columns the
// interactive charts need.
var ErrNothingToExplore = errors.New("dataset has no steps, heart_rate or activity columns to chart")

// ExploreOptions controls the interactive page.
type ExploreOptions struct {
	// AssetsHost overrides where the echarts javascript is loaded from.
	AssetsHost string
	// MaxPoints caps the scatter series; rows are strided to fit.
	MaxPoints int
}

// Explore writes an interactive HTML page: heart rate against steps, and the
// per-activity means behind the ranking insights.
func Explore(w io.Writer, ds *dataset.Dataset, opt ExploreOptions) error {
	if opt.MaxPoints <= 0 {
		opt.MaxPoints = 5000
	}
	page := components.NewPage()
	page.PageTitle = "Apple Watch Smart Data Explorer"
	if opt.AssetsHost != "" {
		page.SetAssetsHost(opt.AssetsHost)
	}

	added := 0
	if ds.HasAll(dataset.ColSteps, dataset.ColHeartRate) {
		page.AddCharts(scatterChart(ds, opt))
		added++
	}
	if ds.Has(dataset.ColActivity) && (ds.Has(dataset.ColSteps) || ds.Has(dataset.ColHeartRate)) {
		page.AddCharts(activityBar(ds, opt))
		added++
	}
	if added == 0 {
		return ErrNothingToExplore
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render explore page: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func scatterChart(ds *dataset.Dataset, opt ExploreOptions) *charts.Scatter {
	xs, ys := pairs(ds, dataset.ColSteps, dataset.ColHeartRate)
	stride := 1
	if len(xs) > opt.MaxPoints {
		stride = int(math.Ceil(float64(len(xs)) / float64(opt.MaxPoints)))
	}
	data := make([]opts.ScatterData, 0, len(xs)/stride+1)
	for i := 0; i < len(xs); i += stride {
		data = append(data, opts.ScatterData{Value: []interface{}{xs[i], ys[i]}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "520px", AssetsHost: opt.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Heart Rate vs Steps", Subtitle: fmt.Sprintf("points=%d stride=%d", len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: dataset.ColSteps, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: dataset.ColHeartRate, NameLocation: "middle", NameGap: 35}),
	)
	scatter.AddSeries("observations", data,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "rgba(31,119,180,0.35)"}),
	)
	return scatter
}

func activityBar(ds *dataset.Dataset, opt ExploreOptions) *charts.Bar {
	labels := ds.Distinct(dataset.ColActivity)
	series := func(metric string) []opts.BarData {
		means := map[string]float64{}
		for _, g := range insight.GroupMeans(ds, dataset.ColActivity, metric) {
			means[g.Label] = math.Round(g.Mean*10) / 10
		}
		out := make([]opts.BarData, len(labels))
		for i, l := range labels {
			if m, ok := means[l]; ok {
				out[i] = opts.BarData{Value: m}
			} else {
				out[i] = opts.BarData{Value: "-"}
			}
		}
		return out
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "520px", AssetsHost: opt.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Averages by Activity", Subtitle: fmt.Sprintf("rows=%d", ds.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	if ds.Has(dataset.ColSteps) {
		bar.AddSeries("avg steps", series(dataset.ColSteps),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	}
	if ds.Has(dataset.ColHeartRate) {
		bar.AddSeries("avg heart rate (bpm)", series(dataset.ColHeartRate),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	}
	return bar
}
