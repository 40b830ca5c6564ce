// Package render decides which charts a dataset gets and draws them, as PNG
// images with gonum/plot and as an interactive page with go-echarts.
package render

import (
	"math"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
)

// Kind is a chart type.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindBoxPlot   Kind = "boxplot"
	KindScatter   Kind = "scatter"
)

// Page sections, in display order.
const (
	SectionDistributions = "Distributions"
	SectionByActivity    = "By Activity"
	SectionRelationships = "Relationships"
)

// HistogramColumns get one histogram each when present.
var HistogramColumns = []string{
	dataset.ColSteps, dataset.ColHeartRate, dataset.ColCalories, dataset.ColDistance,
	dataset.ColEntropyHeart, dataset.ColEntropySteps, dataset.ColNormalizedHeartRate,
}

// BoxColumns get one per-activity box plot each when activity is present.
var BoxColumns = []string{
	dataset.ColSteps, dataset.ColHeartRate, dataset.ColCalories, dataset.ColDistance,
}

// Chart describes one chart to draw.
type Chart struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Section string `json:"section"`
	Title   string `json:"title"`
	Column  string `json:"column"`
	XLabel  string `json:"x_label"`
	YLabel  string `json:"y_label"`
}

// Plan lists the charts for ds in display order. Charts without any data to
// draw are left out.
func Plan(ds *dataset.Dataset) []Chart {
	var out []Chart
	for _, col := range HistogramColumns {
		if !ds.Has(col) || countPresent(ds.Floats(col)) == 0 {
			continue
		}
		out = append(out, Chart{
			ID:      "hist-" + col,
			Kind:    KindHistogram,
			Section: SectionDistributions,
			Title:   "Distribution of " + col,
			Column:  col,
			XLabel:  col,
			YLabel:  "count",
		})
	}
	if ds.Has(dataset.ColActivity) {
		for _, col := range BoxColumns {
			if !ds.Has(col) || len(groupValues(ds, dataset.ColActivity, col)) == 0 {
				continue
			}
			out = append(out, Chart{
				ID:      "box-" + col,
				Kind:    KindBoxPlot,
				Section: SectionByActivity,
				Title:   col + " by Activity",
				Column:  col,
				XLabel:  dataset.ColActivity,
				YLabel:  col,
			})
		}
	}
	if ds.HasAll(dataset.ColSteps, dataset.ColHeartRate) {
		xs, _ := pairs(ds, dataset.ColSteps, dataset.ColHeartRate)
		if len(xs) > 0 {
			out = append(out, Chart{
				ID:      "scatter-heart_rate-steps",
				Kind:    KindScatter,
				Section: SectionRelationships,
				Title:   "Heart Rate vs Steps",
				Column:  dataset.ColHeartRate,
				XLabel:  dataset.ColSteps,
				YLabel:  dataset.ColHeartRate,
			})
		}
	}
	return out
}

// Sections groups charts by section, keeping plan order.
func Sections(charts []Chart) map[string][]Chart {
	out := map[string][]Chart{}
	for _, c := range charts {
		out[c.Section] = append(out[c.Section], c)
	}
	return out
}

// missing reports whether v cannot be drawn.
func missing(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

func countPresent(xs []float64) int {
	n := 0
	for _, v := range xs {
		if !missing(v) {
			n++
		}
	}
	return n
}

func present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !missing(v) {
			out = append(out, v)
		}
	}
	return out
}

// labeledValues is one box: a label and its non-missing values.
type labeledValues struct {
	Label  string
	Values []float64
}

// groupValues splits metric by the sorted distinct labels of groupCol. Labels
// with no metric values are kept so box positions match the tick labels.
// It returns nil when no label has any value.
func groupValues(ds *dataset.Dataset, groupCol, metric string) []labeledValues {
	labels := ds.Distinct(groupCol)
	idx := make(map[string]int, len(labels))
	out := make([]labeledValues, len(labels))
	for i, l := range labels {
		idx[l] = i
		out[i].Label = l
	}
	rowLabels := ds.Labels(groupCol)
	vals := ds.Floats(metric)
	found := false
	for i, l := range rowLabels {
		if l == "" || missing(vals[i]) {
			continue
		}
		j := idx[l]
		out[j].Values = append(out[j].Values, vals[i])
		found = true
	}
	if !found {
		return nil
	}
	return out
}

// pairs returns the rows where both x and y are present.
func pairs(ds *dataset.Dataset, x, y string) ([]float64, []float64) {
	xa, ya := ds.Floats(x), ds.Floats(y)
	var xs, ys []float64
	for i := range xa {
		if missing(xa[i]) || missing(ya[i]) {
			continue
		}
		xs = append(xs, xa[i])
		ys = append(ys, ya[i])
	}
	return xs, ys
}
