// Package insight computes the templated summary sentences shown under
// "Key Insights" and the dataset report printed by the CLI.
package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
)

// TopN is how many groups the ranking insights list.
const TopN = 3

// Kind identifies an insight.
type Kind string

const (
	KindTopSteps     Kind = "top_activities_steps"
	KindTopHeartRate Kind = "top_activities_heart_rate"
	KindCorrelation  Kind = "steps_heart_rate_correlation"
)

// Insight is one rendered summary sentence.
type Insight struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// GroupMean is the mean of a metric over one label's non-missing values.
type GroupMean struct {
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// GroupMeans returns the mean of metric per distinct label of groupCol,
// highest mean first with ties broken by label. Rows with a missing label and
// groups without any metric value are skipped.
func GroupMeans(ds *dataset.Dataset, groupCol, metric string) []GroupMean {
	if !ds.HasAll(groupCol, metric) {
		return nil
	}
	labels := ds.Labels(groupCol)
	vals := ds.Floats(metric)
	byLabel := map[string][]float64{}
	for i, l := range labels {
		if l == "" || math.IsNaN(vals[i]) {
			continue
		}
		byLabel[l] = append(byLabel[l], vals[i])
	}
	out := make([]GroupMean, 0, len(byLabel))
	for l, xs := range byLabel {
		out = append(out, GroupMean{Label: l, Mean: stat.Mean(xs, nil), Count: len(xs)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean == out[j].Mean {
			return out[i].Label < out[j].Label
		}
		return out[i].Mean > out[j].Mean
	})
	return out
}

// TopByMean returns at most n entries of GroupMeans.
func TopByMean(ds *dataset.Dataset, groupCol, metric string, n int) []GroupMean {
	gm := GroupMeans(ds, groupCol, metric)
	if len(gm) > n {
		gm = gm[:n]
	}
	return gm
}

// Correlation returns the Pearson coefficient of a and b over rows where both
// are present, and the number of such rows. The coefficient is NaN when it is
// undefined.
func Correlation(ds *dataset.Dataset, a, b string) (float64, int) {
	if !ds.HasAll(a, b) {
		return math.NaN(), 0
	}
	xa, xb := ds.Floats(a), ds.Floats(b)
	var x, y []float64
	for i := range xa {
		if math.IsNaN(xa[i]) || math.IsNaN(xb[i]) {
			continue
		}
		x = append(x, xa[i])
		y = append(y, xb[i])
	}
	if len(x) < 2 {
		return math.NaN(), len(x)
	}
	r := stat.Correlation(x, y, nil)
	if math.IsInf(r, 0) {
		r = math.NaN()
	}
	return r, len(x)
}

// Summarize returns the insights whose columns are present, in display order.
func Summarize(ds *dataset.Dataset) []Insight {
	var out []Insight
	if ds.HasAll(dataset.ColActivity, dataset.ColSteps) {
		top := TopByMean(ds, dataset.ColActivity, dataset.ColSteps, TopN)
		out = append(out, Insight{
			Kind: KindTopSteps,
			Text: "Top activities by avg steps: " + joinGroups(top, "%s (%.0f)"),
		})
	}
	if ds.HasAll(dataset.ColActivity, dataset.ColHeartRate) {
		top := TopByMean(ds, dataset.ColActivity, dataset.ColHeartRate, TopN)
		out = append(out, Insight{
			Kind: KindTopHeartRate,
			Text: "Top activities by avg heart rate: " + joinGroups(top, "%s (%.1f bpm)"),
		})
	}
	if ds.HasAll(dataset.ColSteps, dataset.ColHeartRate) {
		r, _ := Correlation(ds, dataset.ColSteps, dataset.ColHeartRate)
		out = append(out, Insight{
			Kind: KindCorrelation,
			Text: fmt.Sprintf("Correlation between steps and heart rate: %s (Pearson)", formatCoefficient(r)),
		})
	}
	return out
}

func joinGroups(gm []GroupMean, format string) string {
	parts := make([]string, len(gm))
	for i, g := range gm {
		parts[i] = fmt.Sprintf(format, g.Label, g.Mean)
	}
	return strings.Join(parts, ", ")
}

func formatCoefficient(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", r)
}
