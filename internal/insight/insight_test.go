package insight

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
)

func build(t *testing.T, header []string, records [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Normalize("watch.csv", header, records)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	ds, err = dataset.Coerce(ds)
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	return ds
}

func TestTopActivitiesBySteps(t *testing.T) {
	ds := build(t, []string{"activity", "steps"}, [][]string{
		{"Walking", "4000"}, {"Walking", "6000"},
		{"Running", "8000"},
		{"Sitting", "100"}, {"Sitting", "300"},
		{"Lying", ""},
	})

	top := TopByMean(ds, dataset.ColActivity, dataset.ColSteps, TopN)
	if len(top) != 3 {
		t.Fatalf("top = %#v", top)
	}
	order := []string{top[0].Label, top[1].Label, top[2].Label}
	if strings.Join(order, ",") != "Running,Walking,Sitting" {
		t.Fatalf("order = %v", order)
	}
	if top[1].Mean != 5000 || top[1].Count != 2 {
		t.Fatalf("walking = %#v", top[1])
	}

	got := Summarize(ds)
	if len(got) != 1 || got[0].Kind != KindTopSteps {
		t.Fatalf("insights = %#v", got)
	}
	want := "Top activities by avg steps: Running (8000), Walking (5000), Sitting (200)"
	if got[0].Text != want {
		t.Fatalf("text = %q, want %q", got[0].Text, want)
	}
}

func TestTopActivitiesByHeartRateFormatting(t *testing.T) {
	ds := build(t, []string{"activity", "hear_rate"}, [][]string{
		{"Running", "150.25"}, {"Running", "149.75"},
		{"Walking", "95.04"},
		{"Sitting", "70"}, {"Lying", "60"},
		{"", "200"},
	})
	got := Summarize(ds)
	if len(got) != 1 {
		t.Fatalf("insights = %#v", got)
	}
	want := "Top activities by avg heart rate: Running (150.0 bpm), Walking (95.0 bpm), Sitting (70.0 bpm)"
	if got[0].Text != want {
		t.Fatalf("text = %q, want %q", got[0].Text, want)
	}
}

func TestCorrelationPerfectLinear(t *testing.T) {
	var records [][]string
	for i := 1; i <= 20; i++ {
		records = append(records, []string{fmt.Sprint(i * 100), fmt.Sprint(60 + 2*i)})
	}
	records = append(records, []string{"", "90"}, []string{"500", "oops"})
	ds := build(t, []string{"steps", "heart_rate"}, records)

	r, n := Correlation(ds, dataset.ColSteps, dataset.ColHeartRate)
	if n != 20 {
		t.Fatalf("complete rows = %d, want 20", n)
	}
	if math.Abs(r-1) > 1e-9 {
		t.Fatalf("r = %v, want 1", r)
	}
	got := Summarize(ds)
	if len(got) != 1 || got[0].Text != "Correlation between steps and heart rate: 1.00 (Pearson)" {
		t.Fatalf("insights = %#v", got)
	}
}

func TestCorrelationUndefined(t *testing.T) {
	ds := build(t, []string{"steps", "heart_rate"}, [][]string{{"1", "70"}, {"2", "70"}, {"3", "70"}})
	got := Summarize(ds)
	if len(got) != 1 || !strings.Contains(got[0].Text, ": n/a (Pearson)") {
		t.Fatalf("insights = %#v", got)
	}

	single := build(t, []string{"steps", "heart_rate"}, [][]string{{"1", "70"}})
	if r, n := Correlation(single, dataset.ColSteps, dataset.ColHeartRate); !math.IsNaN(r) || n != 1 {
		t.Fatalf("r, n = %v, %d", r, n)
	}
}

func TestSummarizeSkipsMissingColumns(t *testing.T) {
	ds := build(t, []string{"calories", "device"}, [][]string{{"10", "Watch"}})
	if got := Summarize(ds); len(got) != 0 {
		t.Fatalf("expected no insights, got %#v", got)
	}
	if got := Summarize(dataset.Empty("sample")); len(got) != 0 {
		t.Fatalf("expected no insights for empty dataset, got %#v", got)
	}
}

func TestSummarizeAllThreeInOrder(t *testing.T) {
	ds := build(t, []string{"activity", "steps", "heart_rate"}, [][]string{
		{"Walking", "100", "80"}, {"Running", "300", "140"},
	})
	got := Summarize(ds)
	if len(got) != 3 {
		t.Fatalf("insights = %#v", got)
	}
	kinds := []Kind{got[0].Kind, got[1].Kind, got[2].Kind}
	want := []Kind{KindTopSteps, KindTopHeartRate, KindCorrelation}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", kinds, want)
		}
	}
}

func TestGroupMeansTieBreaksByLabel(t *testing.T) {
	ds := build(t, []string{"activity", "steps"}, [][]string{{"b", "10"}, {"a", "10"}, {"c", "20"}})
	gm := GroupMeans(ds, dataset.ColActivity, dataset.ColSteps)
	if len(gm) != 3 || gm[0].Label != "c" || gm[1].Label != "a" || gm[2].Label != "b" {
		t.Fatalf("group means = %#v", gm)
	}
}
