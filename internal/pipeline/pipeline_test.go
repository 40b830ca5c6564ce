package pipeline

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
	"github.com/KaramelBytes/pulseboard/internal/ingest"
	"github.com/KaramelBytes/pulseboard/internal/insight"
	"github.com/KaramelBytes/pulseboard/internal/monitoring"
)

const watchCSV = `Unnamed: 0,X1,age,gender,hear_rate,steps,device,activity
0,1,30,1,90,4000,apple watch,Walking
1,2,31,2,95,6000,fitbit,Walking
2,3,29,1,150,8000,apple watch,Running
3,4,45,0,70,200,fitbit,Sitting
`

func muteLogs(t *testing.T) {
	t.Helper()
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = orig })
}

func TestLoadCleansAndTypes(t *testing.T) {
	muteLogs(t)
	ds, err := Load("watch.csv", []byte(watchCSV), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Has("Unnamed: 0") || ds.Has("hear_rate") {
		t.Fatalf("raw columns survived: %v", ds.Columns())
	}
	if !ds.IsNumeric(dataset.ColHeartRate) {
		t.Fatalf("heart_rate not numeric")
	}
	got := ds.Labels(dataset.ColGender)
	want := []string{"Male", "Female", "Male", "Unknown"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("gender[%d]=%q want %q", i, got[i], want[i])
		}
	}
}

func TestLoadUsesCache(t *testing.T) {
	muteLogs(t)
	cache := ingest.NewCache(2)
	for i := 0; i < 2; i++ {
		if _, err := Load("watch.csv", []byte(watchCSV), cache); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}
	if hits, misses := cache.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}
}

func TestLoadRejectsEmpty(t *testing.T) {
	muteLogs(t)
	if _, err := Load("empty.csv", nil, nil); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestRunFiltersAndSummarizes(t *testing.T) {
	muteLogs(t)
	base, err := Load("watch.csv", []byte(watchCSV), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sel := dataset.Selection{dataset.ColDevice: {"apple watch"}}
	res, err := Run(base, sel, Options{PreviewRows: 10, SkipCharts: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Filtered.Len() != 2 || base.Len() != 4 {
		t.Fatalf("filtered=%d base=%d", res.Filtered.Len(), base.Len())
	}
	if len(res.Images) != 0 {
		t.Fatalf("charts drawn with SkipCharts")
	}
	if len(res.Charts) == 0 {
		t.Fatalf("expected a chart plan")
	}
	if got := res.Filters[dataset.ColDevice]; len(got) != 2 {
		t.Fatalf("filter options should come from base: %v", got)
	}
	if len(res.Report.Insights) != 3 {
		t.Fatalf("insights=%d", len(res.Report.Insights))
	}
	if !strings.HasPrefix(res.Report.Insights[0].Text, "Top activities by avg steps: Running") {
		t.Fatalf("unexpected first insight %q", res.Report.Insights[0].Text)
	}
	if res.Report.Insights[2].Kind != insight.KindCorrelation {
		t.Fatalf("third insight kind %q", res.Report.Insights[2].Kind)
	}
	if !strings.Contains(res.Report.Markdown(), "filters kept 2 of 4 rows") {
		t.Fatalf("missing filter note:\n%s", res.Report.Markdown())
	}
}

func TestRunKeepsBasePreview(t *testing.T) {
	muteLogs(t)
	base, err := Load("watch.csv", []byte(watchCSV), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sel := dataset.Selection{dataset.ColActivity: {"Sitting"}}
	res, err := Run(base, sel, Options{PreviewRows: 10, SkipCharts: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.BasePreview.Rows) != 4 {
		t.Fatalf("base preview rows=%d want 4", len(res.BasePreview.Rows))
	}
	if res.Filtered.Len() != 1 {
		t.Fatalf("filtered=%d want 1", res.Filtered.Len())
	}
}

func TestFilterOptionsNarrowDeviceByActivity(t *testing.T) {
	muteLogs(t)
	base, err := Load("watch.csv", []byte(watchCSV), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts := FilterOptions(base, dataset.Selection{dataset.ColActivity: {"Running"}})
	if got := opts[dataset.ColActivity]; len(got) != 3 {
		t.Fatalf("activity options=%v want all three", got)
	}
	if got := opts[dataset.ColDevice]; len(got) != 1 || got[0] != "apple watch" {
		t.Fatalf("device options=%v want [apple watch]", got)
	}
	// a device selection does not narrow the activity list
	opts = FilterOptions(base, dataset.Selection{dataset.ColDevice: {"fitbit"}})
	if got := opts[dataset.ColActivity]; len(got) != 3 {
		t.Fatalf("activity options=%v want all three", got)
	}
}

func TestRunDrawsCharts(t *testing.T) {
	muteLogs(t)
	base, err := Load("watch.csv", []byte(watchCSV), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	res, err := Run(base, nil, Options{PreviewRows: 3})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Images) != len(res.Charts) {
		t.Fatalf("images=%d charts=%d", len(res.Images), len(res.Charts))
	}
	if len(res.Report.Preview.Rows) != 3 {
		t.Fatalf("preview rows=%d", len(res.Report.Preview.Rows))
	}
}

func TestRunNilDataset(t *testing.T) {
	if _, err := Run(nil, nil, Options{}); err == nil {
		t.Fatalf("expected error")
	}
}
