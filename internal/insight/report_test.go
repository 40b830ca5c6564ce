package insight

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
)

func TestBuildReportAndMarkdown(t *testing.T) {
	base := build(t, []string{"Unnamed: 0", "activity", "Applewatch.Steps_LE", "gender"}, [][]string{
		{"0", "Walking", "4000", "1"},
		{"1", "Running", "8000", "2"},
		{"2", "Walking", "bad", "0"},
		{"3", "Sitting", "200", "1"},
	})
	sel := dataset.Selection{dataset.ColActivity: {"Walking", "Running"}}
	ds, err := base.Filter(sel)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	rep := BuildReport(ds, ReportOptions{SampleRows: 2, Selection: sel, BaseRows: base.Len()})
	if rep.Rows != 3 || rep.Cols != 3 {
		t.Fatalf("rows/cols = %d/%d", rep.Rows, rep.Cols)
	}
	if len(rep.Columns) != 3 {
		t.Fatalf("columns = %#v", rep.Columns)
	}
	steps := rep.Columns[1]
	if steps.Name != "steps" || steps.Kind != KindNumeric || steps.NonNull != 2 || steps.Missing != 1 {
		t.Fatalf("steps summary = %#v", steps)
	}
	if steps.Min != 4000 || steps.Max != 8000 || steps.Mean != 6000 {
		t.Fatalf("steps stats = %#v", steps)
	}
	gender := rep.Columns[2]
	if gender.Kind != KindCategorical || gender.Unique != 3 {
		t.Fatalf("gender summary = %#v", gender)
	}

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: watch.csv",
		"Rows: 3 | Columns: 3",
		"Filter: activity in {Walking, Running}",
		"- steps: numeric (non-null 2, missing 33.3%)",
		"- activity: categorical (non-null 3, missing 0.0%) — top: Walking(2), Running(1)",
		"[KEY INSIGHTS]",
		"• Top activities by avg steps: Running (8000), Walking (4000)",
		"[DATA PREVIEW]",
		"| activity | steps | gender |",
		"| Walking | 4000 | Male |",
		"filters kept 3 of 4 rows",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestReportEmptyDataset(t *testing.T) {
	rep := BuildReport(dataset.Empty("sample"), ReportOptions{SampleRows: 10})
	md := rep.Markdown()
	if !strings.Contains(md, "Rows: 0 | Columns: 0") || !strings.Contains(md, "dataset has no columns") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
	if strings.Contains(md, "[KEY INSIGHTS]") {
		t.Fatalf("empty dataset should have no insights:\n%s", md)
	}
}

func TestMarkdownTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 100)
	ds, err := dataset.FromColumns("latin.csv", []string{"note"}, [][]string{{long}})
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	md := BuildReport(ds, ReportOptions{SampleRows: 1}).Markdown()
	want := "| " + strings.Repeat("é", 77) + "... |"
	if !strings.Contains(md, want) {
		t.Fatalf("preview cell not truncated to 77 runes:\n%s", md)
	}
	if !utf8.ValidString(md) {
		t.Fatalf("markdown contains a split rune")
	}
}

func TestFormatCount(t *testing.T) {
	cases := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"}
	for n, want := range cases {
		if got := FormatCount(n); got != want {
			t.Fatalf("FormatCount(%d) = %q, want %q", n, got, want)
		}
	}
}
