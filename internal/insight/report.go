package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
)

// Column kinds reported in a ColumnSummary.
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
	KindText        = "text"
)

const maxTopValues = 8

// ReportOptions controls BuildReport.
type ReportOptions struct {
	// SampleRows is how many preview rows to include; 0 omits the preview.
	SampleRows int
	// Selection is echoed in the report when non-empty.
	Selection dataset.Selection
	// BaseRows is the row count before filtering, used for the notes.
	BaseRows int
}

// Report summarizes a (possibly filtered) dataset.
type Report struct {
	Name      string            `json:"name"`
	Rows      int               `json:"rows"`
	Cols      int               `json:"columns"`
	Columns   []ColumnSummary   `json:"column_summaries"`
	Preview   dataset.Preview   `json:"preview"`
	Insights  []Insight         `json:"insights"`
	Selection dataset.Selection `json:"selection,omitempty"`
	Notes     []string          `json:"notes,omitempty"`
}

// ColumnSummary describes one column.
type ColumnSummary struct {
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	NonNull   int             `json:"non_null"`
	Missing   int             `json:"missing"`
	Unique    int             `json:"unique,omitempty"`
	Min       float64         `json:"min,omitempty"`
	Max       float64         `json:"max,omitempty"`
	Mean      float64         `json:"mean,omitempty"`
	Std       float64         `json:"std,omitempty"`
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

// CategoryCount is a label and how often it occurs.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// BuildReport summarizes every column of ds and attaches the insights.
func BuildReport(ds *dataset.Dataset, opt ReportOptions) *Report {
	r := &Report{
		Name:      ds.Name,
		Rows:      ds.Len(),
		Cols:      ds.Width(),
		Insights:  Summarize(ds),
		Selection: opt.Selection,
	}
	for _, col := range ds.Columns() {
		r.Columns = append(r.Columns, summarizeColumn(ds, col))
	}
	if opt.SampleRows > 0 {
		r.Preview = ds.Head(opt.SampleRows)
	}
	if opt.BaseRows > r.Rows {
		r.Notes = append(r.Notes, fmt.Sprintf("filters kept %d of %d rows", r.Rows, opt.BaseRows))
	}
	if r.Cols == 0 {
		r.Notes = append(r.Notes, "dataset has no columns")
	}
	return r
}

func summarizeColumn(ds *dataset.Dataset, col string) ColumnSummary {
	s := ColumnSummary{Name: col}
	if ds.IsNumeric(col) {
		s.Kind = KindNumeric
		var xs []float64
		for _, v := range ds.Floats(col) {
			if math.IsNaN(v) {
				s.Missing++
				continue
			}
			xs = append(xs, v)
		}
		s.NonNull = len(xs)
		if len(xs) > 0 {
			s.Min = floats.Min(xs)
			s.Max = floats.Max(xs)
			s.Mean = stat.Mean(xs, nil)
		}
		if len(xs) > 1 {
			s.Std = stat.StdDev(xs, nil)
		}
		return s
	}

	s.Kind = KindText
	if ds.IsCategorical(col) {
		s.Kind = KindCategorical
	}
	counts := map[string]int{}
	for _, v := range ds.Labels(col) {
		if v == "" {
			s.Missing++
			continue
		}
		s.NonNull++
		counts[v]++
	}
	s.Unique = len(counts)
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > maxTopValues {
		tops = tops[:maxTopValues]
	}
	s.TopValues = tops
	return s
}

// Markdown renders the report for terminals and files.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %s | Columns: %d\n", FormatCount(r.Rows), r.Cols))
	for _, f := range r.Selection.Fields() {
		b.WriteString(fmt.Sprintf("Filter: %s in {%s}\n", f, strings.Join(r.Selection[f], ", ")))
	}

	if len(r.Columns) > 0 {
		b.WriteString("\n[SCHEMA]\n")
	}
	for _, c := range r.Columns {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", c.Name, c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case KindNumeric:
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			}
		case KindCategorical, KindText:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(r.Insights) > 0 {
		b.WriteString("\n[KEY INSIGHTS]\n")
		for _, in := range r.Insights {
			b.WriteString("• ")
			b.WriteString(in.Text)
			b.WriteString("\n")
		}
	}

	if len(r.Preview.Rows) > 0 {
		b.WriteString("\n[DATA PREVIEW]\n")
		b.WriteString("| " + strings.Join(r.Preview.Columns, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(r.Preview.Columns)) + "\n")
		for _, row := range r.Preview.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				v = truncateRunes(v, 80)
				cells[i] = safeVal(v)
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}

// FormatCount renders n with comma thousands separators.
func FormatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// truncateRunes shortens s to at most max runes, ending in "...".
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
