// Package dataset holds the in-memory table for one session: canonical column
// naming, type coercion and categorical row filters. A Dataset is immutable;
// every transformation returns a new one.
package dataset

import (
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// MissingLabel is how a missing cell is displayed.
const MissingLabel = "NaN"

// Dataset is a named frame plus the set of columns treated as categorical.
type Dataset struct {
	Name        string
	frame       dataframe.DataFrame
	categorical map[string]bool
}

// Empty returns a dataset with no columns and no rows.
func Empty(name string) *Dataset {
	return &Dataset{Name: name, categorical: map[string]bool{}}
}

// FromColumns builds a dataset of string columns. names must be unique and
// every column must have the same length.
func FromColumns(name string, names []string, cols [][]string) (*Dataset, error) {
	if len(names) == 0 {
		return Empty(name), nil
	}
	ss := make([]series.Series, len(names))
	for i, n := range names {
		ss[i] = series.New(cols[i], series.String, n)
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return nil, df.Err
	}
	return &Dataset{Name: name, frame: df, categorical: map[string]bool{}}, nil
}

func (d *Dataset) derive(df dataframe.DataFrame) *Dataset {
	cat := make(map[string]bool, len(d.categorical))
	for k, v := range d.categorical {
		cat[k] = v
	}
	return &Dataset{Name: d.Name, frame: df, categorical: cat}
}

// Frame exposes the underlying dataframe.
func (d *Dataset) Frame() dataframe.DataFrame { return d.frame }

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	if d.frame.Ncol() == 0 {
		return nil
	}
	return d.frame.Names()
}

// Len returns the row count.
func (d *Dataset) Len() int { return d.frame.Nrow() }

// Width returns the column count.
func (d *Dataset) Width() int { return d.frame.Ncol() }

// Has reports whether the dataset has a column called col.
func (d *Dataset) Has(col string) bool {
	for _, n := range d.Columns() {
		if n == col {
			return true
		}
	}
	return false
}

// HasAll reports whether every named column is present.
func (d *Dataset) HasAll(cols ...string) bool {
	for _, c := range cols {
		if !d.Has(c) {
			return false
		}
	}
	return true
}

// IsNumeric reports whether col holds float64 values.
func (d *Dataset) IsNumeric(col string) bool {
	if !d.Has(col) {
		return false
	}
	return d.frame.Col(col).Type() == series.Float
}

// IsCategorical reports whether col was marked categorical.
func (d *Dataset) IsCategorical(col string) bool { return d.categorical[col] }

// Floats returns col as float64 values with NaN for missing or unparsable
// cells. It returns nil when the column is absent.
func (d *Dataset) Floats(col string) []float64 {
	if !d.Has(col) {
		return nil
	}
	return d.frame.Col(col).Float()
}

// Labels returns col as display strings, with "" for missing cells.
func (d *Dataset) Labels(col string) []string {
	if !d.Has(col) {
		return nil
	}
	s := d.frame.Col(col)
	out := make([]string, s.Len())
	if s.Type() == series.Float {
		for i, v := range s.Float() {
			if !math.IsNaN(v) {
				out[i] = formatFloat(v)
			}
		}
		return out
	}
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out
}

// Distinct returns the sorted distinct non-missing labels of col.
func (d *Dataset) Distinct(col string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range d.Labels(col) {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Preview is the first rows of a dataset rendered as strings.
type Preview struct {
	Columns []string
	Rows    [][]string
}

// Head renders up to n rows for display; missing cells show as MissingLabel.
func (d *Dataset) Head(n int) Preview {
	cols := d.Columns()
	p := Preview{Columns: cols}
	rows := d.Len()
	if n < rows {
		rows = n
	}
	if rows <= 0 {
		return p
	}
	labels := make([][]string, len(cols))
	for j, c := range cols {
		labels[j] = d.Labels(c)
	}
	p.Rows = make([][]string, rows)
	for i := 0; i < rows; i++ {
		row := make([]string, len(cols))
		for j := range cols {
			row[j] = labels[j][i]
			if row[j] == "" {
				row[j] = MissingLabel
			}
		}
		p.Rows[i] = row
	}
	return p
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
