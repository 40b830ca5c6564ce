package dataset

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Selection holds the chosen labels per categorical field. A field with no
// labels does not filter.
type Selection map[string][]string

// Active reports whether any field has at least one selected label.
func (s Selection) Active() bool {
	for _, v := range s {
		if len(v) > 0 {
			return true
		}
	}
	return false
}

// Fields returns the fields with a non-empty selection, sorted.
func (s Selection) Fields() []string {
	var out []string
	for k, v := range s {
		if len(v) > 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Filter returns the rows whose label in every selected field is one of the
// selected labels. Fields missing from the dataset are ignored. The receiver
// is not modified.
func (d *Dataset) Filter(sel Selection) (*Dataset, error) {
	keep := make([]bool, d.Len())
	for i := range keep {
		keep[i] = true
	}
	applied := false
	for _, field := range sel.Fields() {
		if !d.Has(field) {
			continue
		}
		applied = true
		allowed := make(map[string]bool, len(sel[field]))
		for _, v := range sel[field] {
			allowed[v] = true
		}
		for i, v := range d.Labels(field) {
			if !allowed[v] || v == "" {
				keep[i] = false
			}
		}
	}
	if !applied {
		return d, nil
	}

	var idx []int
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	if len(idx) == d.Len() {
		return d, nil
	}
	if len(idx) == 0 {
		return d.truncate(), nil
	}
	df := d.frame.Subset(idx)
	if df.Err != nil {
		return nil, df.Err
	}
	return d.derive(df), nil
}

// truncate returns a dataset with the same columns and types and no rows.
// Callers guarantee at least one column.
func (d *Dataset) truncate() *Dataset {
	cols := d.Columns()
	ss := make([]series.Series, len(cols))
	for i, c := range cols {
		if d.IsNumeric(c) {
			ss[i] = series.New([]float64{}, series.Float, c)
		} else {
			ss[i] = series.New([]string{}, series.String, c)
		}
	}
	return d.derive(dataframe.New(ss...))
}
