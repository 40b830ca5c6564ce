package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
)

// ParseNumeric parses a cell as float64. Blank, unparsable and non-finite
// cells report ok=false.
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// GenderLabel maps the codes 0, 1 and 2 to "Unknown", "Male" and "Female".
// Any other value, including labels already in the data, is returned as is.
func GenderLabel(v string) string {
	f, ok := ParseNumeric(v)
	if !ok {
		return v
	}
	if label, ok := genderLabels[f]; ok {
		return label
	}
	return v
}

// Coerce converts the known numeric columns to float64, marks the known
// categorical columns and relabels gender codes. It never fails: cells that
// do not parse become NaN.
func Coerce(d *Dataset) (*Dataset, error) {
	out := d.derive(d.frame)
	for _, col := range d.Columns() {
		switch {
		case isNumericColumn(col):
			raw := d.frame.Col(col)
			vals := make([]float64, raw.Len())
			if raw.Type() == series.Float {
				copy(vals, raw.Float())
			} else {
				for i, cell := range raw.Records() {
					f, ok := ParseNumeric(cell)
					if !ok {
						f = math.NaN()
					}
					vals[i] = f
				}
			}
			df := out.frame.Mutate(series.New(vals, series.Float, col))
			if df.Err != nil {
				return nil, df.Err
			}
			out.frame = df
		case isCategoricalColumn(col):
			out.categorical[col] = true
			if col != ColGender {
				continue
			}
			labels := d.Labels(col)
			for i, v := range labels {
				labels[i] = GenderLabel(v)
			}
			df := out.frame.Mutate(series.New(labels, series.String, col))
			if df.Err != nil {
				return nil, df.Err
			}
			out.frame = df
		}
	}
	return out, nil
}
