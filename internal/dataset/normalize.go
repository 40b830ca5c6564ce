package dataset

// HeaderMapping records where a kept source column ended up.
type HeaderMapping struct {
	Index     int
	Source    string
	Canonical string
}

// NormalizeHeaders maps raw headers to canonical names. Unnamed index columns
// are dropped; unknown headers pass through unchanged. An alias whose
// canonical name is already used by another column keeps its source header.
func NormalizeHeaders(headers []string) []HeaderMapping {
	taken := make(map[string]bool, len(headers))
	for _, h := range headers {
		if IsUnnamed(h) {
			continue
		}
		if _, ok := CanonicalName(h); !ok {
			taken[h] = true
		}
	}

	out := make([]HeaderMapping, 0, len(headers))
	for i, h := range headers {
		if IsUnnamed(h) {
			continue
		}
		name := h
		if c, ok := CanonicalName(h); ok && !taken[c] {
			name = c
		}
		taken[name] = true
		out = append(out, HeaderMapping{Index: i, Source: h, Canonical: name})
	}
	return out
}

// Normalize builds a dataset from a raw header and records, renaming alias
// columns and dropping unnamed index columns. All columns are strings until
// Coerce runs.
func Normalize(name string, header []string, records [][]string) (*Dataset, error) {
	mapping := NormalizeHeaders(header)
	names := make([]string, len(mapping))
	cols := make([][]string, len(mapping))
	for j, m := range mapping {
		names[j] = m.Canonical
		col := make([]string, len(records))
		for i, rec := range records {
			if m.Index < len(rec) {
				col[i] = rec[m.Index]
			}
		}
		cols[j] = col
	}
	return FromColumns(name, names, cols)
}
