package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encodings reported on a parsed Table.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

var (
	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("no columns to parse from file")
	// ErrUnsupported indicates a file extension we do not read.
	ErrUnsupported = errors.New("unsupported file format")
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Table is the raw parsed form of an upload: a header plus string records,
// every record padded to the header width. Tables are shared through the
// Cache and must be treated as read-only.
type Table struct {
	Header   []string
	Records  [][]string
	Encoding string
}

// Supported reports whether the file name carries an extension we can read.
// A name without an extension is treated as comma-separated.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt", "":
		return true
	}
	return false
}

// Parse decodes data and reads it as delimited text. Bytes that are not valid
// UTF-8 are decoded once more as latin-1; after that any read error is final.
func Parse(name string, data []byte) (*Table, error) {
	if !Supported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
	}
	text, enc, err := decode(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = sniffDelimiter(name)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = normalizeHeader(header)
	ncol := len(header)

	t := &Table{Header: header, Encoding: enc}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.Records)+1, err)
		}
		if len(rec) > ncol {
			return nil, fmt.Errorf("read row %d: expected %d fields, saw %d", len(t.Records)+1, ncol, len(rec))
		}
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// decode returns UTF-8 text. Valid UTF-8 passes through minus any BOM;
// anything else is read as ISO-8859-1, which maps every byte.
func decode(data []byte) ([]byte, string, error) {
	if utf8.Valid(data) {
		return bytes.TrimPrefix(data, utf8BOM), EncodingUTF8, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode latin-1: %w", err)
	}
	return out, EncodingLatin1, nil
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}

// normalizeHeader trims header cells, labels blank ones "Unnamed: <i>" and
// suffixes repeats as name.1, name.2 so every header is unique.
func normalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	repeats := make(map[string]int)
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for used[name] {
			repeats[h]++
			name = h + "." + strconv.Itoa(repeats[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}
