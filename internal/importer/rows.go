package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Row is one flat import record: column name to cell text.
type Row map[string]string

// ErrUnsupportedFormat is returned by LoadRows for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// Get returns the trimmed value of the first column matching one of names.
// Column names are compared case-insensitively with punctuation and spacing
// folded, so "Sub Process" matches "sub_process".
func (r Row) Get(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := r[name]; ok {
			return strings.TrimSpace(v), true
		}
	}
	for _, name := range names {
		want := foldKey(name)
		for k, v := range r {
			if foldKey(k) == want {
				return strings.TrimSpace(v), true
			}
		}
	}
	return "", false
}

// Value is Get without the presence flag.
func (r Row) Value(names ...string) string {
	v, _ := r.Get(names...)
	return v
}

// String renders the row with sorted keys. It is stored verbatim in the
// notes of a failed import.
func (r Row) String() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%q: %q", k, r[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func foldKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SplitNames splits a comma separated list of names, trimming each and
// dropping empties.
func SplitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// LoadOptions tunes LoadRows.
type LoadOptions struct {
	// Sheet selects the workbook sheet for .xlsx files; empty means the first.
	Sheet string
}

// LoadRows reads every record of a csv, xlsx, json or yaml file.
// Keys are trimmed and rows whose cells are all blank are skipped.
func LoadRows(path string, opts LoadOptions) ([]Row, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx":
		return ReadXLSX(path, opts.Sheet)
	case ".csv", ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	switch ext {
	case ".csv":
		return ReadCSV(f)
	case ".json":
		return ReadJSON(f)
	}
	return ReadYAML(f)
}

// ReadCSV reads a header row followed by records.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return tableRows(records), nil
}

// ReadXLSX reads the named sheet (or the first) of a workbook. The first
// row is the header.
func ReadXLSX(path, sheet string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
		}
		sheet = sheets[0]
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return tableRows(records), nil
}

func tableRows(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []Row
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		if !row.blank() {
			rows = append(rows, row)
		}
	}
	return rows
}

// ReadJSON reads an array of objects. Non-string scalars are rendered as text.
func ReadJSON(r io.Reader) ([]Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding json rows: %w", err)
	}
	return mapRows(raw), nil
}

// ReadYAML reads a sequence of mappings.
func ReadYAML(r io.Reader) ([]Row, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding yaml rows: %w", err)
	}
	return mapRows(raw), nil
}

func mapRows(raw []map[string]any) []Row {
	var rows []Row
	for _, m := range raw {
		row := make(Row, len(m))
		for k, v := range m {
			row[strings.TrimSpace(k)] = cellText(v)
		}
		if !row.blank() {
			rows = append(rows, row)
		}
	}
	return rows
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, cellText(item))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

func (r Row) blank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
