package library

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// utf8BOM is written at the start of CSV files by some spreadsheet tools.
var utf8BOM = []byte("\xef\xbb\xbf")

// Table is a whole flat file held in memory: a header row plus string rows.
// Every Save rewrites the entire file.
type Table struct {
	path   string
	header []string
	cols   map[string]int
	rows   [][]string
	digest string
}

// LoadTable reads the CSV file at path and checks that every required column
// is present in its header.
func LoadTable(path string, required []string) (*Table, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no header row: %w", path, ErrMissingColumn)
	}

	t := &Table{
		path:   path,
		header: records[0],
		cols:   make(map[string]int, len(records[0])),
		rows:   records[1:],
		digest: digestOf(data),
	}
	for i, name := range t.header {
		t.cols[name] = i
	}
	for _, name := range required {
		if _, ok := t.cols[name]; !ok {
			return nil, fmt.Errorf("%s: %q: %w", path, name, ErrMissingColumn)
		}
	}

	slog.Debug("table loaded", "path", path, "rows", len(t.rows))
	return t, nil
}

// Path returns the backing file of the table.
func (t *Table) Path() string { return t.path }

// Len returns the number of data rows (header excluded).
func (t *Table) Len() int { return len(t.rows) }

// Digest is the BLAKE2b-256 of the file bytes last read or written, hex encoded.
func (t *Table) Digest() string { return t.digest }

// Find returns the index of the first row whose col equals value exactly,
// or -1.
func (t *Table) Find(col, value string) int {
	i, ok := t.cols[col]
	if !ok {
		return -1
	}
	for n, row := range t.rows {
		if row[i] == value {
			return n
		}
	}
	return -1
}

// Get returns the value of col in row, or "" if the table has no such column.
func (t *Table) Get(row int, col string) string {
	i, ok := t.cols[col]
	if !ok {
		return ""
	}
	return t.rows[row][i]
}

// Set updates col in row. Unknown columns are ignored.
func (t *Table) Set(row int, col, value string) {
	if i, ok := t.cols[col]; ok {
		t.rows[row][i] = value
	}
}

// Append adds a row built from values keyed by column name and returns its
// index. Columns missing from values are left empty.
func (t *Table) Append(values map[string]string) int {
	row := make([]string, len(t.header))
	for name, v := range values {
		if i, ok := t.cols[name]; ok {
			row[i] = v
		}
	}
	t.rows = append(t.rows, row)
	return len(t.rows) - 1
}

// Save rewrites the whole backing file, header included.
func (t *Table) Save() error {
	digest, err := WriteTable(t.path, t.header, t.rows)
	if err != nil {
		return err
	}
	t.digest = digest
	slog.Debug("table flushed", "path", t.path, "rows", len(t.rows), "digest", digest)
	return nil
}

// WriteTable writes header and rows to path as CSV, replacing any existing
// file, and returns the digest of the written bytes.
func WriteTable(path string, header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Clean(path), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write table: %w", err)
	}
	return digestOf(buf.Bytes()), nil
}

func digestOf(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
