package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/multierr"
)

// WriteCSV overwrites path with t as comma-separated text with a header row.
// The identifier column, when present, comes first. Missing cells are written
// empty.
func WriteCSV(path string, t *Table) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return EncodeCSV(f, t)
}

// EncodeCSV writes t to out in the format WriteCSV produces.
func EncodeCSV(out io.Writer, t *Table) error {
	w := csv.NewWriter(out)

	header := make([]string, 0, len(t.Names)+1)
	if t.IDs != nil {
		header = append(header, t.IDName)
	}
	header = append(header, t.Names...)
	if err := w.Write(header); err != nil {
		return err
	}

	rec := make([]string, len(header))
	for i := 0; i < t.Len(); i++ {
		k := 0
		if t.IDs != nil {
			rec[0] = t.IDs[i]
			k = 1
		}
		for j, col := range t.Cols {
			rec[k+j] = formatCell(col[i])
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadCSV loads a table written by WriteCSV. A column named ColCustID is read
// as the identifier; every other column must be numeric or empty.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// DecodeCSV parses a header row followed by data rows. Empty cells become NaN.
func DecodeCSV(in io.Reader) (*Table, error) {
	r := csv.NewReader(in)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty csv: no header")
	}

	header := rows[0]
	body := rows[1:]
	t := &Table{}
	idCol := -1
	for j, name := range header {
		if name == ColCustID {
			idCol = j
			t.IDName = name
			t.IDs = make([]string, len(body))
			continue
		}
		t.Names = append(t.Names, name)
		t.Cols = append(t.Cols, make([]float64, len(body)))
	}

	for i, row := range body {
		k := 0
		for j, cell := range row {
			if j == idCol {
				t.IDs[i] = cell
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+2, header[j], err)
			}
			t.Cols[k][i] = v
			k++
		}
	}
	return t, nil
}

func parseCell(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
