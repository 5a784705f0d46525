package prevalence

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const idColumn = "id"

// #region load
// Load reads a submission file from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open submission: %w", err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses a submission in the "id,0,1,...,n-1" format. name is only used in
// error messages.
func Read(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Path: name, Line: 1, Msg: "missing header, expected \"id,0,...,n-1\""}
	}
	if err != nil {
		return nil, csvError(name, err)
	}
	classes, err := parseHeader(header)
	if err != nil {
		line, _ := cr.FieldPos(0)
		return nil, &ParseError{Path: name, Line: line, Msg: err.Error()}
	}

	table := NewTable(classes)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(name, err)
		}
		line, _ := cr.FieldPos(0)

		if len(record) != classes+1 {
			return nil, &ParseError{Path: name, Line: line,
				Msg: fmt.Sprintf("expected %d columns, found %d", classes+1, len(record))}
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, &ParseError{Path: name, Line: line, Msg: fmt.Sprintf("invalid sample id %q", record[0])}
		}
		vec := make(Vector, classes)
		for c := 0; c < classes; c++ {
			raw := strings.TrimSpace(record[c+1])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ParseError{Path: name, Line: line,
					Msg: fmt.Sprintf("non-numeric value %q for class %d", raw, c)}
			}
			vec[c] = v
		}
		if err := table.Add(id, vec); err != nil {
			return nil, &ParseError{Path: name, Line: line, Msg: "invalid row", Err: err}
		}
	}
	return table, nil
}

// parseHeader checks "id,0,1,...,n-1" and returns n.
func parseHeader(header []string) (int, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if len(header) < 3 || strings.TrimSpace(header[0]) != idColumn {
		return 0, fmt.Errorf("wrong header %q, expected \"id,0,...,n-1\" with n >= 2 categories", strings.Join(header, ","))
	}
	for i, col := range header[1:] {
		c, err := strconv.Atoi(strings.TrimSpace(col))
		if err != nil || c != i {
			return 0, fmt.Errorf("wrong header: category ids must be 0,1,...,n-1, found %q at column %d", col, i+1)
		}
	}
	return len(header) - 1, nil
}

func csvError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Path: name, Line: pe.Line, Msg: "malformed csv", Err: pe.Err}
	}
	return &ParseError{Path: name, Msg: "read failed", Err: err}
}

// #endregion load

// #region dump
// Dump writes the table to path, creating the parent directory when needed.
func Dump(t *Table, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	if err := Write(t, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close submission: %w", err)
	}
	return nil
}

// Write serializes the table with a header and one row per sample in ascending
// id order. Values use the shortest representation that parses back exactly.
func Write(t *Table, w io.Writer) error {
	cw := csv.NewWriter(w)

	n := t.Classes()
	record := make([]string, n+1)
	record[0] = idColumn
	for c := 0; c < n; c++ {
		record[c+1] = strconv.Itoa(c)
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, id := range t.IDs() {
		vec, _ := t.Get(id)
		record[0] = strconv.Itoa(id)
		for c, v := range vec {
			record[c+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write sample %d: %w", id, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush submission: %w", err)
	}
	return nil
}

// #endregion dump
