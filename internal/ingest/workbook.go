package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheet is the first worksheet of a data file: a header index plus data rows.
type sheet struct {
	path    string
	columns map[string]int
	rows    [][]string
}

// resolveSource finds name under dir. When the exact file is missing it tries
// a .csv with the same stem, then any export that starts with the stem (the
// exports are often suffixed with a timestamp).
func resolveSource(dir, name string) (string, bool) {
	exact := filepath.Join(dir, name)
	if fileExists(exact) {
		return exact, true
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	csvPath := filepath.Join(dir, stem+".csv")
	if fileExists(csvPath) {
		return csvPath, true
	}
	for _, ext := range []string{".xlsx", ".csv"} {
		matches, err := filepath.Glob(filepath.Join(dir, globEscape(stem)+"*"+ext))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0], true
	}
	return "", false
}

func readSheet(path string) (*sheet, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(path)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported data file %s", filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &sheet{path: path, columns: map[string]int{}}, nil
	}

	columns := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	return &sheet{path: path, columns: columns, rows: records[1:]}, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var out [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", filepath.Base(path), err)
		}
		out = append(out, rec)
	}
	if len(out) > 0 && len(out[0]) > 0 {
		out[0][0] = strings.TrimPrefix(out[0][0], "\ufeff")
	}
	return out, nil
}

// value returns the cell under column for row, or "" when the column is
// unmapped, absent from the header, or the row is short.
func (s *sheet) value(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx, ok := s.columns[normalizeHeader(column)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (s *sheet) has(column string) bool {
	_, ok := s.columns[normalizeHeader(column)]
	return ok
}

func normalizeHeader(h string) string {
	parts := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(h)), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	})
	return strings.Join(parts, "_")
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func globEscape(s string) string {
	r := strings.NewReplacer("[", "\\[", "]", "\\]", "*", "\\*", "?", "\\?")
	return r.Replace(s)
}
