package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const PathColumn = "path"

var ErrNoInputs = errors.New("no inputs")

// Table is the input table as read, kept verbatim so result rows can be
// re-attached to it positionally.
type Table struct {
	Header []string
	Rows   [][]string
}

// Input is one document to score. Location is a URL, or a file path when
// Local is set.
type Input struct {
	Index    int
	ID       string
	Location string
	Local    bool
}

func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input table: %w", err)
	}
	defer f.Close()
	return readTable(f)
}

func readTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read input table: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read input table: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read input table: %w", err)
	}
	return &Table{Header: header, Rows: rows}, nil
}

func (t *Table) Column(name string) (int, error) {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("input table has no %q column", name)
}

// Inputs builds one Input per row by joining baseURL and the row's idColumn
// value.
func (t *Table) Inputs(idColumn, baseURL string) ([]Input, error) {
	col, err := t.Column(idColumn)
	if err != nil {
		return nil, err
	}
	inputs := make([]Input, 0, len(t.Rows))
	for i, row := range t.Rows {
		id := ""
		if col < len(row) {
			id = strings.TrimSpace(row[col])
		}
		inputs = append(inputs, Input{Index: i, ID: id, Location: baseURL + id})
	}
	return inputs, nil
}

// Glob matches local files with a doublestar pattern. The returned table has
// a single path column so local runs produce the same output shape.
func Glob(pattern string) (*Table, []Input, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, ErrNoInputs)
	}
	sort.Strings(matches)

	table := &Table{Header: []string{PathColumn}, Rows: make([][]string, 0, len(matches))}
	inputs := make([]Input, 0, len(matches))
	for i, m := range matches {
		table.Rows = append(table.Rows, []string{m})
		inputs = append(inputs, Input{Index: i, ID: m, Location: m, Local: true})
	}
	return table, inputs, nil
}

// Limit keeps the first n inputs; n <= 0 keeps all.
func Limit(inputs []Input, n int) []Input {
	if n <= 0 || n >= len(inputs) {
		return inputs
	}
	return inputs[:n]
}
