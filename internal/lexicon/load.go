package lexicon

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RowError reports a malformed lexicon source row. Lexicon failures are fatal:
// a batch never runs against a partially loaded lexicon.
type RowError struct {
	Path   string
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Paths locates the lexicon sources on disk.
type Paths struct {
	MasterDictionary string
	Uncertainty      string
	Constraining     string
}

// LoadSet reads all four lexicons. Any error aborts the whole load.
func LoadSet(p Paths) (Set, error) {
	positive, negative, err := LoadMasterDictionary(p.MasterDictionary)
	if err != nil {
		return Set{}, err
	}
	uncertainty, err := LoadWordList(p.Uncertainty, Uncertainty)
	if err != nil {
		return Set{}, err
	}
	constraining, err := LoadWordList(p.Constraining, Constraining)
	if err != nil {
		return Set{}, err
	}
	set := Set{
		Positive:     positive,
		Negative:     negative,
		Uncertainty:  uncertainty,
		Constraining: constraining,
	}
	return set, set.Validate()
}

// LoadMasterDictionary reads a Loughran-McDonald style master dictionary.
// A word belongs to the positive (negative) lexicon when its Positive
// (Negative) column is non-zero.
func LoadMasterDictionary(path string) (*Lexicon, *Lexicon, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}
	wordCol, err := column(path, header, "Word")
	if err != nil {
		return nil, nil, err
	}
	posCol, err := column(path, header, "Positive")
	if err != nil {
		return nil, nil, err
	}
	negCol, err := column(path, header, "Negative")
	if err != nil {
		return nil, nil, err
	}

	var positive, negative []string
	for i, row := range rows {
		line := i + 2
		word := strings.TrimSpace(row[wordCol])
		if word == "" {
			return nil, nil, &RowError{Path: path, Line: line, Reason: "empty word"}
		}
		pos, err := flag(row[posCol])
		if err != nil {
			return nil, nil, &RowError{Path: path, Line: line, Reason: fmt.Sprintf("positive column: %v", err)}
		}
		neg, err := flag(row[negCol])
		if err != nil {
			return nil, nil, &RowError{Path: path, Line: line, Reason: fmt.Sprintf("negative column: %v", err)}
		}
		if pos {
			positive = append(positive, word)
		}
		if neg {
			negative = append(negative, word)
		}
	}
	return New(Positive, positive), New(Negative, negative), nil
}

// LoadWordList reads a single-category lexicon. CSV sources must carry a
// Word column; .txt sources hold one word per line.
func LoadWordList(path string, category Category) (*Lexicon, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return loadLines(path, category)
	}

	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	wordCol, err := column(path, header, "Word")
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(rows))
	for i, row := range rows {
		word := strings.TrimSpace(row[wordCol])
		if word == "" {
			return nil, &RowError{Path: path, Line: i + 2, Reason: "empty word"}
		}
		words = append(words, word)
	}
	return New(category, words), nil
}

func loadLines(path string, category Category) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return New(category, words), nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, &RowError{Path: path, Reason: "missing header row"}
	}
	if err != nil {
		return nil, nil, csvError(path, err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, csvError(path, err)
	}
	return header, rows, nil
}

func csvError(path string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &RowError{Path: path, Line: perr.Line, Reason: perr.Err.Error()}
	}
	return fmt.Errorf("read lexicon %s: %w", path, err)
}

func column(path string, header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
			return i, nil
		}
	}
	return -1, &RowError{Path: path, Line: 1, Reason: fmt.Sprintf("missing %q column", name)}
}

func flag(raw string) (bool, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
