package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/dnchinmayee/Text-retriving/internal/metrics"
)

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    documents INTEGER NOT NULL,
    scored INTEGER NOT NULL,
    failed INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS document_metrics (
    run_id TEXT NOT NULL,
    row_index INTEGER NOT NULL,
    document_id TEXT NOT NULL,
    status TEXT NOT NULL,
    error TEXT,
    positive_score INTEGER,
    negative_score INTEGER,
    polarity_score REAL,
    average_sentence_length REAL,
    percentage_of_complex_words REAL,
    fog_index REAL,
    complex_word_count INTEGER,
    word_count INTEGER,
    uncertainty_score INTEGER,
    constraining_score INTEGER,
    positive_word_proportion REAL,
    negative_word_proportion REAL,
    uncertainty_word_proportion REAL,
    constraining_word_proportion REAL,
    constraining_words_whole_report INTEGER,
    PRIMARY KEY (run_id, row_index)
);
`

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

var metricColumns = append([]string{"run_id", "row_index", "document_id", "status", "error"}, metrics.Columns...)

// insertMetricSQL renders the document_metrics insert with the placeholder
// style of the target driver: "?" for sqlite, "$n" for postgres.
func insertMetricSQL(numbered bool, suffix string) string {
	marks := make([]string, len(metricColumns))
	for i := range marks {
		if numbered {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = "?"
		}
	}
	q := fmt.Sprintf("INSERT INTO document_metrics(%s) VALUES(%s)",
		strings.Join(metricColumns, ", "), strings.Join(marks, ", "))
	if suffix != "" {
		q += " " + suffix
	}
	return q
}
