package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dnchinmayee/Text-retriving/internal/runner"
)

const (
	statusScored       = "scored"
	statusFailed       = "failed"
	statusNotProcessed = "not_processed"
)

// SQLiteStore appends each run to a local SQLite database.
type SQLiteStore struct {
	Path string
}

func (s SQLiteStore) Name() string { return "sqlite" }

func (s SQLiteStore) Save(ctx context.Context, summary *runner.Summary) error {
	conn, err := Open(s.Path)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	run := runRow(summary)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs(run_id, started_at, finished_at, documents, scored, failed) VALUES(?,?,?,?,?,?)`,
		run...,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertMetricSQL(false, ""))
	if err != nil {
		return fmt.Errorf("prepare metrics insert: %w", err)
	}
	defer stmt.Close()
	for _, row := range metricRows(summary) {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert document metrics: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func CountRows(dbPath, table string) (int, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return countRowsConn(conn, table)
}

func countRowsConn(conn *sql.DB, table string) (int, error) {
	row := conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}

func runRow(s *runner.Summary) []any {
	scored, failed, _ := s.Counts()
	return []any{
		s.RunID,
		s.StartedAt.UTC().Format(time.RFC3339Nano),
		s.FinishedAt.UTC().Format(time.RFC3339Nano),
		len(s.Inputs),
		scored,
		failed,
	}
}

// metricRows yields one row per input in input order. Unscored documents
// keep NULL metrics.
func metricRows(s *runner.Summary) [][]any {
	byIndex := make(map[int]int, len(s.Outcomes))
	for i, o := range s.Outcomes {
		byIndex[o.Index] = i
	}

	rows := make([][]any, 0, len(s.Inputs))
	for i, in := range s.Inputs {
		row := make([]any, 0, len(metricColumns))
		row = append(row, s.RunID, in.Index, in.ID)

		pos, ok := byIndex[i]
		switch {
		case !ok:
			row = append(row, statusNotProcessed, nil)
			row = appendNulls(row)
		case s.Outcomes[pos].Failed():
			row = append(row, statusFailed, s.Outcomes[pos].Reason())
			row = appendNulls(row)
		default:
			rec := s.Outcomes[pos].Record
			row = append(row, statusScored, nil,
				rec.PositiveScore,
				rec.NegativeScore,
				rec.PolarityScore,
				rec.AverageSentenceLength,
				rec.PercentageOfComplexWords,
				rec.FogIndex,
				rec.ComplexWordCount,
				rec.WordCount,
				rec.UncertaintyScore,
				rec.ConstrainingScore,
				rec.PositiveWordProportion,
				rec.NegativeWordProportion,
				rec.UncertaintyWordProportion,
				rec.ConstrainingWordProportion,
				rec.ConstrainingWordsWholeReport,
			)
		}
		rows = append(rows, row)
	}
	return rows
}

func appendNulls(row []any) []any {
	for len(row) < len(metricColumns) {
		row = append(row, nil)
	}
	return row
}
