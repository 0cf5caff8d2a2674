package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dnchinmayee/Text-retriving/internal/runner"
)

const PostgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    documents INTEGER NOT NULL,
    scored INTEGER NOT NULL,
    failed INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS document_metrics (
    run_id TEXT NOT NULL REFERENCES runs(run_id),
    row_index INTEGER NOT NULL,
    document_id TEXT NOT NULL,
    status TEXT NOT NULL,
    error TEXT,
    positive_score INTEGER,
    negative_score INTEGER,
    polarity_score DOUBLE PRECISION,
    average_sentence_length DOUBLE PRECISION,
    percentage_of_complex_words DOUBLE PRECISION,
    fog_index DOUBLE PRECISION,
    complex_word_count INTEGER,
    word_count INTEGER,
    uncertainty_score INTEGER,
    constraining_score INTEGER,
    positive_word_proportion DOUBLE PRECISION,
    negative_word_proportion DOUBLE PRECISION,
    uncertainty_word_proportion DOUBLE PRECISION,
    constraining_word_proportion DOUBLE PRECISION,
    constraining_words_whole_report INTEGER,
    PRIMARY KEY (run_id, row_index)
);
`

// PostgresStore writes runs to a shared Postgres database. Re-saving a run
// is a no-op.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, PostgresSchemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Save(ctx context.Context, summary *runner.Summary) error {
	batch := postgresBatch(summary)
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert run batch: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func postgresBatch(summary *runner.Summary) *pgx.Batch {
	scored, failed, _ := summary.Counts()
	batch := &pgx.Batch{}
	batch.Queue(
		`INSERT INTO runs(run_id, started_at, finished_at, documents, scored, failed) VALUES($1,$2,$3,$4,$5,$6) ON CONFLICT (run_id) DO NOTHING`,
		summary.RunID, summary.StartedAt, summary.FinishedAt, len(summary.Inputs), scored, failed,
	)
	insert := insertMetricSQL(true, "ON CONFLICT (run_id, row_index) DO NOTHING")
	for _, row := range metricRows(summary) {
		batch.Queue(insert, row...)
	}
	return batch
}
