package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dnchinmayee/Text-retriving/internal/ingest"
	"github.com/dnchinmayee/Text-retriving/internal/logger"
	"github.com/dnchinmayee/Text-retriving/internal/metrics"
	"github.com/dnchinmayee/Text-retriving/internal/pipeline"
	"github.com/dnchinmayee/Text-retriving/internal/source"
	"github.com/dnchinmayee/Text-retriving/internal/telemetry"
)

// Loader turns an input into document text.
type Loader interface {
	Load(ctx context.Context, in source.Input) (string, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*ingest.Parsed, error)
}

type documentLoader struct {
	fetcher Fetcher
}

// NewLoader reads local inputs from disk and remote ones through fetcher.
// fetcher may be nil when every input is local.
func NewLoader(fetcher Fetcher) Loader {
	return documentLoader{fetcher: fetcher}
}

func (l documentLoader) Load(ctx context.Context, in source.Input) (string, error) {
	if in.Local {
		parsed, err := ingest.ParseFile(in.Location)
		if err != nil {
			return "", err
		}
		return parsed.Text, nil
	}
	if l.fetcher == nil {
		return "", fmt.Errorf("no fetcher configured for %s", in.Location)
	}
	parsed, err := l.fetcher.Fetch(ctx, in.Location)
	if err != nil {
		return "", err
	}
	return parsed.Text, nil
}

// Summary is the result of one batch run. Outcomes follow Inputs order;
// after a cancellation they cover only the documents that were processed.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Table      *source.Table
	Inputs     []source.Input
	Outcomes   []metrics.Outcome
}

// ByRow indexes outcomes by their row in the input table.
func (s *Summary) ByRow() map[int]metrics.Outcome {
	rows := make(map[int]metrics.Outcome, len(s.Outcomes))
	for _, o := range s.Outcomes {
		rows[s.Inputs[o.Index].Index] = o
	}
	return rows
}

func (s *Summary) Counts() (scored, failed, unprocessed int) {
	for _, o := range s.Outcomes {
		if o.Failed() {
			failed++
		} else {
			scored++
		}
	}
	return scored, failed, len(s.Inputs) - len(s.Outcomes)
}

type Runner struct {
	engine  *metrics.Engine
	loader  Loader
	log     *slog.Logger
	metrics *telemetry.Metrics
}

func New(engine *metrics.Engine, loader Loader, log *slog.Logger, m *telemetry.Metrics) *Runner {
	return &Runner{engine: engine, loader: loader, log: logger.OrDiscard(log), metrics: m}
}

// Run loads and scores every input on a pool of workers. A document that
// fails to load or is degenerate gets a failed outcome; the batch goes on.
func (r *Runner) Run(ctx context.Context, table *source.Table, inputs []source.Input, workers int) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Table:     table,
		Inputs:    inputs,
	}
	log := r.log.With("run_id", summary.RunID)
	log.Info("run started", "documents", len(inputs), "workers", workers)

	results, err := pipeline.Ordered(ctx, inputs, workers, r.process)
	summary.Outcomes = make([]metrics.Outcome, 0, len(results))
	for _, res := range results {
		in := inputs[res.Index]
		o := metrics.Outcome{Index: res.Index, ID: in.ID, Err: res.Err}
		if res.Err == nil {
			rec := res.Value
			o.Record = &rec
			r.metrics.Document(telemetry.StatusScored)
		} else if errors.Is(res.Err, metrics.ErrDegenerateDocument) {
			r.metrics.Document(telemetry.StatusDegenerate)
			log.Warn("document not scored", "id", in.ID, "err", res.Err)
		} else {
			r.metrics.Document(telemetry.StatusFailed)
			log.Warn("document failed", "id", in.ID, "err", res.Err)
		}
		summary.Outcomes = append(summary.Outcomes, o)
	}
	summary.FinishedAt = time.Now().UTC()

	scored, failed, unprocessed := summary.Counts()
	log.Info("run finished", "scored", scored, "failed", failed, "unprocessed", unprocessed,
		"elapsed", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	if err != nil {
		return summary, fmt.Errorf("run %s: %w", summary.RunID, err)
	}
	return summary, nil
}

func (r *Runner) process(ctx context.Context, in source.Input) (metrics.Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "score_document",
		attribute.String("document.id", in.ID),
		attribute.Int("document.index", in.Index),
	)
	defer span.End()

	text, err := r.loader.Load(ctx, in)
	if err != nil {
		err = &metrics.DocumentError{ID: in.ID, Err: fmt.Errorf("load: %w", err)}
		telemetry.RecordError(span, err)
		return metrics.Record{}, err
	}

	started := time.Now()
	rec, err := r.engine.Score(metrics.Document{ID: in.ID, Text: text})
	r.metrics.Scored(time.Since(started))
	if err != nil {
		telemetry.RecordError(span, err)
		return metrics.Record{}, err
	}
	span.SetAttributes(attribute.Int("document.words", rec.WordCount))
	return rec, nil
}

// Sink persists a finished run.
type Sink interface {
	Name() string
	Save(ctx context.Context, s *Summary) error
}

// SaveAll writes the summary to every sink, continuing past failures.
func SaveAll(ctx context.Context, s *Summary, sinks ...Sink) error {
	var errs []error
	for _, sink := range sinks {
		if err := sink.Save(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
