package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dnchinmayee/Text-retriving/internal/ingest"
	"github.com/dnchinmayee/Text-retriving/internal/lexicon"
	"github.com/dnchinmayee/Text-retriving/internal/metrics"
	"github.com/dnchinmayee/Text-retriving/internal/source"
	"github.com/dnchinmayee/Text-retriving/internal/telemetry"
)

type mapLoader map[string]string

func (m mapLoader) Load(_ context.Context, in source.Input) (string, error) {
	text, ok := m[in.ID]
	if !ok {
		return "", errors.New("not found")
	}
	return text, nil
}

type fakeFetcher struct{ text string }

func (f fakeFetcher) Fetch(_ context.Context, url string) (*ingest.Parsed, error) {
	return &ingest.Parsed{SourcePath: url, Text: f.text}, nil
}

type recordingSink struct {
	name  string
	err   error
	saved int
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Save(context.Context, *Summary) error {
	s.saved++
	return s.err
}

func testEngine(t *testing.T) *metrics.Engine {
	t.Helper()
	engine, err := metrics.NewEngine(lexicon.Set{
		Positive:     lexicon.New(lexicon.Positive, []string{"growth"}),
		Negative:     lexicon.New(lexicon.Negative, []string{"loss"}),
		Uncertainty:  lexicon.New(lexicon.Uncertainty, []string{"may"}),
		Constraining: lexicon.New(lexicon.Constraining, []string{"must"}),
	})
	require.NoError(t, err)
	return engine
}

func testInputs(ids ...string) (*source.Table, []source.Input) {
	table := &source.Table{Header: []string{"SECFNAME"}}
	inputs := make([]source.Input, 0, len(ids))
	for i, id := range ids {
		table.Rows = append(table.Rows, []string{id})
		inputs = append(inputs, source.Input{Index: i, ID: id, Location: "https://example.test/" + id})
	}
	return table, inputs
}

func TestRunKeepsOrderAndIsolatesFailures(t *testing.T) {
	loader := mapLoader{
		"a.txt": "Strong growth this year.",
		"b.txt": "2021. 2022.",
		"d.txt": "A loss may occur. We must act.",
	}
	table, inputs := testInputs("a.txt", "b.txt", "c.txt", "d.txt")
	m := telemetry.NewMetrics()

	summary, err := New(testEngine(t), loader, nil, m).Run(context.Background(), table, inputs, 2)
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)
	require.False(t, summary.FinishedAt.Before(summary.StartedAt))
	require.Len(t, summary.Outcomes, 4)

	require.Equal(t, 1, summary.Outcomes[0].Record.PositiveScore)
	require.ErrorIs(t, summary.Outcomes[1].Err, metrics.ErrDegenerateDocument)

	var docErr *metrics.DocumentError
	require.True(t, errors.As(summary.Outcomes[2].Err, &docErr))
	require.Equal(t, "c.txt", docErr.ID)
	require.ErrorContains(t, summary.Outcomes[2].Err, "load: not found")

	rec := summary.Outcomes[3].Record
	require.Equal(t, 1, rec.NegativeScore)
	require.Equal(t, 1, rec.UncertaintyScore)
	require.Equal(t, 1, rec.ConstrainingScore)

	scored, failed, unprocessed := summary.Counts()
	require.Equal(t, 2, scored)
	require.Equal(t, 2, failed)
	require.Zero(t, unprocessed)

	rows := summary.ByRow()
	require.Equal(t, "d.txt", rows[3].ID)
}

func TestRunCanceled(t *testing.T) {
	table, inputs := testInputs("a.txt", "b.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := New(testEngine(t), mapLoader{}, nil, nil).Run(ctx, table, inputs, 1)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	_, _, unprocessed := summary.Counts()
	require.Equal(t, len(inputs)-len(summary.Outcomes), unprocessed)
}

func TestLoaderDispatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filing.htm")
	require.NoError(t, os.WriteFile(path, []byte("<p>Local text.</p>"), 0o644))

	loader := NewLoader(fakeFetcher{text: "Remote text."})
	text, err := loader.Load(context.Background(), source.Input{ID: path, Location: path, Local: true})
	require.NoError(t, err)
	require.Equal(t, "Local text.", text)

	text, err = loader.Load(context.Background(), source.Input{ID: "x", Location: "https://example.test/x"})
	require.NoError(t, err)
	require.Equal(t, "Remote text.", text)

	_, err = NewLoader(nil).Load(context.Background(), source.Input{ID: "x", Location: "https://example.test/x"})
	require.ErrorContains(t, err, "no fetcher")
}

func TestSaveAllJoinsErrors(t *testing.T) {
	ok := &recordingSink{name: "csv"}
	bad := &recordingSink{name: "sqlite", err: errors.New("disk full")}
	also := &recordingSink{name: "report"}

	err := SaveAll(context.Background(), &Summary{}, ok, bad, also)
	require.ErrorContains(t, err, "sqlite sink: disk full")
	require.Equal(t, 1, ok.saved)
	require.Equal(t, 1, also.saved)

	require.NoError(t, SaveAll(context.Background(), &Summary{}, ok))
}
