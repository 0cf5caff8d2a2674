package search

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dnchinmayee/Text-retriving/internal/metrics"
	"github.com/dnchinmayee/Text-retriving/internal/runner"
	"github.com/dnchinmayee/Text-retriving/internal/source"
)

func testSummary() *runner.Summary {
	return &runner.Summary{
		RunID: "run-7",
		Table: &source.Table{
			Header: []string{"CIK", "SECFNAME"},
			Rows:   [][]string{{"1", "a.txt"}, {"2", "b.txt"}},
		},
		Inputs: []source.Input{{Index: 0, ID: "a.txt"}, {Index: 1, ID: "b.txt"}},
		Outcomes: []metrics.Outcome{
			{Index: 0, ID: "a.txt", Record: &metrics.Record{WordCount: 12, FogIndex: 9.5}},
			{Index: 1, ID: "b.txt", Err: errors.New("degenerate document")},
		},
	}
}

func TestDocumentsSkipsFailures(t *testing.T) {
	docs := Documents(testSummary())
	require.Len(t, docs, 1)
	require.Equal(t, "a.txt", docs[0].DocumentID)
	require.Equal(t, "1", docs[0].Source["CIK"])

	raw, err := json.Marshal(docs[0])
	require.NoError(t, err)
	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	require.Equal(t, 9.5, flat["fog_index"])
	require.Equal(t, "run-7", flat["run_id"])
}

func TestIndexerSave(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	var bodies [][]byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		bodies = append(bodies, body)
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	defer srv.Close()

	idx, err := New(srv.URL, "filing-metrics", nil)
	require.NoError(t, err)
	require.Equal(t, "elasticsearch", idx.Name())
	require.NoError(t, idx.Save(t.Context(), testSummary()))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"PUT /filing-metrics/_doc/run-7-0"}, paths)
	require.Contains(t, string(bodies[0]), `"word_count":12`)
}

func TestIndexerSaveReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"mapper_parsing_exception"}`))
	}))
	defer srv.Close()

	idx, err := New(srv.URL, "filing-metrics", nil)
	require.NoError(t, err)
	err = idx.Save(t.Context(), testSummary())
	require.ErrorContains(t, err, "mapper_parsing_exception")
}
