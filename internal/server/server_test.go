package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dnchinmayee/Text-retriving/internal/lexicon"
	"github.com/dnchinmayee/Text-retriving/internal/metrics"
	"github.com/dnchinmayee/Text-retriving/internal/telemetry"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	engine, err := metrics.NewEngine(lexicon.Set{
		Positive:     lexicon.New(lexicon.Positive, []string{"good"}),
		Negative:     lexicon.New(lexicon.Negative, []string{"bad"}),
		Uncertainty:  lexicon.New(lexicon.Uncertainty, []string{"may"}),
		Constraining: lexicon.New(lexicon.Constraining, []string{"must"}),
	})
	require.NoError(t, err)
	return New(engine, telemetry.NewMetrics(), nil, 2).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndColumns(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/columns", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, metrics.Columns, body["columns"])
}

func TestScore(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/metrics", `{"id":"doc","text":"This is good, good, and not bad."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp scoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "doc", resp.ID)
	require.Equal(t, 2, resp.Record.PositiveScore)
	require.Equal(t, 7, resp.Record.WordCount)
	require.Empty(t, resp.Error)
}

func TestScoreRejectsBadInput(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/metrics", `{"id":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/metrics", `{"id":"x","body":"text"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/metrics", `{"id":"empty","text":"   "}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "degenerate document")
}

func TestBatch(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/metrics/batch",
		`{"documents":[{"id":"a","text":"Good."},{"id":"b","text":""},{"id":"c","text":"Bad. Bad."}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []scoreResponse `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 3)
	require.Equal(t, "a", body.Results[0].ID)
	require.Equal(t, 1, body.Results[0].Record.PositiveScore)
	require.Nil(t, body.Results[1].Record)
	require.NotEmpty(t, body.Results[1].Error)
	require.Equal(t, 2, body.Results[2].Record.NegativeScore)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodPost, "/v1/metrics", `{"id":"doc","text":"Good."}`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `filingmetrics_documents_total{status="scored"} 1`)
}
