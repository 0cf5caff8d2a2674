package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/dnchinmayee/Text-retriving/internal/logger"
	"github.com/dnchinmayee/Text-retriving/internal/metrics"
	"github.com/dnchinmayee/Text-retriving/internal/runner"
)

// Document is the indexed form of one scored filing.
type Document struct {
	RunID      string            `json:"run_id"`
	RowIndex   int               `json:"row_index"`
	DocumentID string            `json:"document_id"`
	Source     map[string]string `json:"source,omitempty"`
	ScoredAt   time.Time         `json:"scored_at"`
	metrics.Record
}

// Indexer writes scored records to Elasticsearch, one document per record.
type Indexer struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

func New(addr, index string, log *slog.Logger) (*Indexer, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &Indexer{es: es, index: index, log: logger.OrDiscard(log)}, nil
}

func (i *Indexer) Name() string { return "elasticsearch" }

func (i *Indexer) Save(ctx context.Context, summary *runner.Summary) error {
	docs := Documents(summary)
	for _, doc := range docs {
		if err := i.put(ctx, doc); err != nil {
			return err
		}
	}
	i.log.Info("indexed records", "index", i.index, "count", len(docs))
	return nil
}

func (i *Indexer) put(ctx context.Context, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: DocumentID(doc.RunID, doc.RowIndex),
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, i.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

func DocumentID(runID string, row int) string {
	return fmt.Sprintf("%s-%d", runID, row)
}

// Documents builds the indexed form of every scored outcome. Failed
// documents are not indexed.
func Documents(summary *runner.Summary) []Document {
	docs := make([]Document, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		if o.Failed() {
			continue
		}
		in := summary.Inputs[o.Index]
		docs = append(docs, Document{
			RunID:      summary.RunID,
			RowIndex:   in.Index,
			DocumentID: o.ID,
			Source:     sourceFields(summary, in.Index),
			ScoredAt:   summary.FinishedAt,
			Record:     *o.Record,
		})
	}
	return docs
}

func sourceFields(summary *runner.Summary, row int) map[string]string {
	if summary.Table == nil || row >= len(summary.Table.Rows) {
		return nil
	}
	fields := make(map[string]string, len(summary.Table.Header))
	for i, h := range summary.Table.Header {
		if i < len(summary.Table.Rows[row]) {
			fields[h] = summary.Table.Rows[row][i]
		}
	}
	return fields
}
