package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/dnchinmayee/Text-retriving/internal/lexicon"
	"github.com/dnchinmayee/Text-retriving/internal/pipeline"
	"github.com/dnchinmayee/Text-retriving/internal/readability"
	"github.com/dnchinmayee/Text-retriving/internal/tokenize"
)

// PolarityEpsilon keeps the polarity score defined when a document has no
// positive and no negative hits.
const PolarityEpsilon = 0.000001

var ErrDegenerateDocument = errors.New("degenerate document")

// DocumentError isolates a failure to the document it happened on.
type DocumentError struct {
	ID  string
	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s: %v", e.ID, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func degenerate(id string, cause error) error {
	return &DocumentError{ID: id, Err: fmt.Errorf("%w: %w", ErrDegenerateDocument, cause)}
}

func Polarity(positive, negative int) float64 {
	return float64(positive-negative) / (float64(positive+negative) + PolarityEpsilon)
}

func Proportion(score, words int) (float64, error) {
	if words == 0 {
		return 0, readability.ErrNoWords
	}
	return float64(score) / float64(words), nil
}

// Engine scores documents against a frozen set of lexicons. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	lex lexicon.Set
}

func NewEngine(set lexicon.Set) (*Engine, error) {
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return &Engine{lex: set}, nil
}

// Score computes the metrics record for one document. Documents without
// words or without sentences fail with ErrDegenerateDocument.
func (e *Engine) Score(doc Document) (Record, error) {
	tokens := tokenize.Words(doc.Text)
	sentences := tokenize.CountSentences(doc.Text)
	words := len(tokens)

	positive := e.lex.Positive.Score(tokens)
	negative := e.lex.Negative.Score(tokens)
	uncertainty := e.lex.Uncertainty.Score(tokens)
	constraining := e.lex.Constraining.Score(tokens)
	complexWords := readability.ComplexWordCount(tokens)

	avgSentence, err := readability.AverageSentenceLength(words, sentences)
	if err != nil {
		return Record{}, degenerate(doc.ID, err)
	}
	pctComplex, err := readability.PercentComplexWords(complexWords, words)
	if err != nil {
		return Record{}, degenerate(doc.ID, err)
	}

	proportions := make([]float64, 0, 4)
	for _, score := range []int{positive, negative, uncertainty, constraining} {
		p, err := Proportion(score, words)
		if err != nil {
			return Record{}, degenerate(doc.ID, err)
		}
		proportions = append(proportions, p)
	}

	return Record{
		PositiveScore:                positive,
		NegativeScore:                negative,
		PolarityScore:                Polarity(positive, negative),
		AverageSentenceLength:        avgSentence,
		PercentageOfComplexWords:     pctComplex,
		FogIndex:                     readability.FogIndex(avgSentence, pctComplex),
		ComplexWordCount:             complexWords,
		WordCount:                    words,
		UncertaintyScore:             uncertainty,
		ConstrainingScore:            constraining,
		PositiveWordProportion:       proportions[0],
		NegativeWordProportion:       proportions[1],
		UncertaintyWordProportion:    proportions[2],
		ConstrainingWordProportion:   proportions[3],
		ConstrainingWordsWholeReport: constraining,
	}, nil
}

// ScoreBatch scores docs on a pool of workers. Outcomes are in input order;
// a failed document carries its error and does not stop the batch. On
// cancellation the outcomes of already processed documents are returned
// with the context error.
func (e *Engine) ScoreBatch(ctx context.Context, docs []Document, workers int) ([]Outcome, error) {
	results, err := pipeline.Ordered(ctx, docs, workers, func(_ context.Context, doc Document) (Record, error) {
		return e.Score(doc)
	})
	outcomes := make([]Outcome, 0, len(results))
	for _, r := range results {
		o := Outcome{Index: r.Index, ID: docs[r.Index].ID, Err: r.Err}
		if r.Err == nil {
			rec := r.Value
			o.Record = &rec
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, err
}
