package lexicon

import (
	"errors"
	"fmt"
	"strings"
)

type Category string

const (
	Positive     Category = "positive"
	Negative     Category = "negative"
	Uncertainty  Category = "uncertainty"
	Constraining Category = "constraining"
)

var ErrMissingLexicon = errors.New("lexicon missing")

// Lexicon is an immutable set of upper-cased words tagged with a category.
type Lexicon struct {
	category Category
	words    map[string]struct{}
}

func New(category Category, words []string) *Lexicon {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = normalize(w)
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return &Lexicon{category: category, words: set}
}

func (l *Lexicon) Category() Category {
	if l == nil {
		return ""
	}
	return l.category
}

func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}

func (l *Lexicon) Contains(word string) bool {
	if l == nil {
		return false
	}
	_, ok := l.words[strings.ToUpper(word)]
	return ok
}

// Score counts the tokens, with repetition, that belong to the lexicon.
func (l *Lexicon) Score(tokens []string) int {
	if l == nil {
		return 0
	}
	score := 0
	for _, t := range tokens {
		if l.Contains(t) {
			score++
		}
	}
	return score
}

// Set holds the four lexicons a batch is scored against.
type Set struct {
	Positive     *Lexicon
	Negative     *Lexicon
	Uncertainty  *Lexicon
	Constraining *Lexicon
}

func (s Set) Validate() error {
	for _, entry := range []struct {
		category Category
		lex      *Lexicon
	}{
		{Positive, s.Positive},
		{Negative, s.Negative},
		{Uncertainty, s.Uncertainty},
		{Constraining, s.Constraining},
	} {
		if entry.lex == nil {
			return fmt.Errorf("%s: %w", entry.category, ErrMissingLexicon)
		}
	}
	return nil
}

func normalize(word string) string {
	return strings.ToUpper(strings.TrimSpace(word))
}
