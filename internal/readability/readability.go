// Package readability implements the complex-word heuristic and the Gunning
// fog index used in the metrics record.
package readability

import (
	"errors"
	"strings"
)

var (
	ErrNoWords     = errors.New("document has no words")
	ErrNoSentences = errors.New("document has no sentences")
)

// IsComplex approximates "three or more syllables": a token is complex when,
// lower-cased, it does not end in "es" or "ed" and holds more than two of
// the vowels a, e, i, o, u.
func IsComplex(token string) bool {
	word := strings.ToLower(token)
	if strings.HasSuffix(word, "es") || strings.HasSuffix(word, "ed") {
		return false
	}
	vowels := 0
	for i := 0; i < len(word); i++ {
		switch word[i] {
		case 'a', 'e', 'i', 'o', 'u':
			vowels++
		}
	}
	return vowels > 2
}

func ComplexWordCount(tokens []string) int {
	count := 0
	for _, t := range tokens {
		if IsComplex(t) {
			count++
		}
	}
	return count
}

func AverageSentenceLength(words, sentences int) (float64, error) {
	if sentences == 0 {
		return 0, ErrNoSentences
	}
	return float64(words) / float64(sentences), nil
}

// PercentComplexWords returns complexWords / words * 100, in that order of
// operations.
func PercentComplexWords(complexWords, words int) (float64, error) {
	if words == 0 {
		return 0, ErrNoWords
	}
	return float64(complexWords) / float64(words) * 100, nil
}

func FogIndex(averageSentenceLength, percentComplexWords float64) float64 {
	return 0.4 * (averageSentenceLength + percentComplexWords)
}
