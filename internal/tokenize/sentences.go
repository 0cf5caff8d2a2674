package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type abbrevKind int

const (
	notAbbrev abbrevKind = iota
	// titles and initials usually precede a capitalised name
	nameAbbrev
	plainAbbrev
)

var abbreviations = map[string]abbrevKind{
	"mr": nameAbbrev, "mrs": nameAbbrev, "ms": nameAbbrev, "dr": nameAbbrev,
	"prof": nameAbbrev, "sr": nameAbbrev, "jr": nameAbbrev, "st": nameAbbrev,
	"inc": plainAbbrev, "corp": plainAbbrev, "co": plainAbbrev, "ltd": plainAbbrev,
	"llc": plainAbbrev, "plc": plainAbbrev, "bros": plainAbbrev, "no": plainAbbrev,
	"nos": plainAbbrev, "vs": plainAbbrev, "etc": plainAbbrev, "approx": plainAbbrev,
	"dept": plainAbbrev, "est": plainAbbrev, "fig": plainAbbrev, "figs": plainAbbrev,
	"sec": plainAbbrev, "art": plainAbbrev, "para": plainAbbrev, "vol": plainAbbrev,
	"pp": plainAbbrev, "e.g": plainAbbrev, "i.e": plainAbbrev, "u.s": plainAbbrev,
	"u.k": plainAbbrev, "a.m": plainAbbrev, "p.m": plainAbbrev, "u.s.a": plainAbbrev,
	"jan": plainAbbrev, "feb": plainAbbrev, "mar": plainAbbrev, "apr": plainAbbrev,
	"jun": plainAbbrev, "jul": plainAbbrev, "aug": plainAbbrev, "sep": plainAbbrev,
	"sept": plainAbbrev, "oct": plainAbbrev, "nov": plainAbbrev, "dec": plainAbbrev,
}

// Words that commonly open a sentence. After a title or an initial only these
// start a new sentence; any other capitalised word is taken as part of a name.
var sentenceStarters = map[string]struct{}{
	"the": {}, "this": {}, "that": {}, "these": {}, "those": {}, "there": {},
	"then": {}, "thus": {}, "we": {}, "our": {}, "it": {}, "its": {}, "in": {},
	"on": {}, "at": {}, "as": {}, "for": {}, "if": {}, "however": {}, "a": {},
	"an": {}, "each": {}, "all": {}, "such": {}, "he": {}, "she": {}, "they": {},
	"their": {}, "his": {}, "her": {}, "you": {}, "but": {}, "and": {}, "or": {},
	"so": {}, "after": {}, "before": {}, "during": {}, "while": {}, "when": {},
	"since": {}, "although": {}, "under": {}, "with": {}, "from": {}, "no": {},
}

// Sentences splits the original, unmodified text into sentences. A sentence
// ends at a run of terminal punctuation, optionally followed by closing
// quotes or brackets, that is itself followed by whitespace or the end of the
// text. A lone period after an abbreviation or an initial, and an ellipsis,
// end a sentence only when the next word looks like the start of one.
func Sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		j := i
		for j < len(text) && isTerminator(text[j]) {
			j++
		}
		run := text[i:j]
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !isCloser(r) {
				break
			}
			j += size
		}
		if j < len(text) {
			r, _ := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				i = j - 1
				continue
			}
		}
		if !boundary(text[start:i], run, nextWord(text[j:])) {
			i = j - 1
			continue
		}
		if s := strings.TrimSpace(text[start:j]); s != "" {
			out = append(out, s)
		}
		start = j
		i = j - 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func CountSentences(text string) int {
	return len(Sentences(text))
}

// boundary decides whether the terminal run after prefix ends a sentence,
// given the word that follows it ("" at the end of the text).
func boundary(prefix, run, next string) bool {
	if next == "" || strings.ContainsAny(run, "!?") {
		return true
	}
	if len(run) > 1 {
		return startsUpper(next)
	}
	switch classify(lastWord(prefix)) {
	case nameAbbrev:
		_, ok := sentenceStarters[strings.ToLower(strings.TrimRightFunc(next, unicode.IsPunct))]
		return ok && startsUpper(next)
	case plainAbbrev:
		if !startsUpper(next) {
			return false
		}
		if word, ok := strings.CutSuffix(next, "."); ok && classify(word) != notAbbrev {
			return false
		}
		return true
	}
	return true
}

// classify reports what kind of abbreviation word is. All-caps words without
// internal periods, such as SEC or NO, are treated as ordinary words.
func classify(word string) abbrevKind {
	if word == "" {
		return notAbbrev
	}
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		if unicode.IsLetter(r) {
			return nameAbbrev
		}
		return notAbbrev
	}
	if !strings.Contains(word, ".") && strings.ToUpper(word) == word {
		return notAbbrev
	}
	return abbreviations[strings.ToLower(word)]
}

func lastWord(prefix string) string {
	begin := 0
	if k := strings.LastIndexFunc(prefix, unicode.IsSpace); k >= 0 {
		_, size := utf8.DecodeRuneInString(prefix[k:])
		begin = k + size
	}
	return strings.TrimLeft(prefix[begin:], "\"'([{‘“")
}

func nextWord(rest string) string {
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	rest = strings.TrimLeft(rest, "\"'([{‘“")
	if k := strings.IndexFunc(rest, unicode.IsSpace); k >= 0 {
		rest = rest[:k]
	}
	return rest
}

func startsUpper(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '’', '”':
		return true
	}
	return false
}
