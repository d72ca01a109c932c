package index

import (
	"strings"
	"unicode"
)

// defaultStopwords is a small English stopword list. Stopwords carry no
// lexical signal and would otherwise dominate document-frequency stats.
var defaultStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "can": {}, "do": {}, "does": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "how": {}, "i": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {},
	"why": {}, "will": {}, "with": {},
}

// Tokenizer normalizes text into index terms: lowercase, punctuation
// stripped, stopwords removed. No stemming is applied; a custom Transform
// can be plugged in where stemming is wanted.
type Tokenizer struct {
	stopwords map[string]struct{}

	// Transform is an optional per-token hook (e.g., a stemmer).
	// Returning an empty string drops the token.
	Transform func(token string) string
}

// NewTokenizer creates a tokenizer with the default stopword list.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{stopwords: defaultStopwords}
}

// NewTokenizerWithStopwords creates a tokenizer with a custom stopword list.
func NewTokenizerWithStopwords(stopwords []string) *Tokenizer {
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: set}
}

// Tokenize converts text to normalized tokens for indexing and scoring.
// Empty or all-stopword input yields an empty slice.
func (t *Tokenizer) Tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		token := current.String()
		current.Reset()
		if _, stop := t.stopwords[token]; stop {
			return
		}
		if t.Transform != nil {
			token = t.Transform(token)
			if token == "" {
				return
			}
		}
		tokens = append(tokens, token)
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// TermFrequency counts occurrences of each term in tokens.
func TermFrequency(tokens []string) map[string]int {
	freqs := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freqs[token]++
	}
	return freqs
}
