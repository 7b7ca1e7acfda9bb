package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Romanian function words that carry no retrieval signal. The set only
// needs to cover the query side; document concepts are already curated
// phrases produced upstream.
var defaultStopwords = map[string]struct{}{
	"si": {}, "sau": {}, "de": {}, "din": {}, "la": {}, "in": {}, "pe": {},
	"cu": {}, "ce": {}, "care": {}, "cand": {}, "cum": {}, "unde": {},
	"este": {}, "sunt": {}, "fi": {}, "a": {}, "al": {}, "ale": {}, "ai": {},
	"un": {}, "o": {}, "unei": {}, "unui": {}, "cel": {}, "cea": {},
	"pentru": {}, "prin": {}, "dupa": {}, "fara": {}, "mai": {}, "nu": {},
	"se": {}, "sa": {}, "pot": {}, "poate": {}, "daca": {},
	"asupra": {}, "intre": {}, "catre": {}, "despre": {},
}

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldDiacritics strips combining marks so "circulație" and "circulatie"
// normalize to the same term.
func FoldDiacritics(value string) string {
	folded, _, err := transform.String(foldTransformer, value)
	if err != nil {
		return value
	}
	return folded
}

// NormalizeTerms reduces a free-text query to its content terms:
// lowercased, diacritics folded, punctuation stripped, stopwords and
// fragments shorter than two runes dropped. Order of first occurrence is
// preserved and duplicates are removed. An empty or all-stopword query
// yields an empty set.
func NormalizeTerms(query string) []string {
	folded := FoldDiacritics(strings.ToLower(query))

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	terms := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if len([]rune(field)) < 2 {
			continue
		}
		if _, stop := defaultStopwords[field]; stop {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		terms = append(terms, field)
	}
	return terms
}
