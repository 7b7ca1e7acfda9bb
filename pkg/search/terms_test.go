package search

import (
	"reflect"
	"testing"
)

func TestNormalizeTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"stopwords only", "de la în pe", []string{}},
		{"content words kept", "limita de viteză în localitate", []string{"limita", "viteza", "localitate"}},
		{"diacritics folded", "circulația pietonilor", []string{"circulatia", "pietonilor"}},
		{"punctuation stripped", "alcool? sancțiuni!", []string{"alcool", "sanctiuni"}},
		{"short fragments dropped", "a b cd", []string{"cd"}},
		{"duplicates removed", "viteza viteza maxima", []string{"viteza", "maxima"}},
		{"case folded", "VITEZA Maximă", []string{"viteza", "maxima"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTerms(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTerms(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFoldDiacritics(t *testing.T) {
	if got := FoldDiacritics("înțelegere conformă"); got != "intelegere conforma" {
		t.Errorf("FoldDiacritics = %q", got)
	}
}
