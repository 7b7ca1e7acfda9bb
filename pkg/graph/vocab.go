package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Vocabulary drives relation category inference and predicate
// normalization during graph construction. The defaults cover the
// Romanian legal corpus; a JSON file can override them per deployment.
type Vocabulary struct {
	ModalMarkers []string `json:"modal_markers"`
	Prepositions []string `json:"prepositions"`
}

// DefaultVocabulary returns the built-in Romanian vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		ModalMarkers: []string{"poate", "trebuie", "este permis", "nu este permis", "obligat", "interzis"},
		Prepositions: []string{"în", "la", "cu", "pentru", "prin", "de", "pe", "asupra", "sub"},
	}
}

// LoadVocabulary reads a vocabulary override from a JSON file. Empty
// lists fall back to the defaults so a partial file stays usable.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("load vocabulary: %w", err)
	}

	var vocab Vocabulary
	if err := json.Unmarshal(data, &vocab); err != nil {
		return Vocabulary{}, fmt.Errorf("load vocabulary: %w", err)
	}

	defaults := DefaultVocabulary()
	if len(vocab.ModalMarkers) == 0 {
		vocab.ModalMarkers = defaults.ModalMarkers
	}
	if len(vocab.Prepositions) == 0 {
		vocab.Prepositions = defaults.Prepositions
	}
	return vocab, nil
}

// NormalizeModal maps a modal predicate to an obligation class. Negated
// predicates flip obligation and permission to prohibition.
func NormalizeModal(predicate string) string {
	predicate = strings.ToLower(strings.TrimSpace(predicate))
	negated := strings.Contains(predicate, "nu ")

	switch {
	case hasAnyPrefix(predicate, "trebuie", "este obligat", "se impune", "obligat"):
		if negated {
			return "prohibition"
		}
		return "obligation"
	case hasAnyPrefix(predicate, "nu poate", "nu este permis", "nu are voie"):
		return "prohibition"
	case hasAnyPrefix(predicate, "poate", "este permis", "are voie"):
		if negated {
			return "prohibition"
		}
		return "permission"
	case hasAnyPrefix(predicate, "interzis"):
		return "prohibition"
	}
	return "unspecified"
}

// NormalizePreposition maps a preposition to its sense bucket.
func NormalizePreposition(predicate string) string {
	switch strings.ToLower(strings.TrimSpace(predicate)) {
	case "în", "la", "pe", "din", "sub", "asupra":
		return "location"
	case "pentru":
		return "purpose"
	case "cu", "fără", "prin", "de":
		return "manner"
	case "dacă", "în caz de", "în condițiile":
		return "condition"
	}
	return "unspecified"
}

func hasAnyPrefix(value string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
