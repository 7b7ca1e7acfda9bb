package docstore

import (
	"encoding/json"
	"strings"

	"github.com/lexatlas/lexatlas/pkg/common"
)

// The annotation columns are JSON payloads written by the upstream pipeline.
// Historic rows mix shapes (bare string lists, triple arrays, keyed objects),
// so decoding is lenient: a payload that cannot be interpreted at all yields
// an empty value and ok=false, never an error that would abort a batch.

// DecodeConcepts parses a stored concept list payload.
func DecodeConcepts(raw []byte) ([]string, bool) {
	if len(raw) == 0 {
		return nil, true
	}

	var concepts []string
	if err := json.Unmarshal(raw, &concepts); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(concepts))
	for _, c := range concepts {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		out = append(out, c)
	}
	return out, true
}

// DecodeEntities parses a stored entity payload. Accepts both the current
// {text, type} object form and the older bare-string form.
func DecodeEntities(raw []byte) ([]common.Entity, bool) {
	if len(raw) == 0 {
		return nil, true
	}

	var entities []common.Entity
	if err := json.Unmarshal(raw, &entities); err == nil {
		out := entities[:0]
		for _, e := range entities {
			if strings.TrimSpace(e.Text) == "" {
				continue
			}
			out = append(out, e)
		}
		return out, true
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, false
	}
	out := make([]common.Entity, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		out = append(out, common.Entity{Text: n})
	}
	return out, true
}

// DecodeTriples parses a stored relation-triple payload. Accepts keyed
// objects ({subject, predicate, object}, with "verb"/"prep" as historic
// predicate aliases) and bare three-element arrays. Entries with another
// shape are skipped individually.
func DecodeTriples(raw []byte) ([]common.Triple, bool) {
	if len(raw) == 0 {
		return nil, true
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}

	out := make([]common.Triple, 0, len(entries))
	for _, entry := range entries {
		if triple, ok := decodeTriple(entry); ok {
			out = append(out, triple)
		}
	}
	return out, true
}

func decodeTriple(raw json.RawMessage) (common.Triple, bool) {
	var keyed struct {
		Subject   string `json:"subject"`
		Predicate string `json:"predicate"`
		Verb      string `json:"verb"`
		Prep      string `json:"prep"`
		Object    string `json:"object"`
	}
	if err := json.Unmarshal(raw, &keyed); err == nil {
		predicate := keyed.Predicate
		if predicate == "" {
			predicate = keyed.Verb
		}
		if predicate == "" {
			predicate = keyed.Prep
		}
		if keyed.Subject != "" || keyed.Object != "" {
			return common.Triple{
				Subject:   keyed.Subject,
				Predicate: predicate,
				Object:    keyed.Object,
			}, predicate != ""
		}
	}

	var parts []string
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) != 3 {
		return common.Triple{}, false
	}
	if strings.TrimSpace(parts[1]) == "" {
		return common.Triple{}, false
	}
	return common.Triple{Subject: parts[0], Predicate: parts[1], Object: parts[2]}, true
}
