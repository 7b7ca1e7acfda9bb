package search

import (
	"sort"

	"github.com/lexatlas/lexatlas/pkg/common"
)

// DefaultRRFK is the reciprocal-rank-fusion constant used when the caller
// does not override it.
const DefaultRRFK = 60

// Branch is one ranked retrieval result list entering fusion, identified
// by the tag reported back in FoundBy.
type Branch struct {
	Tag  string
	Docs []common.Document
}

// FuseRRF merges ranked branches with reciprocal rank fusion: a document
// at 0-based rank r in a branch contributes 1/(rrfK+r+1) to its fused
// score. A document ranked equally in two branches therefore strictly
// outscores one found by a single branch. Returns the top kFinal fused
// results ordered by descending score, ties broken by ascending document
// id.
func FuseRRF(branches []Branch, rrfK, kFinal int) []common.FusedResult {
	if kFinal <= 0 {
		return []common.FusedResult{}
	}
	if rrfK <= 0 {
		rrfK = DefaultRRFK
	}

	fused := make(map[int64]*common.FusedResult)
	for _, branch := range branches {
		seen := make(map[int64]struct{}, len(branch.Docs))
		for rank, doc := range branch.Docs {
			if _, dup := seen[doc.ID]; dup {
				continue
			}
			seen[doc.ID] = struct{}{}

			entry, ok := fused[doc.ID]
			if !ok {
				entry = &common.FusedResult{Document: doc}
				fused[doc.ID] = entry
			} else if entry.Document.Text == "" && doc.Text != "" {
				// Branches may carry records of different completeness;
				// keep the richer one.
				entry.Document = doc
			}
			entry.RRFScore += 1.0 / float64(rrfK+rank+1)
			entry.FoundBy = appendTag(entry.FoundBy, branch.Tag)
		}
	}

	results := make([]common.FusedResult, 0, len(fused))
	for _, entry := range fused {
		sort.Strings(entry.FoundBy)
		results = append(results, *entry)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].RRFScore != results[j].RRFScore {
			return results[i].RRFScore > results[j].RRFScore
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	if len(results) > kFinal {
		results = results[:kFinal]
	}
	return results
}

func appendTag(tags []string, tag string) []string {
	for _, existing := range tags {
		if existing == tag {
			return tags
		}
	}
	return append(tags, tag)
}
