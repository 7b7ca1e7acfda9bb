package graph

import (
	"context"
	"sort"

	"github.com/lexatlas/lexatlas/pkg/common"
	"github.com/lexatlas/lexatlas/pkg/docstore"
	"github.com/lexatlas/lexatlas/pkg/graphstore"
	"github.com/lexatlas/lexatlas/pkg/logger"
	"github.com/lexatlas/lexatlas/pkg/search"
)

// conceptLimit caps how many concept nodes one query may fan out to.
const conceptLimit = 50

// Searcher answers queries through the concept graph: query terms match
// concept nodes, concept membership edges lead back to paragraphs, and
// per-paragraph scores aggregate across all matched concepts.
type Searcher struct {
	graphStore graphstore.Store
	docs       docstore.Store
}

// NewSearcher creates a graph searcher over the given stores.
func NewSearcher(graphStore graphstore.Store, docs docstore.Store) *Searcher {
	return &Searcher{graphStore: graphStore, docs: docs}
}

// Search returns up to k paragraphs ranked by aggregated concept match
// score. A query with no content terms returns an empty result, not an
// error.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]common.GraphResult, error) {
	terms := search.NormalizeTerms(query)
	if len(terms) == 0 || k <= 0 {
		return []common.GraphResult{}, nil
	}

	matches, err := s.graphStore.SearchConcepts(ctx, terms, conceptLimit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []common.GraphResult{}, nil
	}

	conceptKeys := make([]string, len(matches))
	scoreByKey := make(map[string]float64, len(matches))
	for i, match := range matches {
		conceptKeys[i] = match.NodeKey
		scoreByKey[match.NodeKey] = match.Score
	}

	paragraphs, err := s.graphStore.ParagraphsForConcepts(ctx, conceptKeys)
	if err != nil {
		return nil, err
	}

	scores := make(map[int64]float64)
	for conceptKey, documentIDs := range paragraphs {
		for _, documentID := range documentIDs {
			scores[documentID] += scoreByKey[conceptKey]
		}
	}
	if len(scores) == 0 {
		return []common.GraphResult{}, nil
	}

	ranked := make([]common.GraphResult, 0, len(scores))
	for documentID, score := range scores {
		ranked = append(ranked, common.GraphResult{
			Document: common.Document{ID: documentID},
			Score:    score,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Document.ID < ranked[j].Document.ID
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	results := make([]common.GraphResult, 0, len(ranked))
	for _, candidate := range ranked {
		doc, found, err := s.docs.GetMetadata(ctx, candidate.Document.ID)
		if err != nil {
			return nil, err
		}
		if !found {
			logger.Warn("[GraphSearch] Paragraph points at a missing document, skipping",
				"document_id", candidate.Document.ID)
			continue
		}
		candidate.Document = doc
		results = append(results, candidate)
	}
	return results, nil
}
