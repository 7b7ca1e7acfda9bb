package search

import (
	"context"
	"sort"
	"strings"

	"github.com/lexatlas/lexatlas/pkg/ai"
	"github.com/lexatlas/lexatlas/pkg/common"
	"github.com/lexatlas/lexatlas/pkg/docstore"
	"github.com/lexatlas/lexatlas/pkg/logger"
	"github.com/lexatlas/lexatlas/pkg/vector"
)

// RerankConfig tunes the semantic rerank pass. The fallback thresholds
// score a single-candidate (or all-equal-distance) batch where min-max
// scaling degenerates; they are tuning defaults, not derived constants.
type RerankConfig struct {
	// Alpha weighs the semantic score against the concept-overlap score.
	Alpha float64
	// KRetrieval is the vector-search breadth before reranking.
	KRetrieval int
	// KFinal is the number of reranked results to return.
	KFinal int
	// SingleLow and SingleHigh are the raw-distance thresholds of the
	// degenerate-batch fallback. Below low scores 0.95, above high 0.1,
	// in between 0.5.
	SingleLow  float64
	SingleHigh float64
	// SubsumeMatched drops matched concepts that are strict sub-phrases
	// of a longer matched concept before overlap counting. Off by default.
	SubsumeMatched bool
}

// DefaultRerankConfig mirrors the serving defaults.
func DefaultRerankConfig() RerankConfig {
	return RerankConfig{
		Alpha:      0.3,
		KRetrieval: 100,
		KFinal:     5,
		SingleLow:  0.35,
		SingleHigh: 1.2,
	}
}

// Reranker runs the semantic branch: vector retrieval followed by a
// concept-overlap rerank against each candidate's document concepts.
type Reranker struct {
	encoder ai.Encoder
	index   vector.Index
	docs    docstore.Store
}

// NewReranker creates a reranker over the given encoder, index, and store.
func NewReranker(encoder ai.Encoder, index vector.Index, docs docstore.Store) *Reranker {
	return &Reranker{encoder: encoder, index: index, docs: docs}
}

// Search encodes the query, retrieves cfg.KRetrieval nearest neighbors,
// and reranks them by alpha-blended semantic and concept-overlap scores.
// Candidates with no index mapping or missing metadata are logged and
// skipped rather than failing the request.
func (r *Reranker) Search(ctx context.Context, query string, cfg RerankConfig) ([]common.SemanticResult, error) {
	if cfg.KFinal <= 0 {
		return []common.SemanticResult{}, nil
	}

	embedding, err := r.encoder.Encode(ctx, query)
	if err != nil {
		return nil, err
	}
	neighbors, err := r.index.NearestNeighbors(ctx, embedding, cfg.KRetrieval)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return []common.SemanticResult{}, nil
	}

	localIndexes := make([]int, len(neighbors))
	for i, neighbor := range neighbors {
		localIndexes[i] = neighbor.LocalIndex
	}
	documentIDs, found, err := r.index.ResolveLocalBatch(ctx, localIndexes)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		doc      common.Document
		distance float64
	}
	candidates := make([]candidate, 0, len(neighbors))
	for i, neighbor := range neighbors {
		if !found[i] {
			logger.Warn("[Rerank] No document mapping for index entry, skipping",
				"local_index", neighbor.LocalIndex)
			continue
		}
		doc, ok, err := r.docs.GetDocument(ctx, documentIDs[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("[Rerank] Indexed document missing from store, skipping",
				"document_id", documentIDs[i])
			continue
		}
		candidates = append(candidates, candidate{doc: doc, distance: neighbor.Distance})
	}
	if len(candidates) == 0 {
		return []common.SemanticResult{}, nil
	}

	distances := make([]float64, len(candidates))
	for i, cand := range candidates {
		distances[i] = cand.distance
	}
	semantic := normalizeDistances(distances, cfg)

	terms := NormalizeTerms(query)
	results := make([]common.SemanticResult, len(candidates))
	for i, cand := range candidates {
		matched := matchConcepts(cand.doc.Concepts, terms)
		if cfg.SubsumeMatched {
			matched = dropSubsumed(matched)
		}
		overlap := float64(len(matched)) / float64(max(len(cand.doc.Concepts), 1))
		results[i] = common.SemanticResult{
			Document:        cand.doc,
			SemanticScore:   semantic[i],
			OverlapScore:    overlap,
			FinalScore:      cfg.Alpha*semantic[i] + (1-cfg.Alpha)*overlap,
			MatchedConcepts: matched,
		}
	}

	// Ties keep retrieval order, so equal scores stay in ascending
	// distance order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	if len(results) > cfg.KFinal {
		results = results[:cfg.KFinal]
	}
	return results, nil
}

// normalizeDistances min-max scales distances into semantic scores in
// [0,1]. A degenerate batch (single candidate or all distances equal)
// falls back to threshold scoring on the raw distance.
func normalizeDistances(distances []float64, cfg RerankConfig) []float64 {
	minDist, maxDist := distances[0], distances[0]
	for _, d := range distances[1:] {
		if d < minDist {
			minDist = d
		}
		if d > maxDist {
			maxDist = d
		}
	}

	scores := make([]float64, len(distances))
	if maxDist == minDist {
		fallback := 0.5
		switch {
		case minDist < cfg.SingleLow:
			fallback = 0.95
		case minDist > cfg.SingleHigh:
			fallback = 0.1
		}
		for i := range scores {
			scores[i] = fallback
		}
		return scores
	}

	for i, d := range distances {
		scores[i] = 1 - (d-minDist)/(maxDist-minDist)
	}
	return scores
}

// matchConcepts returns the document concepts that contain any query term
// as a case-insensitive substring, preserving concept order.
func matchConcepts(concepts, terms []string) []string {
	if len(terms) == 0 {
		return []string{}
	}
	matched := make([]string, 0, len(concepts))
	for _, concept := range concepts {
		folded := FoldDiacritics(strings.ToLower(concept))
		for _, term := range terms {
			if strings.Contains(folded, term) {
				matched = append(matched, concept)
				break
			}
		}
	}
	return matched
}

// dropSubsumed removes matched concepts that appear as strict sub-phrases
// of a longer matched concept.
func dropSubsumed(matched []string) []string {
	kept := make([]string, 0, len(matched))
	for i, candidate := range matched {
		lower := strings.ToLower(candidate)
		subsumed := false
		for j, other := range matched {
			if i == j {
				continue
			}
			otherLower := strings.ToLower(other)
			if len(otherLower) > len(lower) && strings.Contains(otherLower, lower) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, candidate)
		}
	}
	return kept
}
