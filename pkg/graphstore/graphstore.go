package graphstore

import (
	"context"

	"github.com/lexatlas/lexatlas/pkg/common"
)

// ConceptMatch is a concept node matched by a term search, with a
// relevance score from the text ranking.
type ConceptMatch struct {
	NodeKey string
	Score   float64
}

// Path is an ordered node-key walk through the graph.
type Path struct {
	NodeKeys []string `json:"nodes"`
}

// Store persists and queries the knowledge graph.
type Store interface {
	// ReplaceGraph atomically swaps the stored graph for the given nodes
	// and edges. Readers never observe a half-loaded graph.
	ReplaceGraph(ctx context.Context, nodes []common.Node, edges []common.Edge) error

	// SearchConcepts matches normalized query terms against concept node
	// keys and returns matches ordered by descending score.
	SearchConcepts(ctx context.Context, terms []string, limit int) ([]ConceptMatch, error)

	// ParagraphsForConcepts returns, per concept key, the document ids of
	// paragraphs linked to it through concept membership edges.
	ParagraphsForConcepts(ctx context.Context, conceptKeys []string) (map[string][]int64, error)

	// OutgoingEdges returns the edges leaving a node.
	OutgoingEdges(ctx context.Context, nodeKey string) ([]common.Edge, error)

	// IncomingEdges returns the edges arriving at a node.
	IncomingEdges(ctx context.Context, nodeKey string) ([]common.Edge, error)

	// SimplePaths returns loop-free paths between two nodes up to maxDepth
	// hops, capped at maxPaths results.
	SimplePaths(ctx context.Context, sourceKey, targetKey string, maxDepth, maxPaths int) ([]Path, error)

	// NodeCount and EdgeCount report graph size for diagnostics.
	NodeCount(ctx context.Context) (int64, error)
	EdgeCount(ctx context.Context) (int64, error)
}
