package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lexatlas/lexatlas/pkg/common"
	"github.com/lexatlas/lexatlas/pkg/graphstore"
	"github.com/lexatlas/lexatlas/pkg/logger"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStore implements graphstore.Store on PostgreSQL.
type GraphDBStore struct {
	conn pgxIConn
}

// NewGraphDBStore creates a graph store using an existing connection or pool.
func NewGraphDBStore(conn pgxIConn) *GraphDBStore {
	return &GraphDBStore{conn: conn}
}

// ReplaceGraph clears and reloads both graph tables in one transaction.
func (s *GraphDBStore) ReplaceGraph(ctx context.Context, nodes []common.Node, edges []common.Edge) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace graph: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgxv5.ErrTxClosed) {
			logger.Error("[GraphStore] Failed to rollback replace transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM graph_edges`); err != nil {
		return fmt.Errorf("replace graph: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM graph_nodes`); err != nil {
		return fmt.Errorf("replace graph: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgxv5.Identifier{"graph_nodes"},
		[]string{"node_key", "label", "properties"},
		pgxv5.CopyFromSlice(len(nodes), func(row int) ([]any, error) {
			node := nodes[row]
			props, err := encodeProperties(node.Properties)
			if err != nil {
				return nil, err
			}
			return []any{node.Key, string(node.Label), props}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("replace graph: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgxv5.Identifier{"graph_edges"},
		[]string{"source_key", "target_key", "relation_label", "category", "document_id", "properties"},
		pgxv5.CopyFromSlice(len(edges), func(row int) ([]any, error) {
			edge := edges[row]
			props, err := encodeProperties(edge.Properties)
			if err != nil {
				return nil, err
			}
			var documentID any
			if edge.DocumentID != 0 {
				documentID = edge.DocumentID
			}
			return []any{
				edge.SourceKey, edge.TargetKey, edge.RelationLabel,
				string(edge.Category), documentID, props,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("replace graph: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("replace graph: %w", err)
	}
	return nil
}

// SearchConcepts matches terms against concept node keys with full-text
// search. Terms are combined disjunctively so any one of them can match.
func (s *GraphDBStore) SearchConcepts(ctx context.Context, terms []string, limit int) ([]graphstore.ConceptMatch, error) {
	if len(terms) == 0 || limit <= 0 {
		return []graphstore.ConceptMatch{}, nil
	}

	query := strings.Join(terms, " | ")
	rows, err := s.conn.Query(ctx,
		`SELECT node_key,
		        ts_rank(to_tsvector('simple', replace(node_key, '_', ' ')),
		                to_tsquery('simple', $1)) AS score
		 FROM graph_nodes
		 WHERE label = $2
		   AND to_tsvector('simple', replace(node_key, '_', ' ')) @@ to_tsquery('simple', $1)
		 ORDER BY score DESC, node_key ASC
		 LIMIT $3`,
		query, string(common.LabelConcept), limit)
	if err != nil {
		return nil, fmt.Errorf("search concepts: %w", err)
	}
	defer rows.Close()

	matches := make([]graphstore.ConceptMatch, 0, limit)
	for rows.Next() {
		var m graphstore.ConceptMatch
		if err := rows.Scan(&m.NodeKey, &m.Score); err != nil {
			return nil, fmt.Errorf("search concepts: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search concepts: %w", err)
	}
	return matches, nil
}

// ParagraphsForConcepts resolves concept keys to the document ids of the
// paragraphs attached to them.
func (s *GraphDBStore) ParagraphsForConcepts(ctx context.Context, conceptKeys []string) (map[string][]int64, error) {
	result := make(map[string][]int64, len(conceptKeys))
	if len(conceptKeys) == 0 {
		return result, nil
	}

	rows, err := s.conn.Query(ctx,
		`SELECT target_key, document_id FROM graph_edges
		 WHERE relation_label = $1 AND target_key = ANY($2) AND document_id IS NOT NULL
		 ORDER BY target_key, document_id`,
		common.RelationHasConcept, conceptKeys)
	if err != nil {
		return nil, fmt.Errorf("paragraphs for concepts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			conceptKey string
			documentID int64
		)
		if err := rows.Scan(&conceptKey, &documentID); err != nil {
			return nil, fmt.Errorf("paragraphs for concepts: %w", err)
		}
		result[conceptKey] = append(result[conceptKey], documentID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("paragraphs for concepts: %w", err)
	}
	return result, nil
}

// OutgoingEdges returns the edges leaving a node.
func (s *GraphDBStore) OutgoingEdges(ctx context.Context, nodeKey string) ([]common.Edge, error) {
	return s.queryEdges(ctx, `source_key = $1`, nodeKey)
}

// IncomingEdges returns the edges arriving at a node.
func (s *GraphDBStore) IncomingEdges(ctx context.Context, nodeKey string) ([]common.Edge, error) {
	return s.queryEdges(ctx, `target_key = $1`, nodeKey)
}

// SimplePaths walks the graph breadth-first and collects loop-free paths
// from source to target, bounded by depth and result count.
func (s *GraphDBStore) SimplePaths(ctx context.Context, sourceKey, targetKey string, maxDepth, maxPaths int) ([]graphstore.Path, error) {
	if maxDepth <= 0 || maxPaths <= 0 {
		return []graphstore.Path{}, nil
	}

	paths := make([]graphstore.Path, 0, maxPaths)
	frontier := [][]string{{sourceKey}}
	for depth := 0; depth < maxDepth && len(frontier) > 0 && len(paths) < maxPaths; depth++ {
		next := make([][]string, 0)
		for _, path := range frontier {
			edges, err := s.OutgoingEdges(ctx, path[len(path)-1])
			if err != nil {
				return nil, err
			}
			for _, edge := range edges {
				if containsKey(path, edge.TargetKey) {
					continue
				}
				extended := append(append(make([]string, 0, len(path)+1), path...), edge.TargetKey)
				if edge.TargetKey == targetKey {
					paths = append(paths, graphstore.Path{NodeKeys: extended})
					if len(paths) >= maxPaths {
						return paths, nil
					}
					continue
				}
				next = append(next, extended)
			}
		}
		frontier = next
	}
	return paths, nil
}

// NodeCount reports the number of stored nodes.
func (s *GraphDBStore) NodeCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM graph_nodes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("node count: %w", err)
	}
	return count, nil
}

// EdgeCount reports the number of stored edges.
func (s *GraphDBStore) EdgeCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM graph_edges`).Scan(&count); err != nil {
		return 0, fmt.Errorf("edge count: %w", err)
	}
	return count, nil
}

func (s *GraphDBStore) queryEdges(ctx context.Context, where string, arg any) ([]common.Edge, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT source_key, target_key, relation_label, category, COALESCE(document_id, 0), properties
		 FROM graph_edges WHERE `+where+` ORDER BY id`, arg)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges := make([]common.Edge, 0)
	for rows.Next() {
		var (
			edge     common.Edge
			category string
			rawProps []byte
		)
		if err := rows.Scan(&edge.SourceKey, &edge.TargetKey, &edge.RelationLabel,
			&category, &edge.DocumentID, &rawProps); err != nil {
			return nil, fmt.Errorf("query edges: %w", err)
		}
		edge.Category = common.EdgeCategory(category)
		if len(rawProps) > 0 {
			if err := json.Unmarshal(rawProps, &edge.Properties); err != nil {
				logger.Warn("[GraphStore] Malformed edge properties, using empty map",
					"source", edge.SourceKey, "target", edge.TargetKey)
				edge.Properties = nil
			}
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	return edges, nil
}

func encodeProperties(props map[string]string) ([]byte, error) {
	if len(props) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(props)
}

func containsKey(path []string, key string) bool {
	for _, existing := range path {
		if existing == key {
			return true
		}
	}
	return false
}
