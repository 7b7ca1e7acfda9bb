package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvec "github.com/pgvector/pgvector-go"

	"github.com/lexatlas/lexatlas/pkg/logger"
	"github.com/lexatlas/lexatlas/pkg/vector"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// VectorDBIndex implements vector.Index on PostgreSQL with pgvector.
type VectorDBIndex struct {
	conn pgxIConn
}

// NewVectorDBIndex creates an index backed by the document_vectors table.
func NewVectorDBIndex(conn pgxIConn) *VectorDBIndex {
	return &VectorDBIndex{conn: conn}
}

// NearestNeighbors runs an exact L2 scan and returns the k closest entries.
func (i *VectorDBIndex) NearestNeighbors(ctx context.Context, embedding []float32, k int) ([]vector.Neighbor, error) {
	if k <= 0 {
		return []vector.Neighbor{}, nil
	}

	rows, err := i.conn.Query(ctx,
		`SELECT local_index, embedding <-> $1 AS distance
		 FROM document_vectors
		 ORDER BY distance ASC, local_index ASC
		 LIMIT $2`,
		pgvec.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbors: %w", err)
	}
	defer rows.Close()

	neighbors := make([]vector.Neighbor, 0, k)
	for rows.Next() {
		var n vector.Neighbor
		if err := rows.Scan(&n.LocalIndex, &n.Distance); err != nil {
			return nil, fmt.Errorf("nearest neighbors: %w", err)
		}
		neighbors = append(neighbors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("nearest neighbors: %w", err)
	}
	if len(neighbors) == 0 {
		empty, err := i.isEmpty(ctx)
		if err != nil {
			return nil, err
		}
		if empty {
			return nil, vector.ErrIndexMissing
		}
	}
	return neighbors, nil
}

// ResolveLocal maps one local index position to its document id.
func (i *VectorDBIndex) ResolveLocal(ctx context.Context, localIndex int) (int64, bool, error) {
	var documentID int64
	err := i.conn.QueryRow(ctx,
		`SELECT document_id FROM document_vectors WHERE local_index = $1`,
		localIndex,
	).Scan(&documentID)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve local index: %w", err)
	}
	return documentID, true, nil
}

// ResolveLocalBatch maps many positions in one query, preserving input order.
func (i *VectorDBIndex) ResolveLocalBatch(ctx context.Context, localIndexes []int) ([]int64, []bool, error) {
	ids := make([]int64, len(localIndexes))
	found := make([]bool, len(localIndexes))
	if len(localIndexes) == 0 {
		return ids, found, nil
	}

	indexes := make([]int32, len(localIndexes))
	for idx, local := range localIndexes {
		indexes[idx] = int32(local)
	}
	rows, err := i.conn.Query(ctx,
		`SELECT local_index, document_id FROM document_vectors
		 WHERE local_index = ANY($1)`, indexes)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve local indexes: %w", err)
	}
	defer rows.Close()

	byLocal := make(map[int]int64, len(localIndexes))
	for rows.Next() {
		var (
			local      int
			documentID int64
		)
		if err := rows.Scan(&local, &documentID); err != nil {
			return nil, nil, fmt.Errorf("resolve local indexes: %w", err)
		}
		byLocal[local] = documentID
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("resolve local indexes: %w", err)
	}

	for idx, local := range localIndexes {
		if documentID, ok := byLocal[local]; ok {
			ids[idx] = documentID
			found[idx] = true
		}
	}
	return ids, found, nil
}

// Rebuild replaces the index contents in a single transaction.
func (i *VectorDBIndex) Rebuild(ctx context.Context, entries []vector.Entry) error {
	tx, err := i.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("rebuild vector index: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgxv5.ErrTxClosed) {
			logger.Error("[VectorIndex] Failed to rollback rebuild transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM document_vectors`); err != nil {
		return fmt.Errorf("rebuild vector index: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgxv5.Identifier{"document_vectors"},
		[]string{"local_index", "document_id", "embedding"},
		pgxv5.CopyFromSlice(len(entries), func(row int) ([]any, error) {
			entry := entries[row]
			return []any{entry.LocalIndex, entry.DocumentID, pgvec.NewVector(entry.Embedding)}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("rebuild vector index: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("rebuild vector index: %w", err)
	}
	return nil
}

func (i *VectorDBIndex) isEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := i.conn.QueryRow(ctx, `SELECT COUNT(*) FROM document_vectors`).Scan(&count); err != nil {
		return false, fmt.Errorf("vector index size: %w", err)
	}
	return count == 0, nil
}
