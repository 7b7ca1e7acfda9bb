package vector

import (
	"context"
	"errors"
)

// ErrIndexMissing signals that no vectors have been indexed yet, so
// similarity search cannot run until a rebuild completes.
var ErrIndexMissing = errors.New("vector index is empty")

// Neighbor is a single nearest-neighbor hit. LocalIndex is the position
// the entry was assigned at rebuild time, Distance is L2 and ascending.
type Neighbor struct {
	LocalIndex int
	Distance   float64
}

// Entry is one vector to index during a rebuild. LocalIndex values must be
// dense and start at zero; DocumentID is the document the vector encodes.
type Entry struct {
	LocalIndex int
	DocumentID int64
	Embedding  []float32
}

// Index is a similarity index over document embeddings. Lookups map local
// index positions back to document ids, mirroring how a flat in-memory
// index pairs a vector store with a sidecar id list.
type Index interface {
	// NearestNeighbors returns up to k hits ordered by ascending distance.
	// Returns ErrIndexMissing when nothing has been indexed.
	NearestNeighbors(ctx context.Context, embedding []float32, k int) ([]Neighbor, error)

	// ResolveLocal maps a local index position to its document id.
	ResolveLocal(ctx context.Context, localIndex int) (int64, bool, error)

	// ResolveLocalBatch maps many positions at once, preserving order.
	// Positions with no mapping are reported as false.
	ResolveLocalBatch(ctx context.Context, localIndexes []int) ([]int64, []bool, error)

	// Rebuild atomically replaces the index contents with the given
	// entries. Readers never observe a partially replaced index.
	Rebuild(ctx context.Context, entries []Entry) error
}
