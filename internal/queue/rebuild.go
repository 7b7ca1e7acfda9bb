package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lexatlas/lexatlas/internal/util"
	"github.com/lexatlas/lexatlas/pkg/ai"
	"github.com/lexatlas/lexatlas/pkg/docstore"
	"github.com/lexatlas/lexatlas/pkg/graph"
	"github.com/lexatlas/lexatlas/pkg/graphstore"
	"github.com/lexatlas/lexatlas/pkg/logger"
	"github.com/lexatlas/lexatlas/pkg/vector"
)

// RebuildMessage is the payload of a rebuild job on RebuildQueue.
type RebuildMessage struct {
	CorrelationID string `json:"correlation_id"`
}

const (
	embedBatchSize = 64
	storeMaxTries  = 3
)

// ProcessRebuild re-derives the vector index and the knowledge graph from
// the current document snapshot. Either artifact is replaced atomically,
// so live queries keep serving the previous snapshot while this runs.
func ProcessRebuild(
	ctx context.Context,
	encoder ai.Encoder,
	docs docstore.Store,
	index vector.Index,
	builder *graph.Builder,
	graphStore graphstore.Store,
	msgBody string,
) error {
	var msg RebuildMessage
	if err := json.Unmarshal([]byte(msgBody), &msg); err != nil {
		return fmt.Errorf("unmarshal rebuild message: %w", err)
	}

	logger.Info("[Rebuild] Starting full rebuild", "correlation_id", msg.CorrelationID)
	started := time.Now()

	snapshot, err := docs.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("load document snapshot: %w", err)
	}
	logger.Info("[Rebuild] Snapshot loaded",
		"correlation_id", msg.CorrelationID, "documents", len(snapshot))

	entries := make([]vector.Entry, 0, len(snapshot))
	for offset := 0; offset < len(snapshot); offset += embedBatchSize {
		end := min(offset+embedBatchSize, len(snapshot))
		texts := make([]string, 0, end-offset)
		for _, doc := range snapshot[offset:end] {
			texts = append(texts, doc.Text)
		}

		embeddings, err := util.RetryWithContext(ctx, storeMaxTries, func(ctx context.Context) ([][]float32, error) {
			return encoder.EncodeBatch(ctx, texts)
		})
		if err != nil {
			return fmt.Errorf("encode batch at offset %d: %w", offset, err)
		}
		for i, embedding := range embeddings {
			entries = append(entries, vector.Entry{
				LocalIndex: offset + i,
				DocumentID: snapshot[offset+i].ID,
				Embedding:  embedding,
			})
		}
	}
	logger.Info("[Rebuild] Documents encoded",
		"correlation_id", msg.CorrelationID, "vectors", len(entries),
		"input_tokens", encoder.GetMetrics().InputTokens)

	err = util.RetryErrWithContext(ctx, storeMaxTries, func(ctx context.Context) error {
		return index.Rebuild(ctx, entries)
	})
	if err != nil {
		return fmt.Errorf("rebuild vector index: %w", err)
	}
	logger.Info("[Rebuild] Vector index replaced", "correlation_id", msg.CorrelationID)

	nodes, edges, err := builder.BuildAll(ctx, docs)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	err = util.RetryErrWithContext(ctx, storeMaxTries, func(ctx context.Context) error {
		return graphStore.ReplaceGraph(ctx, nodes, edges)
	})
	if err != nil {
		return fmt.Errorf("replace graph: %w", err)
	}

	// Read the counts back so the log reflects what the store accepted,
	// not what we handed it.
	storedNodes, err := graphStore.NodeCount(ctx)
	if err != nil {
		return fmt.Errorf("count graph nodes: %w", err)
	}
	storedEdges, err := graphStore.EdgeCount(ctx)
	if err != nil {
		return fmt.Errorf("count graph edges: %w", err)
	}

	logger.Info("[Rebuild] Rebuild complete",
		"correlation_id", msg.CorrelationID,
		"nodes", storedNodes, "edges", storedEdges,
		"duration_ms", time.Since(started).Milliseconds())
	return nil
}
