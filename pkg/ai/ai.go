package ai

import "context"

// ModelMetrics contains accumulated usage metrics from encoder operations.
type ModelMetrics struct {
	InputTokens int   `json:"input_tokens"`
	Requests    int   `json:"requests"`
	DurationMs  int64 `json:"duration_ms"`
}

// Encoder maps text to fixed-length normalized embedding vectors.
// Implementations must return vectors of exactly Dimensions() values and
// treat empty input as a zero vector rather than an error.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int

	GetMetrics() ModelMetrics
	ResetMetrics()
}
