package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"

	"github.com/lexatlas/lexatlas/pkg/ai"
)

// Encode creates a vector embedding for the given text using the configured
// embedding model.
func (c *EncoderClient) Encode(ctx context.Context, text string) ([]float32, error) {
	res, err := c.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("unexpected embedding result size: got %d want 1", len(res))
	}
	return res[0], nil
}

// EncodeBatch creates embeddings for multiple inputs in a single request.
// Blank inputs become zero vectors without being sent to the model.
func (c *EncoderClient) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	idxMap, toEncode, out := ai.NormalizeInputs(texts, c.dimensions)
	if len(toEncode) == 0 {
		return out, nil
	}

	for i := range toEncode {
		toEncode[i] = ai.TruncateToTokens(toEncode[i], c.tokenEncoding, c.maxInputTokens)
	}

	encoded, err := c.encodeStrings(ctx, toEncode)
	if err != nil {
		return nil, err
	}
	if len(encoded) != len(toEncode) {
		return nil, fmt.Errorf("embedding result size mismatch: got %d want %d", len(encoded), len(toEncode))
	}
	for i := range encoded {
		out[idxMap[i]] = encoded[i]
	}
	return out, nil
}

func (c *EncoderClient) encodeStrings(ctx context.Context, inputs []string) ([][]float32, error) {
	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	body := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Model: c.embeddingModel,
	}

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	start := time.Now()
	response, err := c.Client.Embeddings.New(rCtx, body)
	if err != nil {
		return nil, err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: int(response.Usage.PromptTokens),
		Requests:    1,
		DurationMs:  time.Since(start).Milliseconds(),
	})

	if len(response.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d want %d", len(response.Data), len(inputs))
	}

	out := make([][]float32, len(inputs))
	for _, embedding := range response.Data {
		dataIdx := int(embedding.Index)
		if dataIdx < 0 || dataIdx >= len(inputs) {
			return nil, fmt.Errorf("embedding index out of range: %d", embedding.Index)
		}
		vec := make([]float32, 0, c.dimensions)
		for _, v := range embedding.Embedding {
			if len(vec) >= c.dimensions {
				break
			}
			vec = append(vec, float32(v))
		}
		out[dataIdx] = ai.ClampVector(vec, c.dimensions)
	}
	for i := range out {
		if out[i] == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}
	return out, nil
}
