package ollama

import (
	"context"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/lexatlas/lexatlas/pkg/ai"
)

// Encode creates a vector embedding for the given query or document text
// using the configured embedding model on Ollama. Blank input yields a zero
// vector of the encoder's dimension.
func (c *EncoderClient) Encode(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, c.dimensions), nil
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	input := ai.TruncateToTokens(text, c.tokenEncoding, c.maxInputTokens)

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: input,
	}

	err := c.reqLock.Acquire(rCtx, 1)
	if err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.Client.Embed(rCtx, req)
	if err != nil {
		return nil, err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		Requests:    1,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	out := make([]float32, 0, c.dimensions)
	for _, v := range res.Embeddings {
		for _, val := range v {
			if len(out) >= c.dimensions {
				break
			}
			out = append(out, float32(val))
		}
	}
	return ai.ClampVector(out, c.dimensions), nil
}

// EncodeBatch embeds each input in order. The Ollama embed API is called
// once per input; the client's semaphore limits actual parallelism upstream,
// so the loop here stays sequential and predictable for batch jobs.
func (c *EncoderClient) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	idxMap, toEncode, out := ai.NormalizeInputs(texts, c.dimensions)
	for i, text := range toEncode {
		vec, err := c.Encode(ctx, text)
		if err != nil {
			return nil, err
		}
		out[idxMap[i]] = vec
	}
	return out, nil
}
