package ai

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/lexatlas/lexatlas/pkg/logger"
)

// TruncateToTokens shortens text to at most maxTokens tokens using the named
// tiktoken encoding. Paragraphs of the corpus are short; this guards against
// the occasional oversized segment blowing the embedding context window.
func TruncateToTokens(text string, encoding string, maxTokens int) string {
	if maxTokens <= 0 || strings.TrimSpace(text) == "" {
		return text
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		logger.Warn("[AI] Unknown token encoding, skipping truncation", "encoding", encoding, "err", err)
		return text
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}

// NormalizeInputs splits inputs into the blank entries, which get zero
// vectors of the given dimension, and the non-blank entries to encode.
// idxMap maps positions in the returned texts back into out.
func NormalizeInputs(inputs []string, dim int) (idxMap []int, texts []string, out [][]float32) {
	idxMap = make([]int, 0, len(inputs))
	texts = make([]string, 0, len(inputs))
	out = make([][]float32, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in) == "" {
			out[i] = make([]float32, dim)
			continue
		}
		idxMap = append(idxMap, i)
		texts = append(texts, in)
	}
	return idxMap, texts, out
}

// ClampVector pads or truncates vec to exactly dim values.
func ClampVector(vec []float32, dim int) []float32 {
	if len(vec) == dim {
		return vec
	}
	if len(vec) > dim {
		return vec[:dim]
	}
	padded := make([]float32, dim)
	copy(padded, vec)
	return padded
}
