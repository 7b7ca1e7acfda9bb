package openai

import (
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"

	"github.com/lexatlas/lexatlas/pkg/ai"
)

const (
	defaultDimensions = 1024
	defaultTimeoutMin = 5
)

// EncoderClient implements ai.Encoder against any OpenAI-compatible
// embeddings endpoint.
type EncoderClient struct {
	embeddingModel string
	dimensions     int
	tokenEncoding  string
	maxInputTokens int
	timeoutMin     int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client openai.Client
}

// NewEncoderClientParams contains configuration options for creating a new EncoderClient.
type NewEncoderClientParams struct {
	EmbeddingModel string
	Dimensions     int

	BaseURL string
	ApiKey  string

	TokenEncoding  string
	MaxInputTokens int

	MaxConcurrentRequests int64
	TimeoutMin            int
}

// NewEncoderClient creates a new OpenAI-backed embedding encoder.
func NewEncoderClient(params NewEncoderClientParams) *EncoderClient {
	opts := []option.RequestOption{}
	if params.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(params.BaseURL))
	}
	if params.ApiKey != "" {
		opts = append(opts, option.WithAPIKey(params.ApiKey))
	}

	dim := params.Dimensions
	if dim <= 0 {
		dim = defaultDimensions
	}
	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = defaultTimeoutMin
	}
	maxReq := params.MaxConcurrentRequests
	if maxReq <= 0 {
		maxReq = 8
	}

	return &EncoderClient{
		embeddingModel: params.EmbeddingModel,
		dimensions:     dim,
		tokenEncoding:  params.TokenEncoding,
		maxInputTokens: params.MaxInputTokens,
		timeoutMin:     timeoutMin,
		reqLock:        semaphore.NewWeighted(maxReq),
		Client:         openai.NewClient(opts...),
	}
}

// Dimensions returns the embedding vector length produced by this encoder.
func (c *EncoderClient) Dimensions() int {
	return c.dimensions
}

// GetMetrics returns the accumulated usage metrics.
func (c *EncoderClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

// ResetMetrics clears the accumulated usage metrics.
func (c *EncoderClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}

func (c *EncoderClient) modifyMetrics(delta ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.InputTokens += delta.InputTokens
	c.metrics.Requests += delta.Requests
	c.metrics.DurationMs += delta.DurationMs
}
