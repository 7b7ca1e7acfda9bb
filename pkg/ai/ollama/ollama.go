package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"

	"github.com/lexatlas/lexatlas/pkg/ai"
)

const (
	defaultDimensions = 1024
	defaultTimeoutMin = 5
)

// EncoderClient implements ai.Encoder using an Ollama server for embedding
// inference.
type EncoderClient struct {
	embeddingModel string
	dimensions     int
	tokenEncoding  string
	maxInputTokens int
	timeoutMin     int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *api.Client
}

// NewEncoderClientParams contains configuration options for creating a new EncoderClient.
type NewEncoderClientParams struct {
	EmbeddingModel string
	Dimensions     int

	BaseURL string
	ApiKey  string

	// TokenEncoding / MaxInputTokens bound embedding inputs; zero disables truncation.
	TokenEncoding  string
	MaxInputTokens int

	MaxConcurrentRequests int64
	TimeoutMin            int
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewEncoderClient creates a new Ollama-backed embedding encoder. It connects
// to the Ollama server at the given BaseURL (or the default if empty) and
// uses the configured model for all embedding requests.
func NewEncoderClient(params NewEncoderClientParams) (*EncoderClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.ApiKey,
			},
			rt: http.DefaultTransport,
		},
	}

	var client *api.Client
	if u != nil {
		client = api.NewClient(u, httpClient)
	} else {
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
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
		Client:         client,
	}, nil
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
