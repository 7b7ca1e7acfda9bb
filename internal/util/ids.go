package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const traceIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewTraceID returns a short random identifier echoed back in query
// responses so a caller can correlate a result set with server logs.
func NewTraceID() string {
	id, err := gonanoid.Generate(traceIDAlphabet, 12)
	if err != nil {
		// gonanoid only fails when the platform RNG is broken.
		return "trace-unavailable"
	}
	return id
}

// NewCorrelationID returns an identifier for an offline rebuild job.
func NewCorrelationID() string {
	id, err := gonanoid.Generate(traceIDAlphabet, 16)
	if err != nil {
		return "corr-unavailable"
	}
	return id
}
