package timing

import "time"

// Phases records per-phase wall-clock durations of one request so they
// can be echoed back in the response payload.
type Phases struct {
	started time.Time
	last    time.Time
	phases  []Phase
}

// Phase is one named, timed section of request processing.
type Phase struct {
	Name       string `json:"name"`
	DurationMs int64  `json:"duration_ms"`
}

// Start begins timing a request.
func Start() *Phases {
	now := time.Now()
	return &Phases{started: now, last: now}
}

// Mark closes the current phase under the given name and starts the next.
func (p *Phases) Mark(name string) {
	now := time.Now()
	p.phases = append(p.phases, Phase{
		Name:       name,
		DurationMs: now.Sub(p.last).Milliseconds(),
	})
	p.last = now
}

// Snapshot returns the recorded phases plus a total since Start.
func (p *Phases) Snapshot() []Phase {
	out := make([]Phase, len(p.phases), len(p.phases)+1)
	copy(out, p.phases)
	return append(out, Phase{
		Name:       "total",
		DurationMs: time.Since(p.started).Milliseconds(),
	})
}

// TotalMs reports elapsed time since Start.
func (p *Phases) TotalMs() int64 {
	return time.Since(p.started).Milliseconds()
}
