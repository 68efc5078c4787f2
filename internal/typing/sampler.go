package typing

import (
	"context"
	"time"
)

// Sampler refreshes a session's metrics on a fixed cadence for callers that
// do not drive their own timer.
type Sampler struct {
	session  *Session
	interval time.Duration
	onSample func(Metrics)
}

// NewSampler returns a sampler for s. A non-positive interval falls back to
// DefaultSampleInterval; onSample may be nil.
func NewSampler(s *Session, interval time.Duration, onSample func(Metrics)) *Sampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &Sampler{session: s, interval: interval, onSample: onSample}
}

// Run samples until ctx is done. Ticks while the session is idle or finished
// are skipped.
func (p *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.session.Running() {
				continue
			}
			m := p.session.Sample()
			if p.onSample != nil {
				p.onSample(m)
			}
		}
	}
}
