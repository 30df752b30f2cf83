package pipeline

import (
	"context"
	"time"
)

// DefaultDelay is the pause between attempted rows.
const DefaultDelay = 10 * time.Second

// Pacer holds the fixed pause taken between row attempts so the mail
// provider is not flooded. The pause starts once the previous row is done,
// so slow generation or sending never shortens it.
type Pacer struct {
	delay time.Duration
}

// NewPacer pauses for delay between attempts. A non-positive delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay}
}

// Pause blocks for the full delay or until ctx is done.
func (p *Pacer) Pause(ctx context.Context) error {
	if p == nil || p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
