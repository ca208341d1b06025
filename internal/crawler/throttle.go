package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinDelay is the pause enforced between two detail page requests
const DefaultMinDelay = time.Second

// Throttle is the request budget of a single run. It is not shared between
// runs, and a run uses it from one goroutine only.
type Throttle struct {
	limit   int
	issued  int
	limiter *rate.Limiter
}

// NewThrottle creates a budget of limit requests spaced at least minDelay apart.
// A non-positive minDelay disables pacing.
func NewThrottle(limit int, minDelay time.Duration) *Throttle {
	t := &Throttle{limit: limit}
	if minDelay > 0 {
		t.limiter = rate.NewLimiter(rate.Every(minDelay), 1)
	}
	return t
}

// TryAcquire grants one request. It returns false once the budget is used up,
// and otherwise blocks until minDelay has passed since the previous grant.
// The error is non-nil only when ctx ends while waiting.
func (t *Throttle) TryAcquire(ctx context.Context) (bool, error) {
	if t.issued >= t.limit {
		return false, nil
	}
	t.issued++

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Issued returns the number of grants so far
func (t *Throttle) Issued() int {
	return t.issued
}

// Limit returns the budget
func (t *Throttle) Limit() int {
	return t.limit
}
