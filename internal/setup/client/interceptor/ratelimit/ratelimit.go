package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jaxron/axonet/pkg/client/logger"
	"github.com/jaxron/axonet/pkg/client/middleware"
	"github.com/robalyx/deeplweb/pkg/utils"
)

// Limiter enforces a minimum spacing between the requests of one session.
// Requests passing through the same Limiter are fully serialized: the next
// request is not sent before the previous one completed and the spacing
// elapsed.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
	logger   logger.Logger
}

// New creates a Limiter that spaces requests by at least interval.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
		logger:   &logger.NoOpLogger{},
	}
}

// Process waits out the remaining spacing before passing the request on.
func (l *Limiter) Process(
	ctx context.Context, httpClient *http.Client, req *http.Request, next middleware.NextFunc,
) (*http.Response, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if wait := l.remaining(); wait > 0 {
		l.logger.WithFields(
			logger.String("url", req.URL.String()),
			logger.Duration("wait", wait),
		).Debug("Spacing request")

		if utils.ContextSleep(ctx, wait) == utils.SleepCancelled {
			return nil, ctx.Err()
		}
	}

	resp, err := next(ctx, httpClient, req)
	l.last = l.now()

	return resp, err
}

// Remaining returns how long the next request would have to wait.
func (l *Limiter) Remaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.remaining()
}

// LastRequest returns when the previous request completed.
func (l *Limiter) LastRequest() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.last
}

func (l *Limiter) remaining() time.Duration {
	if l.last.IsZero() {
		return 0
	}

	return max(l.interval-l.now().Sub(l.last), 0)
}

// SetLogger sets the logger for the middleware.
func (l *Limiter) SetLogger(lg logger.Logger) {
	l.logger = lg
}
