package drives

import (
	"context"
	"errors"
	"time"

	"github.com/GriffinCanCode/filedeck/internal/infrastructure/resilience"
	"go.uber.org/zap"
)

// Guarded wraps an Enumerator with a circuit breaker and a per-call timeout,
// so a broken listing tool fails fast instead of being spawned per request.
type Guarded struct {
	next    Enumerator
	breaker *resilience.Breaker
	timeout time.Duration

	// OnResult, if set, observes each call: "ok", "error" or "open".
	OnResult func(result string)
}

// NewGuarded returns next behind a breaker that opens after three
// consecutive failures and probes again after thirty seconds.
func NewGuarded(next Enumerator, logger *zap.Logger) *Guarded {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guarded{
		next:    next,
		timeout: 5 * time.Second,
		breaker: resilience.New("drives", resilience.Settings{
			Timeout: 30 * time.Second,
			IsFailure: func(err error) bool {
				// A missing tool will not fix itself; fail fast on it too.
				return !errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warn("drive enumeration breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

// Mounts implements Enumerator.
func (g *Guarded) Mounts(ctx context.Context) ([]MountInfo, error) {
	mounts, err := resilience.Call(ctx, g.breaker, func(ctx context.Context) ([]MountInfo, error) {
		ctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return g.next.Mounts(ctx)
	})

	if g.OnResult != nil {
		switch {
		case err == nil:
			g.OnResult("ok")
		case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
			g.OnResult("open")
		default:
			g.OnResult("error")
		}
	}
	return mounts, err
}

// State exposes the breaker state for health reporting.
func (g *Guarded) State() resilience.State {
	return g.breaker.State()
}
