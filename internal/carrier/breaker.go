package carrier

import (
    "context"
    "errors"
    "time"

    "github.com/sony/gobreaker"
    "go.uber.org/zap"

    "printship/internal/shipping"
)

// BreakerSettings tunes the per-carrier circuit breaker.
type BreakerSettings struct {
    // ConsecutiveFailures trips the breaker. Zero disables it.
    ConsecutiveFailures uint32
    // OpenTimeout is how long the breaker stays open before probing.
    OpenTimeout time.Duration
}

type breakerProvider struct {
    next shipping.Provider
    cb   *gobreaker.CircuitBreaker
}

// WithBreaker stops calling a carrier after repeated transport failures.
// Empty results are successes; an open breaker fails fast as
// CarrierUnavailable.
func WithBreaker(p shipping.Provider, st BreakerSettings, logger *zap.Logger) shipping.Provider {
    if st.ConsecutiveFailures == 0 {
        return p
    }
    if logger == nil {
        logger = zap.NewNop()
    }
    cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
        Name:    string(p.Carrier()),
        Timeout: st.OpenTimeout,
        ReadyToTrip: func(c gobreaker.Counts) bool {
            return c.ConsecutiveFailures >= st.ConsecutiveFailures
        },
        OnStateChange: func(name string, from, to gobreaker.State) {
            logger.Warn("carrier circuit breaker state change",
                zap.String("carrier", name),
                zap.String("from", from.String()),
                zap.String("to", to.String()),
            )
        },
    })
    return &breakerProvider{next: p, cb: cb}
}

func (b *breakerProvider) Carrier() shipping.Carrier { return b.next.Carrier() }

func (b *breakerProvider) Rates(ctx context.Context, origin, destination shipping.Address, boxes []shipping.Box) ([]shipping.Quote, error) {
    res, err := b.cb.Execute(func() (interface{}, error) {
        return b.next.Rates(ctx, origin, destination, boxes)
    })
    if err != nil {
        if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
            return nil, shipping.Unavailable(b.Carrier(), err)
        }
        return nil, err
    }
    quotes, _ := res.([]shipping.Quote)
    return quotes, nil
}
