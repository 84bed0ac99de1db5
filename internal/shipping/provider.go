package shipping

import (
    "context"
    "time"
)

// Provider quotes one carrier's services for a set of boxes.
//
// A destination the carrier does not serve yields an empty slice and a nil
// error. Errors are reserved for transport failures and should wrap
// ErrCarrierUnavailable.
type Provider interface {
    Carrier() Carrier
    Rates(ctx context.Context, origin, destination Address, boxes []Box) ([]Quote, error)
}

// Outcome labels a single provider call.
type Outcome string

const (
    OutcomeOK      Outcome = "ok"
    OutcomeEmpty   Outcome = "empty"
    OutcomeError   Outcome = "error"
    OutcomeTimeout Outcome = "timeout"
)

// Observer records provider calls, typically as metrics.
type Observer interface {
    ObserveProvider(c Carrier, outcome Outcome, elapsed time.Duration)
}

// QuoteCache stores merged quote lists keyed by shipment.
type QuoteCache interface {
    Get(ctx context.Context, key string) ([]Quote, bool, error)
    Set(ctx context.Context, key string, quotes []Quote) error
}

type nopObserver struct{}

func (nopObserver) ObserveProvider(Carrier, Outcome, time.Duration) {}
