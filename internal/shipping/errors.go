package shipping

import (
    "errors"
    "fmt"
)

var (
    // ErrInvalidInput marks malformed items or addresses. Never retried.
    ErrInvalidInput = errors.New("invalid input")
    // ErrCarrierUnavailable marks a transport-level failure of one provider.
    ErrCarrierUnavailable = errors.New("carrier unavailable")
    // ErrNoRatesAvailable is returned when no provider produced a quote.
    ErrNoRatesAvailable = errors.New("no shipping rates available")
)

func invalidf(format string, args ...any) error {
    return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Unavailable wraps err as a CarrierUnavailable failure for carrier c.
func Unavailable(c Carrier, err error) error {
    if errors.Is(err, ErrCarrierUnavailable) {
        return err
    }
    return fmt.Errorf("%w: %s: %w", ErrCarrierUnavailable, c, err)
}

func fmtItemErr(i int, err error) error {
    return fmt.Errorf("item %d: %w", i+1, err)
}
