// Package carrier holds the concrete rate providers and the registry that
// wires them up at startup.
package carrier

import (
    "errors"
    "fmt"
    "strings"

    "go.uber.org/zap"

    "printship/internal/shipping"
)

// Deps carries what the providers need.
type Deps struct {
    FedExCard     Card
    SouthwestCard Card
    FedExAPI      *FedExAPI
    Breaker       BreakerSettings
    Logger        *zap.Logger
}

// DefaultDeps loads the built-in rate cards.
func DefaultDeps(logger *zap.Logger) (Deps, error) {
    fedex, err := LoadCard("", "fedex")
    if err != nil {
        return Deps{}, err
    }
    swc, err := LoadCard("", "southwest")
    if err != nil {
        return Deps{}, err
    }
    return Deps{FedExCard: fedex, SouthwestCard: swc, Logger: logger}, nil
}

// NewByName returns the provider registered under name.
func NewByName(name string, deps Deps) (shipping.Provider, error) {
    var p shipping.Provider
    switch strings.ToLower(strings.TrimSpace(name)) {
    case "fedex":
        p = NewFedEx(deps.FedExCard, deps.FedExAPI, deps.Logger)
    case "southwest", "southwest_cargo", "swc":
        p = NewSouthwestCargo(deps.SouthwestCard, deps.Logger)
    default:
        return nil, fmt.Errorf("unknown rate provider %q", name)
    }
    return WithBreaker(p, deps.Breaker, deps.Logger), nil
}

// NewRegistry builds the fixed provider list. Each carrier appears once.
func NewRegistry(names []string, deps Deps) ([]shipping.Provider, error) {
    if len(names) == 0 {
        return nil, errors.New("no rate providers configured")
    }
    seen := map[shipping.Carrier]bool{}
    var providers []shipping.Provider
    for _, name := range names {
        p, err := NewByName(name, deps)
        if err != nil {
            return nil, err
        }
        if seen[p.Carrier()] {
            continue
        }
        seen[p.Carrier()] = true
        providers = append(providers, p)
    }
    return providers, nil
}
