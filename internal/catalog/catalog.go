// Package catalog resolves paper stock identifiers to area densities.
package catalog

import (
    "context"
    "fmt"
    "strings"

    "go.uber.org/zap"

    "printship/internal/shipping"
)

// FallbackAreaDensity is used for materials the catalog does not know, in lbs
// per square inch (100lb gloss text).
const FallbackAreaDensity = 0.0002977

// DensityLookup finds the area density of a material. found is false when the
// identifier is unknown.
type DensityLookup interface {
    AreaDensity(ctx context.Context, materialID string) (density float64, found bool, err error)
}

// Static is an in-memory lookup keyed by material id.
type Static map[string]float64

func (s Static) AreaDensity(_ context.Context, materialID string) (float64, bool, error) {
    d, ok := s[strings.TrimSpace(materialID)]
    return d, ok, nil
}

// Resolver applies the fallback density to unknown materials and rejects
// catalog entries without a usable density.
type Resolver struct {
    lookup   DensityLookup
    fallback float64
    logger   *zap.Logger
}

// NewResolver wraps lookup. A non-positive fallback uses FallbackAreaDensity.
func NewResolver(lookup DensityLookup, fallback float64, logger *zap.Logger) *Resolver {
    if fallback <= 0 {
        fallback = FallbackAreaDensity
    }
    if lookup == nil {
        lookup = Static{}
    }
    if logger == nil {
        logger = zap.NewNop()
    }
    return &Resolver{lookup: lookup, fallback: fallback, logger: logger}
}

// Density returns the area density for materialID.
func (r *Resolver) Density(ctx context.Context, materialID string) (float64, error) {
    id := strings.TrimSpace(materialID)
    if id == "" {
        return r.fallback, nil
    }
    d, found, err := r.lookup.AreaDensity(ctx, id)
    if err != nil {
        return 0, fmt.Errorf("looking up material %s: %w", id, err)
    }
    if !found {
        r.logger.Info("unknown material, using fallback density",
            zap.String("material_id", id),
            zap.Float64("density", r.fallback),
        )
        return r.fallback, nil
    }
    if d <= 0 {
        return 0, fmt.Errorf("%w: material %s has no usable density (%g)", shipping.ErrInvalidInput, id, d)
    }
    return d, nil
}
