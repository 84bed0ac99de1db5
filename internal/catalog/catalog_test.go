package catalog

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "printship/internal/shipping"
)

type failingLookup struct{}

func (failingLookup) AreaDensity(context.Context, string) (float64, bool, error) {
    return 0, false, errors.New("connection refused")
}

func TestResolver_Density(t *testing.T) {
    r := NewResolver(Static{"14pt-c2s": 0.00062, "broken": 0}, 0, nil)
    ctx := context.Background()

    d, err := r.Density(ctx, "14pt-c2s")
    require.NoError(t, err)
    assert.Equal(t, 0.00062, d)

    d, err = r.Density(ctx, "mystery-stock")
    require.NoError(t, err)
    assert.Equal(t, FallbackAreaDensity, d)

    d, err = r.Density(ctx, "  ")
    require.NoError(t, err)
    assert.Equal(t, FallbackAreaDensity, d)

    _, err = r.Density(ctx, "broken")
    assert.ErrorIs(t, err, shipping.ErrInvalidInput)
}

func TestResolver_CustomFallbackAndLookupError(t *testing.T) {
    r := NewResolver(failingLookup{}, 0.0005, nil)
    _, err := r.Density(context.Background(), "14pt-c2s")
    require.Error(t, err)
    assert.NotErrorIs(t, err, shipping.ErrInvalidInput)

    d, err := NewResolver(nil, 0.0005, nil).Density(context.Background(), "unknown")
    require.NoError(t, err)
    assert.Equal(t, 0.0005, d)
}
