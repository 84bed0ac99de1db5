package carrier

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "printship/internal/shipping"
)

var (
    phoenix    = shipping.Address{City: "Phoenix", State: "AZ", PostalCode: "85034", Country: "US"}
    dallas     = shipping.Address{City: "Dallas", State: "TX", PostalCode: "75201", Country: "US"}
    missoula   = shipping.Address{City: "Missoula", State: "MT", PostalCode: "59801", Country: "US"}
    postcardsB = []shipping.Box{{Weight: 36}, {Weight: 0.724}}
)

func testDeps(t *testing.T) Deps {
    t.Helper()
    deps, err := DefaultDeps(nil)
    require.NoError(t, err)
    return deps
}

func codes(quotes []shipping.Quote) []string {
    out := make([]string, len(quotes))
    for i, q := range quotes {
        out[i] = q.ServiceCode
    }
    return out
}

func TestNewRegistry(t *testing.T) {
    deps := testDeps(t)

    providers, err := NewRegistry([]string{"fedex", "swc", "FedEx"}, deps)
    require.NoError(t, err)
    require.Len(t, providers, 2)
    assert.Equal(t, shipping.CarrierFedEx, providers[0].Carrier())
    assert.Equal(t, shipping.CarrierSouthwestCargo, providers[1].Carrier())

    _, err = NewRegistry([]string{"fedex", "ups"}, deps)
    assert.Error(t, err)

    _, err = NewRegistry(nil, deps)
    assert.Error(t, err)
}

func TestNewByName_WrapsBreakerWhenConfigured(t *testing.T) {
    deps := testDeps(t)
    p, err := NewByName("fedex", deps)
    require.NoError(t, err)
    _, ok := p.(*FedEx)
    assert.True(t, ok)

    deps.Breaker = BreakerSettings{ConsecutiveFailures: 3, OpenTimeout: time.Second}
    p, err = NewByName("southwest", deps)
    require.NoError(t, err)
    _, ok = p.(*breakerProvider)
    assert.True(t, ok)
    assert.Equal(t, shipping.CarrierSouthwestCargo, p.Carrier())
}

type flakyProvider struct {
    calls int
    err   error
}

func (f *flakyProvider) Carrier() shipping.Carrier { return shipping.CarrierFedEx }

func (f *flakyProvider) Rates(context.Context, shipping.Address, shipping.Address, []shipping.Box) ([]shipping.Quote, error) {
    f.calls++
    return nil, f.err
}

func TestWithBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
    inner := &flakyProvider{err: errors.New("timeout")}
    p := WithBreaker(inner, BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Minute}, nil)

    for i := 0; i < 2; i++ {
        _, err := p.Rates(context.Background(), phoenix, dallas, postcardsB)
        require.Error(t, err)
    }
    _, err := p.Rates(context.Background(), phoenix, dallas, postcardsB)
    assert.ErrorIs(t, err, shipping.ErrCarrierUnavailable)
    assert.Equal(t, 2, inner.calls)
}

func TestWithBreaker_EmptyResultIsSuccess(t *testing.T) {
    inner := &flakyProvider{}
    p := WithBreaker(inner, BreakerSettings{ConsecutiveFailures: 1, OpenTimeout: time.Minute}, nil)
    for i := 0; i < 3; i++ {
        quotes, err := p.Rates(context.Background(), phoenix, dallas, postcardsB)
        require.NoError(t, err)
        assert.Empty(t, quotes)
    }
    assert.Equal(t, 3, inner.calls)
}

func TestZone(t *testing.T) {
    z, ok := zone("85034", "75201")
    require.True(t, ok)
    assert.Equal(t, 2, z)

    z, ok = zone("10001", "90210")
    require.True(t, ok)
    assert.Equal(t, 7, z)

    z, ok = zone("00501", "99950")
    require.True(t, ok)
    assert.Equal(t, 8, z)

    _, ok = zone("85034", "K1A0B1")
    assert.False(t, ok)
    _, ok = zone("850", "75201")
    assert.False(t, ok)

    for _, postal := range []string{"-1234", "+1234", "1 234", "12a45"} {
        _, ok = zone("85034", postal)
        assert.False(t, ok, postal)
    }
}
