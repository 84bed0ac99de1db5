package cache

import (
    "os"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "printship/internal/shipping"
)

func TestRedisQuoteCacheIntegration(t *testing.T) {
    addr := os.Getenv("REDIS_ADDR")
    if addr == "" {
        t.Skip("REDIS_ADDR not set; skipping integration test")
        return
    }
    c, err := NewRedisQuoteCache(RedisConfig{Addr: addr, TTL: time.Minute})
    require.NoError(t, err)
    defer c.Close()

    key := "it-" + uuid.NewString()
    _, ok, err := c.Get(t.Context(), key)
    require.NoError(t, err)
    assert.False(t, ok)

    quotes := []shipping.Quote{{
        ID:          uuid.NewString(),
        Carrier:     shipping.CarrierFedEx,
        ServiceCode: "FEDEX_GROUND",
        ServiceName: "FedEx Ground",
        Amount:      decimal.RequireFromString("41.16"),
        Currency:    shipping.Currency,
        TransitDays: shipping.Days(3),
        BoxCount:    2,
    }}
    require.NoError(t, c.Set(t.Context(), key, quotes))

    got, ok, err := c.Get(t.Context(), key)
    require.NoError(t, err)
    require.True(t, ok)
    require.Len(t, got, 1)
    assert.True(t, quotes[0].Amount.Equal(got[0].Amount))
    assert.Equal(t, 3, *got[0].TransitDays)
    assert.Equal(t, "FEDEX_GROUND", got[0].ServiceCode)
}
