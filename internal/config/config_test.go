package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "printship/internal/shipping"
)

func TestLoad_Defaults(t *testing.T) {
    t.Setenv("PRINTSHIP_CONFIG", "")
    cfg, err := Load()
    require.NoError(t, err)

    assert.Equal(t, "8080", cfg.Port)
    assert.Equal(t, []string{"fedex", "southwest"}, cfg.Providers)
    assert.Equal(t, shipping.DefaultProviderTimeout, cfg.ProviderTimeout)
    assert.Equal(t, 36.0, cfg.MaxBoxWeight)
    assert.Equal(t, 1.0, cfg.PackagingWeight)
    assert.Equal(t, "85034", cfg.Origin.PostalCode)
    assert.Equal(t, "US", cfg.Origin.Country)
    assert.Equal(t, uint32(5), cfg.Breaker.ConsecutiveFailures)
    assert.Equal(t, int32(4), cfg.Database.MaxConns)
    assert.Equal(t, 2*time.Second, cfg.Database.StatementTimeout)
    assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
    assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_BareEnvNames(t *testing.T) {
    t.Setenv("PORT", "9090")
    t.Setenv("DATABASE_URL", "postgres://localhost/printship")
    t.Setenv("RATE_PROVIDERS", "fedex, swc")

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, "9090", cfg.Port)
    assert.Equal(t, "postgres://localhost/printship", cfg.DatabaseURL)
    assert.Equal(t, []string{"fedex", "swc"}, cfg.Providers)
}

func TestLoad_PrefixedEnv(t *testing.T) {
    t.Setenv("PRINTSHIP_PROVIDER_TIMEOUT", "3s")
    t.Setenv("PRINTSHIP_REDIS_ADDR", "localhost:6379")
    t.Setenv("PRINTSHIP_ORIGIN_POSTAL_CODE", "75201")
    t.Setenv("PRINTSHIP_ORIGIN_STATE", " tx ")

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
    assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
    assert.Equal(t, "75201", cfg.Origin.PostalCode)
    assert.Equal(t, "TX", cfg.Origin.State)
}

func TestLoad_ConfigFile(t *testing.T) {
    dir := t.TempDir()
    path := filepath.Join(dir, "printship.yaml")
    require.NoError(t, os.WriteFile(path, []byte(`
providers: [southwest]
max_box_weight: 50
log:
  level: debug
  format: console
`), 0o644))
    t.Setenv("PRINTSHIP_CONFIG", path)

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, []string{"southwest"}, cfg.Providers)
    assert.Equal(t, 50.0, cfg.MaxBoxWeight)
    assert.Equal(t, "debug", cfg.Log.Level)
    assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
    cases := map[string][2]string{
        "non-positive max box weight": {"PRINTSHIP_MAX_BOX_WEIGHT", "0"},
        "negative packaging":          {"PRINTSHIP_PACKAGING_WEIGHT", "-1"},
        "zero timeout":                {"PRINTSHIP_PROVIDER_TIMEOUT", "0s"},
        "api url without key":         {"PRINTSHIP_FEDEX_API_URL", "https://apis.example.com"},
    }
    for name, kv := range cases {
        t.Run(name, func(t *testing.T) {
            t.Setenv(kv[0], kv[1])
            _, err := Load()
            assert.Error(t, err)
        })
    }
}

func TestBoxTiers(t *testing.T) {
    cfg := &Config{}
    tiers, err := cfg.BoxTiers()
    require.NoError(t, err)
    assert.Equal(t, shipping.DefaultBoxTiers(), tiers)

    path := filepath.Join(t.TempDir(), "tiers.yaml")
    require.NoError(t, os.WriteFile(path, []byte(`
tiers:
  - {name: flat, length: 15, width: 12, height: 2, capacity: 5}
  - {name: crate, length: 24, width: 18, height: 12, capacity: 40}
`), 0o644))
    cfg.BoxTiersFile = path
    tiers, err = cfg.BoxTiers()
    require.NoError(t, err)
    require.Len(t, tiers, 2)
    assert.Equal(t, "crate", tiers[1].Name)
}

func TestSplitList(t *testing.T) {
    assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a,", "b", " , c"}))
    assert.Nil(t, splitList(nil))
}
