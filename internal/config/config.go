package config

import (
    "errors"
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/spf13/viper"

    "printship/internal/catalog"
    "printship/internal/shipping"
)

type Config struct {
    Port        string
    DatabaseURL string
    Database    DatabaseConfig
    Providers   []string

    ProviderTimeout time.Duration
    MaxBoxWeight    float64
    PackagingWeight float64
    BoxTiersFile    string
    FallbackDensity float64
    Origin          shipping.Address

    FedExCardFile     string
    SouthwestCardFile string
    FedEx             FedExConfig
    Breaker           BreakerConfig
    Redis             RedisConfig
    Log               LogConfig
}

// FedExConfig enables live FedEx pricing when APIURL is set.
type FedExConfig struct {
    APIURL            string
    APIKey            string
    AccountNumber     string
    RequestsPerSecond float64
}

// DatabaseConfig tunes the catalog pool.
type DatabaseConfig struct {
    MaxConns         int32
    StatementTimeout time.Duration
}

type BreakerConfig struct {
    ConsecutiveFailures uint32
    OpenTimeout         time.Duration
}

// RedisConfig enables the quote cache when Addr is set.
type RedisConfig struct {
    Addr     string
    Password string
    DB       int
    TTL      time.Duration
}

type LogConfig struct {
    Level  string
    Format string
}

// Load reads printship.yaml (if present) and the environment. Environment
// variables use the PRINTSHIP_ prefix with dots replaced by underscores;
// PORT, DATABASE_URL and RATE_PROVIDERS are also honored.
func Load() (*Config, error) {
    v := viper.New()
    v.SetConfigName("printship")
    v.SetConfigType("yaml")
    v.AddConfigPath(".")
    v.AddConfigPath("/etc/printship")
    if path := os.Getenv("PRINTSHIP_CONFIG"); path != "" {
        v.SetConfigFile(path)
    }
    if err := v.ReadInConfig(); err != nil {
        var notFound viper.ConfigFileNotFoundError
        if !errors.As(err, &notFound) {
            return nil, fmt.Errorf("error reading config file: %w", err)
        }
    }

    v.SetEnvPrefix("PRINTSHIP")
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    v.AutomaticEnv()
    _ = v.BindEnv("port", "PRINTSHIP_PORT", "PORT")
    _ = v.BindEnv("database_url", "PRINTSHIP_DATABASE_URL", "DATABASE_URL")
    _ = v.BindEnv("providers", "PRINTSHIP_PROVIDERS", "RATE_PROVIDERS")

    setDefaults(v)

    cfg := &Config{
        Port:            v.GetString("port"),
        DatabaseURL:     v.GetString("database_url"),
        Database: DatabaseConfig{
            MaxConns:         v.GetInt32("db.max_conns"),
            StatementTimeout: v.GetDuration("db.statement_timeout"),
        },
        Providers:       splitList(v.GetStringSlice("providers")),
        ProviderTimeout: v.GetDuration("provider_timeout"),
        MaxBoxWeight:    v.GetFloat64("max_box_weight"),
        PackagingWeight: v.GetFloat64("packaging_weight"),
        BoxTiersFile:    v.GetString("box_tiers_file"),
        FallbackDensity: v.GetFloat64("fallback_density"),
        Origin: shipping.Address{
            Street:     v.GetString("origin.street"),
            City:       v.GetString("origin.city"),
            State:      v.GetString("origin.state"),
            PostalCode: v.GetString("origin.postal_code"),
            Country:    v.GetString("origin.country"),
        }.Normalize(),
        FedExCardFile:     v.GetString("cards.fedex"),
        SouthwestCardFile: v.GetString("cards.southwest"),
        FedEx: FedExConfig{
            APIURL:            v.GetString("fedex.api_url"),
            APIKey:            v.GetString("fedex.api_key"),
            AccountNumber:     v.GetString("fedex.account_number"),
            RequestsPerSecond: v.GetFloat64("fedex.requests_per_second"),
        },
        Breaker: BreakerConfig{
            ConsecutiveFailures: v.GetUint32("breaker.consecutive_failures"),
            OpenTimeout:         v.GetDuration("breaker.open_timeout"),
        },
        Redis: RedisConfig{
            Addr:     v.GetString("redis.addr"),
            Password: v.GetString("redis.password"),
            DB:       v.GetInt("redis.db"),
            TTL:      v.GetDuration("redis.ttl"),
        },
        Log: LogConfig{
            Level:  v.GetString("log.level"),
            Format: v.GetString("log.format"),
        },
    }
    if err := cfg.validate(); err != nil {
        return nil, err
    }
    return cfg, nil
}

func setDefaults(v *viper.Viper) {
    v.SetDefault("port", "8080")
    v.SetDefault("db.max_conns", 4)
    v.SetDefault("db.statement_timeout", 2*time.Second)
    v.SetDefault("providers", []string{"fedex", "southwest"})
    v.SetDefault("provider_timeout", shipping.DefaultProviderTimeout)
    v.SetDefault("max_box_weight", shipping.MaxBoxWeight)
    v.SetDefault("packaging_weight", shipping.PackagingWeight)
    v.SetDefault("fallback_density", catalog.FallbackAreaDensity)
    v.SetDefault("origin.street", "2150 E University Dr")
    v.SetDefault("origin.city", "Phoenix")
    v.SetDefault("origin.state", "AZ")
    v.SetDefault("origin.postal_code", "85034")
    v.SetDefault("origin.country", shipping.DefaultCountry)
    v.SetDefault("fedex.requests_per_second", 5)
    v.SetDefault("breaker.consecutive_failures", 5)
    v.SetDefault("breaker.open_timeout", 30*time.Second)
    v.SetDefault("redis.ttl", 5*time.Minute)
    v.SetDefault("log.level", "info")
    v.SetDefault("log.format", "json")
}

func (c *Config) validate() error {
    if len(c.Providers) == 0 {
        return errors.New("at least one rate provider must be configured")
    }
    if c.ProviderTimeout <= 0 {
        return errors.New("provider_timeout must be positive")
    }
    if c.MaxBoxWeight <= 0 {
        return errors.New("max_box_weight must be positive")
    }
    if c.PackagingWeight < 0 {
        return errors.New("packaging_weight must not be negative")
    }
    if c.FallbackDensity <= 0 {
        return errors.New("fallback_density must be positive")
    }
    if err := c.Origin.Validate(); err != nil {
        return fmt.Errorf("origin: %w", err)
    }
    if c.FedEx.APIURL != "" && c.FedEx.APIKey == "" {
        return errors.New("fedex.api_key is required when fedex.api_url is set")
    }
    return nil
}

// BoxTiers returns the configured box tiers, or the defaults when no file is
// set.
func (c *Config) BoxTiers() ([]shipping.BoxTier, error) {
    if c.BoxTiersFile == "" {
        return shipping.DefaultBoxTiers(), nil
    }
    data, err := os.ReadFile(c.BoxTiersFile)
    if err != nil {
        return nil, err
    }
    return shipping.ParseBoxTiers(data)
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
    var out []string
    for _, s := range in {
        for _, part := range strings.Split(s, ",") {
            if p := strings.TrimSpace(part); p != "" {
                out = append(out, p)
            }
        }
    }
    return out
}
