// Package cache stores merged quote lists in Redis so repeated checkout
// refreshes don't hit the carriers again.
package cache

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"

    "printship/internal/shipping"
)

const defaultPrefix = "printship:quotes:"

// RedisQuoteCache implements shipping.QuoteCache.
type RedisQuoteCache struct {
    client    *redis.Client
    keyPrefix string
    ttl       time.Duration
}

// RedisConfig holds connection settings.
type RedisConfig struct {
    Addr     string
    Password string
    DB       int
    TTL      time.Duration
}

// NewRedisQuoteCache connects and pings Redis.
func NewRedisQuoteCache(cfg RedisConfig) (*RedisQuoteCache, error) {
    client := redis.NewClient(&redis.Options{
        Addr:     cfg.Addr,
        Password: cfg.Password,
        DB:       cfg.DB,
    })

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil, fmt.Errorf("failed to connect to Redis: %w", err)
    }
    return NewRedisQuoteCacheWithClient(client, "", cfg.TTL), nil
}

// NewRedisQuoteCacheWithClient shares an existing client.
func NewRedisQuoteCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisQuoteCache {
    if keyPrefix == "" {
        keyPrefix = defaultPrefix
    }
    if ttl <= 0 {
        ttl = 5 * time.Minute
    }
    return &RedisQuoteCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (c *RedisQuoteCache) Get(ctx context.Context, key string) ([]shipping.Quote, bool, error) {
    raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
    if err != nil {
        if errors.Is(err, redis.Nil) {
            return nil, false, nil
        }
        return nil, false, fmt.Errorf("failed to read cached quotes: %w", err)
    }
    var quotes []shipping.Quote
    if err := json.Unmarshal(raw, &quotes); err != nil {
        return nil, false, fmt.Errorf("failed to decode cached quotes: %w", err)
    }
    return quotes, true, nil
}

func (c *RedisQuoteCache) Set(ctx context.Context, key string, quotes []shipping.Quote) error {
    raw, err := json.Marshal(quotes)
    if err != nil {
        return err
    }
    if err := c.client.Set(ctx, c.keyPrefix+key, raw, c.ttl).Err(); err != nil {
        return fmt.Errorf("failed to cache quotes: %w", err)
    }
    return nil
}

// Close releases the client.
func (c *RedisQuoteCache) Close() error {
    return c.client.Close()
}
