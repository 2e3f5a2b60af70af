package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes a Redis connection. URL accepts redis:// and rediss://.
type Config struct {
	URL           string        `env:"CACHE_REDISURL"`
	PoolSize      int           `env:"CACHE_REDIS_POOLSIZE" envDefault:"10"`
	MinIdleConns  int           `env:"CACHE_REDIS_MINIDLECONNS" envDefault:"2"`
	MaxIdleTime   time.Duration `env:"CACHE_REDIS_MAXIDLETIME" envDefault:"10m"`
	DialTimeout   time.Duration `env:"CACHE_REDIS_DIALTIMEOUT" envDefault:"5s"`
	ReadTimeout   time.Duration `env:"CACHE_REDIS_READTIMEOUT" envDefault:"3s"`
	WriteTimeout  time.Duration `env:"CACHE_REDIS_WRITETIMEOUT" envDefault:"3s"`
	RetryAttempts int           `env:"CACHE_REDIS_RETRYATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"CACHE_REDIS_RETRYINTERVAL" envDefault:"2s"`
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool { return c.URL != "" }

// ParseConfig validates the URL and maps cfg onto client options.
func ParseConfig(cfg Config) (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.MaxIdleTime > 0 {
		opts.ConnMaxIdleTime = cfg.MaxIdleTime
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Open connects to Redis. Failed pings are retried RetryAttempts times,
// waiting n*RetryInterval before attempt n+1.
func Open(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	opts, err := ParseConfig(cfg)
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

// Healthcheck pings client.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
