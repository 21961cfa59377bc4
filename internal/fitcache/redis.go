package fitcache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/objones25/clusterfit/internal/monitor"
)

const (
	defaultTTL          = 24 * time.Hour
	defaultMaxRetries   = 3
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
)

// Config holds Redis configuration
type Config struct {
	Host         string
	Port         string
	Password     string
	DB           int
	TTL          time.Duration
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
}

// RedisCache shares scores between evaluator processes
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(cfg Config) (*RedisCache, error) {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.MinIdleConns <= 0 {
		cfg.MinIdleConns = defaultMinIdleConns
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaultTTL
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("host cannot be empty")
	}
	if cfg.Port == "" {
		return nil, fmt.Errorf("port cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Get retrieves a score; -Inf round-trips
func (rc *RedisCache) Get(ctx context.Context, key string) (float64, bool, error) {
	if key == "" {
		return 0, false, ErrEmptyKey
	}
	start := time.Now()
	defer func() {
		monitor.CacheLatency.WithLabelValues("redis", "get").Observe(time.Since(start).Seconds())
	}()

	val, err := rc.client.Get(ctx, key).Result()
	if err == redis.Nil {
		monitor.CacheOperations.WithLabelValues("redis", "get", "miss").Inc()
		return 0, false, nil
	}
	if err != nil {
		monitor.CacheOperations.WithLabelValues("redis", "get", "error").Inc()
		return 0, false, fmt.Errorf("failed to get score from Redis: %w", err)
	}

	score, err := strconv.ParseFloat(val, 64)
	if err != nil {
		monitor.CacheOperations.WithLabelValues("redis", "get", "error").Inc()
		return 0, false, fmt.Errorf("failed to parse cached score %q: %w", val, err)
	}

	monitor.CacheOperations.WithLabelValues("redis", "get", "hit").Inc()
	log.Debug().Str("key", key).Float64("score", score).Msg("Cache hit")
	return score, true, nil
}

// Set stores a score with the configured TTL
func (rc *RedisCache) Set(ctx context.Context, key string, score float64) error {
	if key == "" {
		return ErrEmptyKey
	}
	start := time.Now()
	defer func() {
		monitor.CacheLatency.WithLabelValues("redis", "set").Observe(time.Since(start).Seconds())
	}()

	val := strconv.FormatFloat(score, 'g', -1, 64)
	if err := rc.client.Set(ctx, key, val, rc.ttl).Err(); err != nil {
		monitor.CacheOperations.WithLabelValues("redis", "set", "error").Inc()
		return fmt.Errorf("failed to set score in Redis: %w", err)
	}
	monitor.CacheOperations.WithLabelValues("redis", "set", "success").Inc()
	return nil
}

// Health checks the Redis connection
func (rc *RedisCache) Health(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
