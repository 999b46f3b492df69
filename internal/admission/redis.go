package admission

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/algotutor/internal/logger"
)

const defaultKeyPrefix = "algotutor:admission:"

// RedisLimiter keeps one sorted set per key, scored by hit time, so every
// replica shares the same window.
type RedisLimiter struct {
	rdb    goredis.UniversalClient
	cfg    Config
	prefix string
	log    *logger.Logger
	now    func() time.Time
}

// NewRedisLimiter connects to addr and pings it.
func NewRedisLimiter(ctx context.Context, addr string, cfg Config, log *logger.Logger) (*RedisLimiter, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if log == nil {
		log = logger.Nop()
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisLimiterFromClient(rdb, cfg, log), nil
}

// NewRedisLimiterFromClient uses an existing client.
func NewRedisLimiterFromClient(rdb goredis.UniversalClient, cfg Config, log *logger.Logger) *RedisLimiter {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLimiter{
		rdb:    rdb,
		cfg:    cfg,
		prefix: defaultKeyPrefix,
		log:    log.With("service", "RedisLimiter"),
		now:    time.Now,
	}
}

// Allow prunes expired hits, records this one and counts the window in a
// single MULTI/EXEC.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := r.now()
	setKey := r.prefix + key
	cutoff := now.Add(-r.cfg.Window).UnixMicro()

	var card *goredis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, setKey, "-inf", strconv.FormatInt(cutoff, 10))
		p.ZAdd(ctx, setKey, goredis.Z{
			Score:  float64(now.UnixMicro()),
			Member: uuid.NewString(),
		})
		card = p.ZCard(ctx, setKey)
		p.PExpire(ctx, setKey, r.cfg.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("admission window for %q: %w", key, err)
	}
	return card.Val() <= int64(r.cfg.Max), nil
}

func (r *RedisLimiter) Close() error {
	return r.rdb.Close()
}
