package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"assetwatch/internal/application/port"
	"assetwatch/internal/domain/model"
)

// Redis keeps quotes as JSON values with native TTL, one key per query.
// A shared Redis lets the cache survive process restarts on hosts that
// park idle instances. Any Redis failure degrades to a cache miss; the
// live fetch path must not depend on Redis health.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "assetwatch"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(q model.PriceQuery) string {
	return fmt.Sprintf("%s:quote:%s:%s", r.prefix, q.Kind, q.Symbol)
}

func (r *Redis) Get(ctx context.Context, q model.PriceQuery) (model.Quote, bool) {
	raw, err := r.rdb.Get(ctx, r.key(q)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", r.key(q)).Msg("redis get failed, treating as miss")
		}
		return model.Quote{}, false
	}

	var quote model.Quote
	if err := json.Unmarshal(raw, &quote); err != nil {
		log.Warn().Err(err).Str("key", r.key(q)).Msg("corrupt cached quote, treating as miss")
		return model.Quote{}, false
	}
	return quote, true
}

func (r *Redis) Put(ctx context.Context, q model.PriceQuery, quote model.Quote, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	b, err := json.Marshal(quote)
	if err != nil {
		log.Warn().Err(err).Msg("marshal quote for cache failed")
		return
	}
	if err := r.rdb.Set(ctx, r.key(q), b, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", r.key(q)).Msg("redis set failed")
	}
}

var _ port.QuoteCache = (*Redis)(nil)
