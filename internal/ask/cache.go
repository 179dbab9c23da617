package ask

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/redis"
)

// TranslationCache remembers model translations by question. Failures are
// logged and treated as misses.
type TranslationCache interface {
	Get(ctx context.Context, question string) (Translation, bool)
	Put(ctx context.Context, question string, tr Translation)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (Translation, bool) { return Translation{}, false }
func (noopCache) Put(context.Context, string, Translation)        {}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	TranslationKey(hash string) string
}

// RedisCache stores translations as JSON under ea:translation:<sha256>.
type RedisCache struct {
	store kvStore
	ttl   time.Duration
	logg  *logger.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logg *logger.Logger) *RedisCache {
	if logg == nil {
		logg = logger.Nop()
	}
	return &RedisCache{store: client, ttl: ttl, logg: logg}
}

func (c *RedisCache) Get(ctx context.Context, question string) (Translation, bool) {
	raw, err := c.store.Get(ctx, c.key(question))
	if err != nil {
		if !errors.Is(err, redis.ErrMiss) {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "translation cache read failed")
		}
		return Translation{}, false
	}
	var tr Translation
	if err := json.Unmarshal([]byte(raw), &tr); err != nil || tr.SQL == "" {
		return Translation{}, false
	}
	return tr, true
}

func (c *RedisCache) Put(ctx context.Context, question string, tr Translation) {
	payload, err := json.Marshal(tr)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, c.key(question), string(payload), c.ttl); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "translation cache write failed")
	}
}

func (c *RedisCache) key(question string) string {
	return c.store.TranslationKey(questionHash(question))
}

// questionHash normalizes case and whitespace so trivially different
// phrasings share an entry.
func questionHash(question string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
