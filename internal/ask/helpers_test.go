package ask

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/ecomagent-backend/internal/query"
	"github.com/angelmondragon/ecomagent-backend/pkg/db/dbtest"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/redis"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reply struct {
	text string
	err  error
}

// fakeGenerator answers prompts from a script, in order.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", errNoScript
	}
	next := f.replies[0]
	f.replies = f.replies[1:]
	return next.text, next.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type scriptError string

func (e scriptError) Error() string { return string(e) }

const errNoScript = scriptError("no scripted reply")

func newStore(t *testing.T) (*gorm.DB, *query.Executor) {
	t.Helper()
	client := dbtest.NewSQLite(t)
	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	exec := query.NewExecutor(sqlDB, query.Options{ReadOnly: true, MaxRows: 100}, logger.Nop(), nil)
	return client.DB(), exec
}

func newTestService(runner Runner, gen *fakeGenerator, cache TranslationCache) *Service {
	return NewService(runner, gen, cache, Options{MaxQuestionLen: 200}, logger.Nop(), nil)
}

// memoryKV stands in for redis in cache tests.
type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redis.ErrMiss
	}
	return v, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryKV) TranslationKey(hash string) string {
	return "ea:translation:" + hash
}
