package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

type memoryCache struct {
	mu       sync.Mutex
	items    map[string][]byte
	getErr   error
	deleted  []string
	setCalls int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	m.setCalls++
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "enrollments:7", EnrollmentsCacheKey(7))
	assert.Equal(t, "payments:30111222:5", PaymentsCacheKey("30111222", 5))
}

func TestReadThroughFillsThenHits(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	calls := 0
	fetch := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	value, hit, err := readThrough(context.Background(), cache, "k", fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"a", "b"}, value)

	value, hit, err = readThrough(context.Background(), cache, "k", fetch)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, value)
	assert.Equal(t, 1, calls)
}

func TestReadThroughDisabledCacheIsPassThrough(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, 0, nil, false)
	calls := 0
	fetch := func(context.Context) (int, error) { calls++; return calls, nil }

	_, _, _ = readThrough(context.Background(), cache, "k", fetch)
	v, hit, err := readThrough(context.Background(), cache, "k", fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, v)
	assert.Zero(t, repo.setCalls)
}

func TestReadThroughCacheFailureFallsBack(t *testing.T) {
	repo := newMemoryCache()
	repo.getErr = errors.New("redis down")
	cache := NewCacheService(repo, nil, 0, nil, true)

	v, hit, err := readThrough(context.Background(), cache, "k", func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", v)
}

func TestInvalidateAttemptsEveryPattern(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, 0, nil, true)
	require.NoError(t, cache.Set(context.Background(), CacheKeyStudents, []int{1}, 0))
	require.NoError(t, cache.Set(context.Background(), EnrollmentsCacheKey(1), []int{1}, 0))

	require.NoError(t, cache.Invalidate(context.Background(), CacheKeyStudents, EnrollmentsCacheKey(1)))
	assert.False(t, repo.has(CacheKeyStudents))
	assert.False(t, repo.has(EnrollmentsCacheKey(1)))
	assert.Equal(t, []string{"students", "enrollments:1"}, repo.deleted)
}
