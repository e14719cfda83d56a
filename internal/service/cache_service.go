package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

// Query cache keys. The repository adds the "academy:" namespace.
const (
	CacheKeyStudents     = "students"
	CacheKeyClassOptions = "class-options"
)

// EnrollmentsCacheKey is the enrollments-for-student query key.
func EnrollmentsCacheKey(studentID int64) string {
	return fmt.Sprintf("enrollments:%d", studentID)
}

// PaymentsCacheKey is the current-month payment query key.
func PaymentsCacheKey(dni string, month int) string {
	return fmt.Sprintf("payments:%s:%d", dni, month)
}

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for each pattern. Every pattern is
// attempted; the first error is returned.
func (s *CacheService) Invalidate(ctx context.Context, patterns ...string) error {
	if !s.Enabled() {
		return nil
	}
	var first error
	for _, pattern := range patterns {
		if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
			s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// readThrough serves key from the cache, falling back to fetch and storing
// its result. Cache failures degrade to a backend read.
func readThrough[T any](ctx context.Context, cache *CacheService, key string, fetch func(context.Context) (T, error)) (T, bool, error) {
	var cached T
	if hit, err := cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	_ = cache.Set(ctx, key, value, 0)
	return value, false, nil
}
