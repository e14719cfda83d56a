package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
)

type classOptionRepository interface {
	List(ctx context.Context) ([]models.ClassOption, error)
}

// ClassOptionService serves the class offering catalogue.
type ClassOptionService struct {
	repo   classOptionRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewClassOptionService constructs a ClassOptionService.
func NewClassOptionService(repo classOptionRepository, cache *CacheService, logger *zap.Logger) *ClassOptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassOptionService{repo: repo, cache: cache, logger: logger}
}

// List returns every class option. The bool reports a cache hit.
func (s *ClassOptionService) List(ctx context.Context) ([]models.ClassOption, bool, error) {
	options, hit, err := readThrough(ctx, s.cache, CacheKeyClassOptions, func(ctx context.Context) ([]models.ClassOption, error) {
		options, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if options == nil {
			options = []models.ClassOption{}
		}
		return options, nil
	})
	if err != nil {
		return nil, false, translateBackendError(err, "failed to list class options")
	}
	return options, hit, nil
}

// Labels maps option ids, as carried by enrollments, to display labels.
func (s *ClassOptionService) Labels(ctx context.Context) (map[string]string, error) {
	options, _, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(options))
	for _, opt := range options {
		labels[strconv.FormatInt(opt.ID, 10)] = opt.Label()
	}
	return labels, nil
}
