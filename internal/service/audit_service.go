package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/middleware/requestid"
)

// AuditStore persists audit entries.
type AuditStore interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditEntry, error)
}

// AuditService records the backend mutations issued by the console. A nil
// store disables it.
type AuditService struct {
	store  AuditStore
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(store AuditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{store: store, logger: logger}
}

// Enabled reports whether entries are persisted.
func (s *AuditService) Enabled() bool {
	return s != nil && s.store != nil
}

// Record stores one mutation outcome. Failures are logged and swallowed.
func (s *AuditService) Record(ctx context.Context, action, resource, resourceID string, payload interface{}, cause error) {
	if !s.Enabled() {
		return
	}
	entry := &models.AuditEntry{
		RequestID:  requestid.FromContext(ctx),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Succeeded:  cause == nil,
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			entry.Payload = string(raw)
		}
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := s.store.Create(ctx, entry); err != nil {
		s.logger.Warn("audit entry not stored", zap.String("action", action), zap.String("resource_id", resourceID), zap.Error(err))
	}
}

// History lists the latest entries recorded for one resource.
func (s *AuditService) History(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditEntry, error) {
	if !s.Enabled() {
		return []models.AuditEntry{}, nil
	}
	resource = strings.TrimSpace(resource)
	resourceID = strings.TrimSpace(resourceID)
	if resource == "" || resourceID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resource and resource_id are required")
	}
	entries, err := s.store.ListByResource(ctx, resource, resourceID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit history")
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return entries, nil
}
