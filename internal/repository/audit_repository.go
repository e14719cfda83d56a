package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin/internal/models"
)

// AuditRepository persists console audit entries in postgres.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts entry, assigning its id and timestamp when missing.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO console_audit_logs (id, request_id, action, resource, resource_id, payload, succeeded, error, created_at)
        VALUES (:id, :request_id, :action, :resource, :resource_id, :payload, :succeeded, :error, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByResource returns the latest entries for one resource, newest first.
func (r *AuditRepository) ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, request_id, action, resource, resource_id, payload, succeeded, error, created_at
        FROM console_audit_logs WHERE resource = $1 AND resource_id = $2 ORDER BY created_at DESC LIMIT $3`
	var entries []models.AuditEntry
	if err := r.db.SelectContext(ctx, &entries, query, resource, resourceID, limit); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
