package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/pkg/jobs"
)

const auditJobType = "audit.write"

type jobQueue interface {
	TryEnqueue(job jobs.Job) error
}

// QueuedAuditStore moves audit inserts off the request path. Entries get
// their id and timestamp when queued so history order follows request order.
type QueuedAuditStore struct {
	store AuditStore
	queue jobQueue
}

// NewQueuedAuditStore wraps store. Register HandleJob as the queue handler.
func NewQueuedAuditStore(store AuditStore) *QueuedAuditStore {
	return &QueuedAuditStore{store: store}
}

// Attach sets the queue Create enqueues onto.
func (s *QueuedAuditStore) Attach(queue jobQueue) {
	s.queue = queue
}

// Create enqueues a copy of entry. Without a queue it writes through.
func (s *QueuedAuditStore) Create(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if s.queue == nil {
		return s.store.Create(ctx, entry)
	}
	copied := *entry
	return s.queue.TryEnqueue(jobs.Job{ID: copied.ID, Type: auditJobType, Payload: &copied})
}

// ListByResource reads straight from the store.
func (s *QueuedAuditStore) ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditEntry, error) {
	return s.store.ListByResource(ctx, resource, resourceID, limit)
}

// HandleJob persists one queued entry.
func (s *QueuedAuditStore) HandleJob(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.AuditEntry)
	if !ok {
		return fmt.Errorf("audit job %s: unexpected payload %T", job.ID, job.Payload)
	}
	return s.store.Create(ctx, entry)
}
