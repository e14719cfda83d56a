package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/pkg/jobs"
)

func TestQueuedAuditStoreWritesThroughWithoutQueue(t *testing.T) {
	store := &auditStoreStub{}
	queued := NewQueuedAuditStore(store)

	entry := &models.AuditEntry{Action: models.AuditActionStudentCreate, Resource: "students", ResourceID: "4"}
	require.NoError(t, queued.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, []string{models.AuditActionStudentCreate}, store.actions())
}

func TestQueuedAuditStoreDrainsOnStop(t *testing.T) {
	store := &auditStoreStub{}
	queued := NewQueuedAuditStore(store)
	queue := jobs.NewQueue("audit", queued.HandleJob, jobs.QueueConfig{Workers: 2, RetryDelay: time.Millisecond})
	queued.Attach(queue)
	queue.Start(context.Background())

	svc := NewAuditService(queued, nil)
	svc.Record(context.Background(), models.AuditActionPaymentPreview, "payments", "8", map[string]string{"method": "cash"}, nil)
	svc.Record(context.Background(), models.AuditActionPaymentFinalize, "payments", "8", map[string]string{"method": "cash"}, nil)
	queue.Stop()

	history, err := svc.History(context.Background(), "payments", "8", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, entry := range history {
		assert.NotEmpty(t, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
	}
}

func TestQueuedAuditStoreRejectsForeignPayload(t *testing.T) {
	queued := NewQueuedAuditStore(&auditStoreStub{})
	err := queued.HandleJob(context.Background(), jobs.Job{ID: "x", Payload: "nope"})
	assert.Error(t, err)
}
