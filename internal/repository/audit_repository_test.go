package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin/internal/models"
)

func newAuditMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuditRepositoryCreateAssignsIDAndTimestamp(t *testing.T) {
	db, mock, cleanup := newAuditMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO console_audit_logs").
		WithArgs(sqlmock.AnyArg(), "req-1", models.AuditActionEnrollmentDelete, "enrollments", "4", `{"id":4}`, true, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditEntry{
		RequestID:  "req-1",
		Action:     models.AuditActionEnrollmentDelete,
		Resource:   "enrollments",
		ResourceID: "4",
		Payload:    `{"id":4}`,
		Succeeded:  true,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreateError(t *testing.T) {
	db, mock, cleanup := newAuditMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO console_audit_logs").WillReturnError(errors.New("down"))
	err := NewAuditRepository(db).Create(context.Background(), &models.AuditEntry{Action: models.AuditActionStudentCreate})
	assert.ErrorContains(t, err, "insert audit entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListByResource(t *testing.T) {
	db, mock, cleanup := newAuditMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "request_id", "action", "resource", "resource_id", "payload", "succeeded", "error", "created_at"}).
		AddRow("a-1", "req-1", models.AuditActionPaymentFinalize, "payments", "8", `{"method":"cash"}`, true, "", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM console_audit_logs WHERE resource = $1 AND resource_id = $2 ORDER BY created_at DESC LIMIT $3")).
		WithArgs("payments", "8", 50).
		WillReturnRows(rows)

	entries, err := NewAuditRepository(db).ListByResource(context.Background(), "payments", "8", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionPaymentFinalize, entries[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}
