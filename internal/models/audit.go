package models

import "time"

// Audit actions recorded for backend mutations issued by the console.
const (
	AuditActionStudentCreate    = "STUDENT_CREATE"
	AuditActionStudentUpdate    = "STUDENT_UPDATE"
	AuditActionEnrollmentCreate = "ENROLLMENT_CREATE"
	AuditActionEnrollmentDelete = "ENROLLMENT_DELETE"
	AuditActionPaymentPreview   = "PAYMENT_PREVIEW"
	AuditActionPaymentFinalize  = "PAYMENT_FINALIZE"
)

// AuditEntry represents one recorded backend mutation.
type AuditEntry struct {
	ID         string    `db:"id" json:"id"`
	RequestID  string    `db:"request_id" json:"request_id"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID string    `db:"resource_id" json:"resource_id"`
	Payload    string    `db:"payload" json:"payload,omitempty"`
	Succeeded  bool      `db:"succeeded" json:"succeeded"`
	Error      string    `db:"error" json:"error,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
