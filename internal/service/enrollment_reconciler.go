package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
)

// EnrollmentStore is the remote enrollment collection.
type EnrollmentStore interface {
	ListByStudentDNI(ctx context.Context, dni string) ([]models.RemoteEnrollment, error)
	Create(ctx context.Context, enrollment models.NewEnrollment) (*models.RemoteEnrollment, error)
	Delete(ctx context.Context, id int64) error
}

// EnrollmentTarget identifies whose enrollments are reconciled. The backend
// filters by DNI but creates by numeric id.
type EnrollmentTarget struct {
	StudentID int64
	DNI       string
}

// EnrollmentPlan is the diff between the remote collection and the locally
// edited set.
type EnrollmentPlan struct {
	// Deletes are remote rows whose id is not retained locally, in remote order.
	Deletes []models.RemoteEnrollment
	// Creates are local entries without an id, in local order.
	Creates []models.Enrollment
	// Dropped are persisted entries edited locally. They are never sent.
	Dropped []models.Enrollment
}

// Empty reports whether the plan issues no mutation.
func (p EnrollmentPlan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Creates) == 0
}

// PlanEnrollments computes the mutations converging remote to local.
func PlanEnrollments(remote []models.RemoteEnrollment, local []models.Enrollment) EnrollmentPlan {
	retained := make(map[int64]struct{}, len(local))
	for _, entry := range local {
		if entry.Persisted() {
			retained[*entry.ID] = struct{}{}
		}
	}

	byID := make(map[int64]models.RemoteEnrollment, len(remote))
	var plan EnrollmentPlan
	for _, row := range remote {
		byID[row.ID] = row
		if _, ok := retained[row.ID]; !ok {
			plan.Deletes = append(plan.Deletes, row)
		}
	}

	for _, entry := range local {
		if !entry.Persisted() {
			plan.Creates = append(plan.Creates, entry)
			continue
		}
		row, ok := byID[*entry.ID]
		if ok && (row.Option.String() != entry.Option || row.Start != entry.Start) {
			plan.Dropped = append(plan.Dropped, entry)
		}
	}
	return plan
}

// Reconcile step kinds.
const (
	StepDelete = "delete"
	StepCreate = "create"
)

// ReconcileStep is one issued enrollment mutation.
type ReconcileStep struct {
	Kind         string `json:"kind"`
	EnrollmentID int64  `json:"enrollment_id,omitempty"`
	Option       string `json:"option"`
	Start        string `json:"start"`
}

func (s ReconcileStep) String() string {
	if s.Kind == StepDelete {
		return fmt.Sprintf("delete enrollment %d", s.EnrollmentID)
	}
	if s.EnrollmentID != 0 {
		return fmt.Sprintf("create enrollment %d (option %s from %s)", s.EnrollmentID, s.Option, s.Start)
	}
	return fmt.Sprintf("create enrollment (option %s from %s)", s.Option, s.Start)
}

// ReconcileResult summarises a completed pass.
type ReconcileResult struct {
	Deleted []int64                   `json:"deleted"`
	Created []models.RemoteEnrollment `json:"created"`
	Dropped []models.Enrollment       `json:"dropped"`
}

// ReconcileError aborts a pass. Committed steps stay committed.
type ReconcileError struct {
	Failed    ReconcileStep
	Committed []ReconcileStep
	Err       error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("%s failed after %d committed steps: %v", e.Failed, len(e.Committed), e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// Details lists the committed steps followed by the failed one.
func (e *ReconcileError) Details() []string {
	lines := make([]string, 0, len(e.Committed)+1)
	for _, step := range e.Committed {
		lines = append(lines, "committed: "+step.String())
	}
	return append(lines, "failed: "+e.Failed.String())
}

// EnrollmentReconciler syncs a student's edited enrollment set to the backend.
type EnrollmentReconciler struct {
	store   EnrollmentStore
	cache   *CacheService
	audit   *AuditService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewEnrollmentReconciler constructs an EnrollmentReconciler.
func NewEnrollmentReconciler(store EnrollmentStore, cache *CacheService, audit *AuditService, metrics *MetricsService, logger *zap.Logger) *EnrollmentReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentReconciler{store: store, cache: cache, audit: audit, metrics: metrics, logger: logger}
}

// List returns the student's remote enrollments, cached per student.
func (r *EnrollmentReconciler) List(ctx context.Context, target EnrollmentTarget) ([]models.RemoteEnrollment, bool, error) {
	rows, hit, err := readThrough(ctx, r.cache, EnrollmentsCacheKey(target.StudentID), func(ctx context.Context) ([]models.RemoteEnrollment, error) {
		rows, err := r.store.ListByStudentDNI(ctx, target.DNI)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []models.RemoteEnrollment{}
		}
		return rows, nil
	})
	if err != nil {
		return nil, false, translateBackendError(err, "failed to load enrollments")
	}
	return rows, hit, nil
}

// Reconcile re-fetches the remote collection, deletes what local no longer
// retains, then creates local entries without an id. Deletes run before
// creates and each batch is sequential. The first failure aborts with a
// *ReconcileError; nothing is retried or rolled back.
func (r *EnrollmentReconciler) Reconcile(ctx context.Context, target EnrollmentTarget, local []models.Enrollment) (*ReconcileResult, error) {
	remote, err := r.store.ListByStudentDNI(ctx, target.DNI)
	if err != nil {
		return nil, translateBackendError(err, "failed to load enrollments")
	}

	plan := PlanEnrollments(remote, local)
	for _, entry := range plan.Dropped {
		r.logger.Warn("edit to persisted enrollment ignored",
			zap.Int64("student_id", target.StudentID),
			zap.Int64("enrollment_id", *entry.ID),
			zap.String("option", entry.Option),
			zap.String("start", entry.Start),
		)
	}

	result := &ReconcileResult{
		Deleted: make([]int64, 0, len(plan.Deletes)),
		Created: make([]models.RemoteEnrollment, 0, len(plan.Creates)),
		Dropped: plan.Dropped,
	}
	if result.Dropped == nil {
		result.Dropped = []models.Enrollment{}
	}
	var committed []ReconcileStep

	for _, row := range plan.Deletes {
		step := ReconcileStep{Kind: StepDelete, EnrollmentID: row.ID, Option: row.Option.String(), Start: row.Start}
		err := r.store.Delete(ctx, row.ID)
		r.audit.Record(ctx, models.AuditActionEnrollmentDelete, "enrollments", strconv.FormatInt(row.ID, 10), step, err)
		r.metrics.RecordReconcileStep(StepDelete, err == nil)
		if err != nil {
			return result, r.abort(target, step, committed, err)
		}
		committed = append(committed, step)
		result.Deleted = append(result.Deleted, row.ID)
	}

	for _, entry := range plan.Creates {
		payload := models.NewEnrollment{Option: entry.Option, Start: entry.Start, Student: target.StudentID}
		step := ReconcileStep{Kind: StepCreate, Option: entry.Option, Start: entry.Start}
		created, err := r.store.Create(ctx, payload)
		resourceID := ""
		if created != nil {
			step.EnrollmentID = created.ID
			resourceID = strconv.FormatInt(created.ID, 10)
		}
		r.audit.Record(ctx, models.AuditActionEnrollmentCreate, "enrollments", resourceID, payload, err)
		r.metrics.RecordReconcileStep(StepCreate, err == nil)
		if err != nil {
			return result, r.abort(target, step, committed, err)
		}
		committed = append(committed, step)
		result.Created = append(result.Created, *created)
	}

	// Invalidate logs its own failures; a stale entry expires with its TTL.
	_ = r.cache.Invalidate(ctx, CacheKeyStudents, EnrollmentsCacheKey(target.StudentID))

	r.logger.Info("enrollments reconciled",
		zap.Int64("student_id", target.StudentID),
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("created", len(result.Created)),
	)
	return result, nil
}

func (r *EnrollmentReconciler) abort(target EnrollmentTarget, step ReconcileStep, committed []ReconcileStep, err error) error {
	r.logger.Error("enrollment reconciliation aborted",
		zap.Int64("student_id", target.StudentID),
		zap.String("step", step.String()),
		zap.Int("committed", len(committed)),
		zap.Error(err),
	)
	return &ReconcileError{Failed: step, Committed: committed, Err: err}
}
