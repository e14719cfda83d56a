package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, payload models.StudentCreate) (*models.Student, error)
	Update(ctx context.Context, id int64, payload models.StudentPatch) (*models.Student, error)
}

type enrollmentSync interface {
	List(ctx context.Context, target EnrollmentTarget) ([]models.RemoteEnrollment, bool, error)
	Reconcile(ctx context.Context, target EnrollmentTarget, local []models.Enrollment) (*ReconcileResult, error)
}

// EnrollmentRequest is one entry of the edited enrollment set. A missing id
// marks an entry to create.
type EnrollmentRequest struct {
	ID     *int64 `json:"id,omitempty"`
	Option string `json:"option" validate:"required,number"`
	Start  string `json:"start" validate:"required,datetime=2006-01-02"`
}

// StudentRequest holds the student form for both create and update.
type StudentRequest struct {
	DNI            string              `json:"DNI" validate:"required,number"`
	CUIL           string              `json:"cuil" validate:"required,len=11,number"`
	FirstName      string              `json:"first_name" validate:"required"`
	LastName       string              `json:"last_name" validate:"required"`
	BirthDate      string              `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Contact        string              `json:"contact"`
	IsFamilyMember bool                `json:"is_family_member"`
	Active         *bool               `json:"active,omitempty"`
	Enrollments    []EnrollmentRequest `json:"enrollments" validate:"dive"`
}

func (r StudentRequest) fields() models.StudentFields {
	return models.StudentFields{
		DNI:            r.DNI,
		CUIL:           r.CUIL,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		BirthDate:      r.BirthDate,
		Contact:        r.Contact,
		IsFamilyMember: r.IsFamilyMember,
	}
}

func (r StudentRequest) localEnrollments() []models.Enrollment {
	out := make([]models.Enrollment, 0, len(r.Enrollments))
	for _, e := range r.Enrollments {
		out = append(out, models.Enrollment{ID: e.ID, Option: e.Option, Start: e.Start})
	}
	return out
}

// StudentUpdateResult is the outcome of a full student save.
type StudentUpdateResult struct {
	Student     *models.Student  `json:"student"`
	Enrollments *ReconcileResult `json:"enrollments"`
}

// StudentService handles the student directory and student saves.
type StudentService struct {
	repo        studentRepository
	enrollments enrollmentSync
	cache       *CacheService
	audit       *AuditService
	validator   *validator.Validate
	logger      *zap.Logger
	guard       *saveGuard
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, enrollments enrollmentSync, cache *CacheService, audit *AuditService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:        repo,
		enrollments: enrollments,
		cache:       cache,
		audit:       audit,
		validator:   newValidator(validate),
		logger:      logger,
		guard:       newSaveGuard(),
	}
}

// List fetches every student and filters in memory. The bool reports a cache hit.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, bool, error) {
	students, hit, err := readThrough(ctx, s.cache, CacheKeyStudents, func(ctx context.Context) ([]models.Student, error) {
		students, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if students == nil {
			students = []models.Student{}
		}
		return students, nil
	})
	if err != nil {
		return nil, false, translateBackendError(err, "failed to list students")
	}
	return FilterStudents(students, filter), hit, nil
}

// FilterStudents keeps students whose DNI contains the raw query or whose
// "<last> <first>" contains it case-insensitively, then applies the family
// filter. Order is preserved.
func FilterStudents(students []models.Student, filter models.StudentFilter) []models.Student {
	norm := strings.ToLower(filter.Query)
	out := make([]models.Student, 0, len(students))
	for _, st := range students {
		textMatch := strings.Contains(st.DNI, filter.Query) || strings.Contains(strings.ToLower(st.FullName()), norm)
		if !textMatch {
			continue
		}
		switch filter.Family {
		case models.FamilyYes:
			if !st.HasFamily {
				continue
			}
		case models.FamilyNo:
			if st.HasFamily {
				continue
			}
		}
		out = append(out, st)
	}
	return out
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateBackendError(err, "student not found")
	}
	return student, nil
}

// Enrollments lists the student's enrollments.
func (s *StudentService) Enrollments(ctx context.Context, id int64) ([]models.RemoteEnrollment, bool, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return s.enrollments.List(ctx, EnrollmentTarget{StudentID: student.ID, DNI: student.DNI})
}

// Create validates the form locally and posts the student with its nested
// enrollments.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	payload := models.StudentCreate{StudentFields: req.fields(), Enrollments: make([]models.EnrollmentInput, 0, len(req.Enrollments))}
	for _, e := range req.Enrollments {
		payload.Enrollments = append(payload.Enrollments, models.EnrollmentInput{Option: e.Option, Start: e.Start})
	}

	created, err := s.repo.Create(ctx, payload)
	resourceID := ""
	if created != nil {
		resourceID = strconv.FormatInt(created.ID, 10)
	}
	s.audit.Record(ctx, models.AuditActionStudentCreate, "students", resourceID, payload, err)
	if err != nil {
		return nil, translateBackendError(err, "failed to create student")
	}

	// Invalidate logs its own failures; a stale entry expires with its TTL.
	_ = s.cache.Invalidate(ctx, CacheKeyStudents)
	s.logger.Info("student created", zap.Int64("student_id", created.ID))
	return created, nil
}

// Update validates the form, patches the student and reconciles its
// enrollments. Only one save per student may run at a time.
func (s *StudentService) Update(ctx context.Context, id int64, req StudentRequest) (*StudentUpdateResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if !s.guard.acquire(id) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a save for this student is already in progress")
	}
	defer s.guard.release(id)

	patch := models.StudentPatch{StudentFields: req.fields(), Active: req.Active}
	updated, err := s.repo.Update(ctx, id, patch)
	s.audit.Record(ctx, models.AuditActionStudentUpdate, "students", strconv.FormatInt(id, 10), patch, err)
	if err != nil {
		return nil, translateBackendError(err, "failed to update student")
	}

	dni := updated.DNI
	if dni == "" {
		dni = req.DNI
	}
	result, err := s.enrollments.Reconcile(ctx, EnrollmentTarget{StudentID: id, DNI: dni}, req.localEnrollments())
	if err != nil {
		return nil, reconcileFailure(err)
	}

	return &StudentUpdateResult{Student: updated, Enrollments: result}, nil
}

// reconcileFailure surfaces the partial state of an aborted pass next to the
// backend's own error details.
func reconcileFailure(err error) error {
	var recErr *ReconcileError
	if !errors.As(err, &recErr) {
		return translateBackendError(err, "failed to save enrollments")
	}
	appErr := appErrors.FromError(translateBackendError(recErr.Err, "failed to save enrollments"))
	details := append(append([]string{}, appErr.Details...), recErr.Details()...)
	out := appErrors.WithDetails(appErr, details)
	out.Err = err
	return out
}

// saveGuard tracks students with a save in flight.
type saveGuard struct {
	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func newSaveGuard() *saveGuard {
	return &saveGuard{inFlight: make(map[int64]struct{})}
}

func (g *saveGuard) acquire(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[id]; busy {
		return false
	}
	g.inFlight[id] = struct{}{}
	return true
}

func (g *saveGuard) release(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, id)
}
