package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/internal/repository"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

type mockStudentRepo struct {
	mu        sync.Mutex
	students  []models.Student
	listCalls int
	created   []models.StudentCreate
	patched   []models.StudentPatch
	createErr error
	updateErr error
	// updateGate, when set, blocks Update until closed.
	updateGate chan struct{}
	updating   chan struct{}
}

func (m *mockStudentRepo) List(context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return append([]models.Student(nil), m.students...), nil
}

func (m *mockStudentRepo) FindByID(_ context.Context, id int64) (*models.Student, error) {
	for _, st := range m.students {
		if st.ID == id {
			st := st
			return &st, nil
		}
	}
	return nil, &repository.BackendError{Method: http.MethodGet, Path: "/students/", Status: http.StatusNotFound}
}

func (m *mockStudentRepo) Create(_ context.Context, payload models.StudentCreate) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, payload)
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.Student{ID: 42, DNI: payload.DNI, FirstName: payload.FirstName, LastName: payload.LastName}, nil
}

func (m *mockStudentRepo) Update(_ context.Context, id int64, payload models.StudentPatch) (*models.Student, error) {
	if m.updating != nil {
		m.updating <- struct{}{}
	}
	if m.updateGate != nil {
		<-m.updateGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patched = append(m.patched, payload)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	student := &models.Student{ID: id, DNI: payload.DNI}
	if payload.Active != nil {
		student.Active = *payload.Active
	}
	return student, nil
}

func directoryStudents() []models.Student {
	return []models.Student{
		{ID: 1, DNI: "30111222", FirstName: "Ana", LastName: "García", HasFamily: true},
		{ID: 2, DNI: "28123456", FirstName: "Luis", LastName: "Pérez"},
		{ID: 3, DNI: "41222333", FirstName: "Eva", LastName: "Suárez", HasFamily: true},
	}
}

func validRequest() StudentRequest {
	return StudentRequest{
		DNI:       "30111222",
		CUIL:      "27301112224",
		FirstName: "Ana",
		LastName:  "García",
		BirthDate: "1990-04-12",
		Enrollments: []EnrollmentRequest{
			{Option: "4", Start: "2024-03-01"},
		},
	}
}

func newStudentServiceForTest(repo *mockStudentRepo, store *enrollmentStoreFake, cache *CacheService) *StudentService {
	if store == nil {
		store = newEnrollmentStoreFake()
	}
	reconciler := NewEnrollmentReconciler(store, cache, nil, nil, nil)
	return NewStudentService(repo, reconciler, cache, nil, nil, nil)
}

func TestFilterStudentsByName(t *testing.T) {
	rows := FilterStudents(directoryStudents(), models.StudentFilter{Query: "Gar", Family: models.FamilyAll})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID)
}

func TestFilterStudentsByDNIAndFamily(t *testing.T) {
	students := directoryStudents()

	rows := FilterStudents(students, models.StudentFilter{Query: "222"})
	assert.Len(t, rows, 2)

	rows = FilterStudents(students, models.StudentFilter{Query: "222", Family: models.FamilyNo})
	assert.Empty(t, rows)

	rows = FilterStudents(students, models.StudentFilter{Family: models.FamilyYes})
	require.Len(t, rows, 2)
	assert.Equal(t, []int64{1, 3}, []int64{rows[0].ID, rows[1].ID})

	rows = FilterStudents(students, models.StudentFilter{Query: "pérez luis"})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].ID)
}

func TestStudentServiceListUsesCache(t *testing.T) {
	repo := &mockStudentRepo{students: directoryStudents()}
	cache := NewCacheService(newMemoryCache(), nil, 0, nil, true)
	svc := newStudentServiceForTest(repo, nil, cache)

	rows, hit, err := svc.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, rows, 3)

	rows, hit, err = svc.List(context.Background(), models.StudentFilter{Query: "Eva"})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, repo.listCalls)
}

func TestStudentServiceCreateRejectsNonNumericDNI(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := newStudentServiceForTest(repo, nil, nil)
	req := validRequest()
	req.DNI = "12A45"

	_, err := svc.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, []string{"DNI: must contain only digits"}, appErr.Details)
	assert.Empty(t, repo.created)
}

func TestStudentServiceCUILLength(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := newStudentServiceForTest(repo, nil, nil)

	req := validRequest()
	req.CUIL = "1234567890"
	_, err := svc.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"cuil: must be exactly 11 characters long"}, appErr.Details)
	assert.Empty(t, repo.created)

	req.CUIL = "12345678901"
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	require.Len(t, repo.created, 1)
	assert.Equal(t, []models.EnrollmentInput{{Option: "4", Start: "2024-03-01"}}, repo.created[0].Enrollments)
}

func TestStudentServiceCreateReportsNestedEnrollmentErrors(t *testing.T) {
	svc := newStudentServiceForTest(&mockStudentRepo{}, nil, nil)
	req := validRequest()
	req.Enrollments = append(req.Enrollments, EnrollmentRequest{Option: "", Start: "01/02/2024"})

	_, err := svc.Create(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{
		"enrollments[1].option: this field is required",
		"enrollments[1].start: must be a date in YYYY-MM-DD format",
	}, appErr.Details)
}

func TestStudentServiceCreateFlattensServerFieldErrors(t *testing.T) {
	body := json.RawMessage(`{"DNI":["exists"],"cuil":["bad","len"]}`)
	repo := &mockStudentRepo{createErr: &repository.BackendError{
		Method: http.MethodPost,
		Path:   "/students/",
		Status: http.StatusBadRequest,
		Body:   body,
		Fields: appErrors.FieldErrors{"DNI": {"exists"}, "cuil": {"bad", "len"}},
	}}
	svc := newStudentServiceForTest(repo, nil, nil)

	_, err := svc.Create(context.Background(), validRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "DNI: exists\ncuil: bad len", appErr.Message)
}

func TestStudentServiceCreateInvalidatesStudents(t *testing.T) {
	cacheRepo := newMemoryCache()
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	require.NoError(t, cache.Set(context.Background(), CacheKeyStudents, []int{1}, 0))
	svc := newStudentServiceForTest(&mockStudentRepo{}, nil, cache)

	_, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.False(t, cacheRepo.has(CacheKeyStudents))
}

func TestStudentServiceUpdateReconcilesEnrollments(t *testing.T) {
	repo := &mockStudentRepo{}
	store := newEnrollmentStoreFake(remoteRow(1, "4", "2024-01-01"), remoteRow(2, "5", "2024-02-01"))
	svc := newStudentServiceForTest(repo, store, nil)

	keep := int64(1)
	req := validRequest()
	req.Enrollments = []EnrollmentRequest{{ID: &keep, Option: "4", Start: "2024-01-01"}, {Option: "6", Start: "2024-04-01"}}
	inactive := false
	req.Active = &inactive

	result, err := svc.Update(context.Background(), 7, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"delete 2", "create 6 2024-04-01"}, store.ops)
	assert.Equal(t, []int64{2}, result.Enrollments.Deleted)
	require.Len(t, repo.patched, 1)
	require.NotNil(t, repo.patched[0].Active)
	assert.False(t, *repo.patched[0].Active)
	assert.Equal(t, int64(7), store.rows[len(store.rows)-1].Student)
}

func TestStudentServiceUpdateWithoutActiveLeavesFlagAlone(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := newStudentServiceForTest(repo, newEnrollmentStoreFake(), nil)

	req := validRequest()
	req.Active = nil
	_, err := svc.Update(context.Background(), 9, req)
	require.NoError(t, err)

	require.Len(t, repo.patched, 1)
	assert.Nil(t, repo.patched[0].Active)
	raw, err := json.Marshal(repo.patched[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"active"`)
}

func TestStudentServiceUpdatePatchFailureSkipsReconcile(t *testing.T) {
	repo := &mockStudentRepo{updateErr: errors.New("connection reset")}
	store := newEnrollmentStoreFake(remoteRow(1, "4", "2024-01-01"))
	svc := newStudentServiceForTest(repo, store, nil)

	_, err := svc.Update(context.Background(), 7, validRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Zero(t, store.listCalls)
}

func TestStudentServiceUpdateSurfacesPartialState(t *testing.T) {
	store := newEnrollmentStoreFake(remoteRow(1, "4", "2024-01-01"), remoteRow(2, "5", "2024-02-01"))
	store.failDelete = map[int64]error{2: &repository.BackendError{
		Method: http.MethodDelete,
		Path:   "/enrollments/2/",
		Status: http.StatusInternalServerError,
		Body:   json.RawMessage(`{"detail":"boom"}`),
	}}
	svc := newStudentServiceForTest(&mockStudentRepo{}, store, nil)
	req := validRequest()
	req.Enrollments = nil

	_, err := svc.Update(context.Background(), 7, req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, []string{
		`{"detail":"boom"}`,
		"committed: delete enrollment 1",
		"failed: delete enrollment 2",
	}, appErr.Details)

	var recErr *ReconcileError
	assert.ErrorAs(t, err, &recErr)
}

func TestStudentServiceRejectsConcurrentSave(t *testing.T) {
	repo := &mockStudentRepo{updateGate: make(chan struct{}), updating: make(chan struct{}, 1)}
	svc := newStudentServiceForTest(repo, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Update(context.Background(), 7, validRequest())
		done <- err
	}()
	<-repo.updating

	_, err := svc.Update(context.Background(), 7, validRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	close(repo.updateGate)
	require.NoError(t, <-done)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc := newStudentServiceForTest(&mockStudentRepo{students: directoryStudents()}, nil, nil)

	_, err := svc.Get(context.Background(), 99)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestStudentServiceEnrollments(t *testing.T) {
	store := newEnrollmentStoreFake(remoteRow(1, "4", "2024-01-01"))
	svc := newStudentServiceForTest(&mockStudentRepo{students: directoryStudents()}, store, nil)

	rows, hit, err := svc.Enrollments(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, rows, 1)
}
