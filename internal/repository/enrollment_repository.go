package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/noah-isme/academy-admin/internal/models"
)

// EnrollmentRepository manages the remote enrollment collection.
type EnrollmentRepository struct {
	client *BackendClient
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(client *BackendClient) *EnrollmentRepository {
	return &EnrollmentRepository{client: client}
}

// ListByStudentDNI lists the enrollments of the student with the given
// national ID, in the order the backend returns them.
func (r *EnrollmentRepository) ListByStudentDNI(ctx context.Context, dni string) ([]models.RemoteEnrollment, error) {
	var rows []models.RemoteEnrollment
	query := url.Values{"student__DNI": []string{dni}}
	if err := r.client.Get(ctx, "/enrollments/", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create persists a new enrollment; the backend assigns its id.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment models.NewEnrollment) (*models.RemoteEnrollment, error) {
	var created models.RemoteEnrollment
	if err := r.client.Post(ctx, "/enrollments/", enrollment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Delete removes one enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, fmt.Sprintf("/enrollments/%d/", id))
}
