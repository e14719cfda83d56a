package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/academy-admin/internal/models"
)

// StudentRepository reads and writes students through the backend.
type StudentRepository struct {
	client *BackendClient
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(client *BackendClient) *StudentRepository {
	return &StudentRepository{client: client}
}

// List fetches the full student collection.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.client.Get(ctx, "/students/", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// FindByID fetches one student.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	if err := r.client.Get(ctx, fmt.Sprintf("/students/%d/", id), nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create posts a new student with its nested enrollments.
func (r *StudentRepository) Create(ctx context.Context, payload models.StudentCreate) (*models.Student, error) {
	if payload.Enrollments == nil {
		payload.Enrollments = []models.EnrollmentInput{}
	}
	var created models.Student
	if err := r.client.Post(ctx, "/students/", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update patches the student's own fields.
func (r *StudentRepository) Update(ctx context.Context, id int64, payload models.StudentPatch) (*models.Student, error) {
	var updated models.Student
	if err := r.client.Patch(ctx, fmt.Sprintf("/students/%d/", id), payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
