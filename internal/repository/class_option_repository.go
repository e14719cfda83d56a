package repository

import (
	"context"

	"github.com/noah-isme/academy-admin/internal/models"
)

// ClassOptionRepository reads the class offering catalogue.
type ClassOptionRepository struct {
	client *BackendClient
}

// NewClassOptionRepository constructs a ClassOptionRepository.
func NewClassOptionRepository(client *BackendClient) *ClassOptionRepository {
	return &ClassOptionRepository{client: client}
}

// List returns every class option.
func (r *ClassOptionRepository) List(ctx context.Context) ([]models.ClassOption, error) {
	var options []models.ClassOption
	if err := r.client.Get(ctx, "/class-options/", nil, &options); err != nil {
		return nil, err
	}
	return options, nil
}
