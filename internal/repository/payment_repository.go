package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/noah-isme/academy-admin/internal/models"
)

// PaymentRepository reads and settles payment rows.
type PaymentRepository struct {
	client *BackendClient
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(client *BackendClient) *PaymentRepository {
	return &PaymentRepository{client: client}
}

// ListForMonth lists the payments of one student for a billing cycle and due month.
func (r *PaymentRepository) ListForMonth(ctx context.Context, dni string, cycle models.PaymentCycle, month int) ([]models.Payment, error) {
	query := url.Values{}
	query.Set("enrollment__student__DNI", dni)
	query.Set("cycle", string(cycle))
	query.Set("due_date__month", strconv.Itoa(month))

	var payments []models.Payment
	if err := r.client.Get(ctx, "/payments/", query, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// Patch applies a partial update and returns the recomputed row.
func (r *PaymentRepository) Patch(ctx context.Context, id int64, patch models.PaymentPatch) (*models.Payment, error) {
	var payment models.Payment
	if err := r.client.Patch(ctx, fmt.Sprintf("/payments/%d/", id), patch, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
