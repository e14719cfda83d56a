package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin/internal/models"
)

func TestPaymentRepositoryListForMonth(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "30111222", q.Get("enrollment__student__DNI"))
		assert.Equal(t, "M", q.Get("cycle"))
		assert.Equal(t, "5", q.Get("due_date__month"))
		_, _ = w.Write([]byte(`[{"id":8,"due_date":"2024-05-10","method":"cash","amount_due":1000,"paid_on":null,"amount_paid":null}]`))
	})

	payments, err := NewPaymentRepository(client).ListForMonth(context.Background(), "30111222", models.CycleMonthly, 5)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Nil(t, payments[0].PaidOn)
	assert.Equal(t, 1000, payments[0].AmountDue)
}

func TestPaymentRepositoryPatchPreviewSendsOnlyMethod(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/8/", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"method": "transfer"}, body)
		_, _ = w.Write([]byte(`{"id":8,"method":"transfer","amount_due":1100}`))
	})

	payment, err := NewPaymentRepository(client).Patch(context.Background(), 8, models.PaymentPatch{Method: models.PaymentTransfer})
	require.NoError(t, err)
	assert.Equal(t, 1100, payment.AmountDue)
}

func TestClassOptionRepositoryList(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/class-options/", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":4,"klass":1,"class_name":"Yoga","weekly_sessions":2,"monthly_price":9000}]`))
	})

	options, err := NewClassOptionRepository(client).List(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "Yoga · 2×sem", options[0].Label())
	require.NotNil(t, options[0].MonthlyPrice)
	assert.Nil(t, options[0].BiannualPrice)
}
