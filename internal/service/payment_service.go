package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

const paidOnLayout = "2006-01-02"

type paymentRepository interface {
	ListForMonth(ctx context.Context, dni string, cycle models.PaymentCycle, month int) ([]models.Payment, error)
	Patch(ctx context.Context, id int64, patch models.PaymentPatch) (*models.Payment, error)
}

// PaymentPreviewRequest asks the backend to recompute the amount for a method.
type PaymentPreviewRequest struct {
	Method models.PaymentMethod `json:"method" validate:"required,oneof=cash transfer"`
}

// PaymentFinalizeRequest settles a payment.
type PaymentFinalizeRequest struct {
	Method     models.PaymentMethod `json:"method" validate:"required,oneof=cash transfer"`
	AmountPaid *int                 `json:"amount_paid" validate:"required,min=0"`
}

// PaymentService records monthly payments.
type PaymentService struct {
	repo      paymentRepository
	cache     *CacheService
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, cache *CacheService, audit *AuditService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, cache: cache, audit: audit, validator: newValidator(validate), logger: logger}
}

// CurrentMonth returns the monthly payment row due in now's month. Exactly one
// row is expected; extra rows are logged and the first one wins.
func (s *PaymentService) CurrentMonth(ctx context.Context, dni string, now time.Time) (*models.Payment, bool, error) {
	month := int(now.Month())
	payments, hit, err := readThrough(ctx, s.cache, PaymentsCacheKey(dni, month), func(ctx context.Context) ([]models.Payment, error) {
		rows, err := s.repo.ListForMonth(ctx, dni, models.CycleMonthly, month)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []models.Payment{}
		}
		return rows, nil
	})
	if err != nil {
		return nil, false, translateBackendError(err, "failed to load payment")
	}

	switch len(payments) {
	case 0:
		return nil, hit, appErrors.Clone(appErrors.ErrNotFound, "no payment due this month")
	case 1:
	default:
		s.logger.Warn("multiple monthly payments found, using the first",
			zap.String("dni", dni),
			zap.Int("month", month),
			zap.Int("count", len(payments)),
		)
	}
	payment := payments[0]
	return &payment, hit, nil
}

// Preview switches the payment method and returns the recomputed row.
func (s *PaymentService) Preview(ctx context.Context, id int64, req PaymentPreviewRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	patch := models.PaymentPatch{Method: req.Method}
	payment, err := s.repo.Patch(ctx, id, patch)
	s.audit.Record(ctx, models.AuditActionPaymentPreview, "payments", strconv.FormatInt(id, 10), patch, err)
	if err != nil {
		return nil, translateBackendError(err, "failed to preview payment")
	}
	// Invalidate logs its own failures.
	_ = s.cache.Invalidate(ctx, "payments:*")
	return payment, nil
}

// Finalize records the payment as paid on today's date.
func (s *PaymentService) Finalize(ctx context.Context, id int64, req PaymentFinalizeRequest, today time.Time) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	patch := models.PaymentPatch{
		Method:     req.Method,
		AmountPaid: req.AmountPaid,
		PaidOn:     today.Format(paidOnLayout),
	}
	payment, err := s.repo.Patch(ctx, id, patch)
	s.audit.Record(ctx, models.AuditActionPaymentFinalize, "payments", strconv.FormatInt(id, 10), patch, err)
	if err != nil {
		return nil, translateBackendError(err, "failed to record payment")
	}
	_ = s.cache.Invalidate(ctx, CacheKeyStudents, "payments:*")
	s.logger.Info("payment recorded", zap.Int64("payment_id", id), zap.Int("amount_paid", *req.AmountPaid))
	return payment, nil
}
