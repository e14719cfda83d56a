package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/middleware"
	"github.com/noah-isme/academy-admin/internal/service"
	"github.com/noah-isme/academy-admin/pkg/response"
)

// PaymentHandler exposes the monthly payment flow.
type PaymentHandler struct {
	students *service.StudentService
	payments *service.PaymentService
	now      func() time.Time
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(students *service.StudentService, payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{students: students, payments: payments, now: time.Now}
}

// Current godoc
// @Summary Current month payment of a student
// @Tags Payments
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/payment [get]
func (h *PaymentHandler) Current(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	payment, hit, err := h.payments.CurrentMonth(c.Request.Context(), student.DNI, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	respond(c, http.StatusOK, payment)
}

// Preview godoc
// @Summary Recompute the amount due for a payment method
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path int true "Payment ID"
// @Param payload body service.PaymentPreviewRequest true "Method"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/preview [post]
func (h *PaymentHandler) Preview(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.PaymentPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	payment, err := h.payments.Preview(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, payment)
}

// Finalize godoc
// @Summary Record a payment as paid today
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path int true "Payment ID"
// @Param payload body service.PaymentFinalizeRequest true "Method and amount paid"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/finalize [post]
func (h *PaymentHandler) Finalize(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.PaymentFinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	payment, err := h.payments.Finalize(c.Request.Context(), id, req, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, payment)
}
