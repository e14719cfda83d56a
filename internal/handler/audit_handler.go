package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/service"
	"github.com/noah-isme/academy-admin/pkg/response"
)

// AuditHandler exposes the console's mutation history.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// History godoc
// @Summary Mutations issued for one resource
// @Tags Audit
// @Produce json
// @Param resource query string true "students, enrollments or payments"
// @Param resource_id query string true "Resource ID"
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.audit.History(c.Request.Context(), c.Query("resource"), c.Query("resource_id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, entries)
}
