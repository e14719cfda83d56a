package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/middleware"
	"github.com/noah-isme/academy-admin/internal/service"
	"github.com/noah-isme/academy-admin/pkg/response"
)

// ClassOptionHandler exposes the class offering catalogue.
type ClassOptionHandler struct {
	options *service.ClassOptionService
}

// NewClassOptionHandler constructs ClassOptionHandler.
func NewClassOptionHandler(options *service.ClassOptionService) *ClassOptionHandler {
	return &ClassOptionHandler{options: options}
}

type classOptionView struct {
	ID             int64  `json:"id"`
	Label          string `json:"label"`
	ClassName      string `json:"class_name"`
	WeeklySessions int    `json:"weekly_sessions"`
	MonthlyPrice   *int   `json:"monthly_price,omitempty"`
	BiannualPrice  *int   `json:"biannual_price,omitempty"`
}

// List godoc
// @Summary List class options
// @Tags ClassOptions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /class-options [get]
func (h *ClassOptionHandler) List(c *gin.Context) {
	options, hit, err := h.options.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	views := make([]classOptionView, 0, len(options))
	for _, opt := range options {
		views = append(views, classOptionView{
			ID:             opt.ID,
			Label:          opt.Label(),
			ClassName:      opt.ClassName,
			WeeklySessions: opt.WeeklySessions,
			MonthlyPrice:   opt.MonthlyPrice,
			BiannualPrice:  opt.BiannualPrice,
		})
	}
	middleware.SetCacheHit(c, hit)
	respond(c, http.StatusOK, views)
}
