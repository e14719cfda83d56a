package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/middleware"
	"github.com/noah-isme/academy-admin/internal/service"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/export"
	"github.com/noah-isme/academy-admin/pkg/response"
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param q query string false "Substring of the DNI or of \"last first\""
// @Param family query string false "all, yes or no"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, hit, err := h.students.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	meta := middleware.Meta(c)
	meta["count"] = len(students)
	response.JSON(c, http.StatusOK, students, meta)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
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
	respond(c, http.StatusOK, student)
}

// Enrollments godoc
// @Summary List a student's enrollments
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *StudentHandler) Enrollments(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, hit, err := h.students.Enrollments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	respond(c, http.StatusOK, rows)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.StudentRequest true "Student with nested enrollments"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student and reconcile enrollments
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.StudentRequest true "Student with the edited enrollment set"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /students/{id} [patch]
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.students.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// Export godoc
// @Summary Export the filtered student table
// @Tags Students
// @Produce octet-stream
// @Param format query string false "csv, pdf or txt"
// @Param q query string false "Search filter"
// @Param family query string false "all, yes or no"
// @Success 200 {file} binary
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	exporter, err := export.ForFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	filter := filterFromQuery(c)
	students, _, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := exporter.Render(studentTable(students, filter).Dataset(), "Estudiantes")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}
	filename := fmt.Sprintf("estudiantes-%s.%s", time.Now().Format("20060102"), exporter.Extension())
	response.Attachment(c, filename, exporter.ContentType(), payload)
}
