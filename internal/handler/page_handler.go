package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/internal/service"
	"github.com/noah-isme/academy-admin/internal/table"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() *template.Template {
	return template.Must(template.New("pages").Funcs(template.FuncMap{
		"yesno": yesNo,
		"join":  strings.Join,
	}).ParseFS(templateFS, "templates/*.html"))
}

// PageHandler renders the staff-facing HTML pages.
type PageHandler struct {
	students  *service.StudentService
	templates *template.Template
	logger    *zap.Logger
}

// NewPageHandler constructs a PageHandler.
func NewPageHandler(students *service.StudentService, log *zap.Logger) *PageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PageHandler{students: students, templates: parseTemplates(), logger: log}
}

type homePage struct {
	Title        string
	StudentCount int
}

type studentsPage struct {
	Title     string
	Query     string
	Family    string
	Count     int
	Table     template.HTML
	ExportURL string
}

func filterFromQuery(c *gin.Context) models.StudentFilter {
	return models.StudentFilter{
		Query:  c.Query("q"),
		Family: models.ParseFamilyFilter(c.Query("family")),
	}
}

// Home renders the landing page.
func (h *PageHandler) Home(c *gin.Context) {
	students, _, err := h.students.List(c.Request.Context(), models.StudentFilter{})
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "home", homePage{Title: "Inicio", StudentCount: len(students)})
}

// Students renders the filtered student table.
func (h *PageHandler) Students(c *gin.Context) {
	filter := filterFromQuery(c)
	students, _, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := studentTable(students, filter).RenderHTML(&buf); err != nil {
		h.renderError(c, err)
		return
	}

	export := url.Values{"format": []string{"csv"}}
	if filter.Query != "" {
		export.Set("q", filter.Query)
	}
	export.Set("family", string(filter.Family))

	h.render(c, http.StatusOK, "students", studentsPage{
		Title:     "Estudiantes",
		Query:     filter.Query,
		Family:    string(filter.Family),
		Count:     len(students),
		Table:     template.HTML(buf.String()),
		ExportURL: "/api/v1/students/export?" + export.Encode(),
	})
}

// RowClick dispatches a click on a student row and renders its detail
// fragment. The row-level handler selects the student, the table-level one
// logs the selection.
func (h *PageHandler) RowClick(c *gin.Context) {
	filter := filterFromQuery(c)
	students, _, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}

	var selected *models.Student
	tbl := studentTable(students, filter)
	tbl.RowProps.OnClick = func(row table.Row[models.Student]) {
		student := row.Original
		selected = &student
	}
	tbl.OnRowClick = func(row table.Row[models.Student]) {
		logger.ForRequest(h.logger, c).Debug("student row selected", zap.String("row_id", row.ID), zap.Int("index", row.Index))
	}

	if _, ok := tbl.Click(c.Param("rowID")); !ok || selected == nil {
		h.render(c, http.StatusNotFound, "row_missing", nil)
		return
	}
	h.render(c, http.StatusOK, "student_detail", selected)
}

func (h *PageHandler) render(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.ForRequest(h.logger, c).Error("template render failed", zap.String("template", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	c.Data(appErr.Status, "text/html; charset=utf-8", []byte("<p class=\"error\">"+template.HTMLEscapeString(appErr.Message)+"</p>"))
}
