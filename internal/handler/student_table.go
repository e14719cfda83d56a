package handler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/internal/table"
)

const detailTarget = "#student-detail"

func yesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}

// studentColumns are shared by the directory page and the exports. Edits
// and payments go through the JSON API, so the page carries no action cells.
func studentColumns() []table.Column[models.Student] {
	return []table.Column[models.Student]{
		{Header: "DNI", Accessor: func(s models.Student) string { return s.DNI }},
		{Header: "Apellido", Accessor: func(s models.Student) string { return s.LastName }},
		{Header: "Nombre", Accessor: func(s models.Student) string { return s.FirstName }},
		{
			ID:       "classes",
			Header:   "Clases",
			Accessor: func(s models.Student) string { return strings.Join(s.EnrolledClasses, ", ") },
		},
		{
			ID:       "family",
			Header:   "Familia",
			Accessor: func(s models.Student) string { return yesNo(s.HasFamily) },
		},
	}
}

func studentRowID(s models.Student, _ int) string {
	return strconv.FormatInt(s.ID, 10)
}

// studentTable keys rows by student id. Clicking a row posts to the row
// click route carrying the active filters so the same rows are rebuilt.
func studentTable(students []models.Student, filter models.StudentFilter) *table.Table[models.Student] {
	query := url.Values{}
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}
	if filter.Family != "" && filter.Family != models.FamilyAll {
		query.Set("family", string(filter.Family))
	}
	return &table.Table[models.Student]{
		Data:         students,
		Columns:      studentColumns(),
		RowID:        studentRowID,
		RowClassName: "cursor-pointer",
		RowProps: table.RowProps[models.Student]{
			ClassName: "student-row",
			Container: table.ClickableRow{
				Action: func(rowID string) string {
					action := "/students/rows/" + url.PathEscape(rowID) + "/click"
					if encoded := query.Encode(); encoded != "" {
						action += "?" + encoded
					}
					return action
				},
				Target: detailTarget,
			},
		},
	}
}
