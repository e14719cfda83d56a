package table

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID    int
	Last  string
	First string
	Tags  []string
}

func people() []person {
	return []person{
		{ID: 7, Last: "García", First: "Ana", Tags: []string{"yoga"}},
		{ID: 3, Last: "Pérez", First: "Luis"},
		{ID: 9, Last: "Suárez", First: "Eva", Tags: []string{"tai chi", "yoga"}},
	}
}

func personColumns() []Column[person] {
	return []Column[person]{
		{Header: "Apellido", Accessor: func(p person) string { return p.Last }},
		{Header: "Nombre", Accessor: func(p person) string { return p.First }},
		{
			ID:       "tags",
			Header:   "Clases",
			Accessor: func(p person) string { return strings.Join(p.Tags, ", ") },
		},
		{
			ID: "actions",
			Cell: func(ctx CellContext[person]) template.HTML {
				return template.HTML(fmt.Sprintf(`<button data-id="%d">Modificar</button>`, ctx.Original.ID))
			},
		},
	}
}

func TestBuildRowCountAndOrder(t *testing.T) {
	tbl := Table[person]{Data: people(), Columns: personColumns()}
	grid := tbl.Build()

	require.Len(t, grid.Headers, 4)
	require.Len(t, grid.Rows, 3)
	for i, row := range grid.Rows {
		assert.Equal(t, tbl.Data[i].ID, row.Original.ID)
		assert.Equal(t, i, row.Index)
		assert.Len(t, row.Cells, 4)
	}
	assert.Equal(t, "Apellido", grid.Headers[0].ID)
	assert.Equal(t, "actions", grid.Headers[3].ID)
}

func TestBuildEmptyCollection(t *testing.T) {
	tbl := Table[person]{Columns: personColumns()}
	grid := tbl.Build()
	assert.Len(t, grid.Headers, 4)
	assert.Empty(t, grid.Rows)
}

func TestRowIdentityDefaultsToIndex(t *testing.T) {
	tbl := Table[person]{Data: people(), Columns: personColumns()}
	for i, row := range tbl.Build().Rows {
		assert.Equal(t, fmt.Sprint(i), row.ID)
	}
}

func TestRowIdentityUsesExtractor(t *testing.T) {
	var seen []int
	tbl := Table[person]{
		Data:    people(),
		Columns: personColumns(),
		RowID: func(p person, index int) string {
			seen = append(seen, index)
			return fmt.Sprintf("p-%d", p.ID)
		},
	}
	rows := tbl.Build().Rows
	assert.Equal(t, []string{"p-7", "p-3", "p-9"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, "p-3_Nombre", rows[1].Cells[1].ID)
}

func TestComputedColumns(t *testing.T) {
	tbl := Table[person]{Data: people(), Columns: personColumns()}
	rows := tbl.Build().Rows

	assert.Equal(t, "tai chi, yoga", rows[2].Cells[2].Text)
	assert.Equal(t, template.HTML(`<button data-id="3">Modificar</button>`), rows[1].Cells[3].Content)
	assert.Empty(t, rows[1].Cells[3].Text)
}

func TestColumnWithoutCellSpecRendersEmpty(t *testing.T) {
	tbl := Table[person]{Data: people()[:1], Columns: []Column[person]{{Header: "Vacío"}}}
	rows := tbl.Build().Rows
	require.Len(t, rows[0].Cells, 1)
	assert.Empty(t, rows[0].Cells[0].Content)
}

func TestClickFiresRowHandlerThenTableHandler(t *testing.T) {
	var calls []string
	tbl := Table[person]{
		Data:    people(),
		Columns: personColumns(),
		RowID:   func(p person, _ int) string { return fmt.Sprint(p.ID) },
		OnRowClick: func(r Row[person]) {
			calls = append(calls, "table:"+r.Original.Last)
		},
		RowProps: RowProps[person]{
			OnClick: func(r Row[person]) {
				calls = append(calls, "row:"+r.Original.Last)
			},
		},
	}

	row, ok := tbl.Click("3")
	require.True(t, ok)
	assert.Equal(t, "Pérez", row.Original.Last)
	assert.Equal(t, []string{"row:Pérez", "table:Pérez"}, calls)
}

func TestClickWithOnlyOneHandler(t *testing.T) {
	count := 0
	tbl := Table[person]{Data: people(), Columns: personColumns(), OnRowClick: func(Row[person]) { count++ }}

	_, ok := tbl.Click("1")
	assert.True(t, ok)
	assert.Equal(t, 1, count)

	_, ok = tbl.Click("42")
	assert.False(t, ok)
	assert.Equal(t, 1, count)
}

func TestClickDuplicateIdentityLastWriterWins(t *testing.T) {
	tbl := Table[person]{
		Data:    people(),
		Columns: personColumns(),
		RowID:   func(person, int) string { return "same" },
	}
	row, ok := tbl.Click("same")
	require.True(t, ok)
	assert.Equal(t, "Suárez", row.Original.Last)
}

func TestRowClassMerge(t *testing.T) {
	tbl := Table[person]{RowClassName: "cursor-pointer", RowProps: RowProps[person]{ClassName: "hover"}}
	assert.Equal(t, "cursor-pointer hover", tbl.RowClass())

	tbl.RowProps.ClassName = " "
	assert.Equal(t, "cursor-pointer", tbl.RowClass())

	tbl.RowClassName = ""
	assert.Empty(t, tbl.RowClass())
}

func TestRenderHTMLDefaultContainer(t *testing.T) {
	tbl := Table[person]{
		Data:    []person{{ID: 1, Last: "<b>Ortiz</b>", First: "Ana"}},
		Columns: personColumns(),
		RowID:   func(p person, _ int) string { return fmt.Sprint(p.ID) },
	}
	var buf bytes.Buffer
	require.NoError(t, tbl.RenderHTML(&buf))
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, "<tr data-key="))
	assert.Equal(t, 4, strings.Count(out, "<th "))
	assert.Equal(t, 4, strings.Count(out, "<td "))
	assert.Contains(t, out, "&lt;b&gt;Ortiz&lt;/b&gt;")
	assert.Contains(t, out, `<button data-id="1">Modificar</button>`)
}

type listItem struct{}

func (listItem) Element() string { return "li" }
func (listItem) Attributes(rowID string, index int) map[string]string {
	return map[string]string{"data-pos": fmt.Sprint(index)}
}

func TestRenderHTMLContainerOverridePreservesCells(t *testing.T) {
	tbl := Table[person]{
		Data:         people(),
		Columns:      personColumns(),
		RowClassName: "cursor-pointer",
		RowProps: RowProps[person]{
			Container: listItem{},
			Attrs:     map[string]string{"data-kind": "student"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, tbl.RenderHTML(&buf))
	out := buf.String()

	assert.Equal(t, 3, strings.Count(out, "<li "))
	assert.Equal(t, 3, strings.Count(out, "</li>"))
	assert.Equal(t, 12, strings.Count(out, "<td "))
	assert.Contains(t, out, `<li class="cursor-pointer" data-key="2" data-kind="student" data-pos="2">`)
}

func TestClickableRowAttributes(t *testing.T) {
	row := ClickableRow{
		Action: func(id string) string { return "/students/rows/" + id + "/click" },
		Target: "#detail",
	}
	attrs := row.Attributes("12", 0)
	assert.Equal(t, "tr", row.Element())
	assert.Equal(t, "12", attrs["data-row-id"])
	assert.Equal(t, "/students/rows/12/click", attrs["hx-post"])
	assert.Equal(t, "#detail", attrs["hx-target"])
}

func TestDatasetSkipsMarkupOnlyColumns(t *testing.T) {
	tbl := Table[person]{Data: people(), Columns: personColumns()}
	data := tbl.Dataset()

	assert.Equal(t, []string{"Apellido", "Nombre", "Clases"}, data.Headers)
	require.Len(t, data.Rows, 3)
	assert.Equal(t, []string{"García", "Ana", "yoga"}, data.Rows[0])
}
