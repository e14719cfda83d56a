package table

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/noah-isme/academy-admin/pkg/export"
)

// Column describes one column of a Table.
type Column[T any] struct {
	// ID identifies the column; defaults to Header, then to its position.
	ID string
	// Header is the plain header label.
	Header string
	// HeaderFunc overrides Header with rendered markup.
	HeaderFunc func() template.HTML
	// Accessor yields the cell's plain value. It may read a field or compute
	// a value from the whole record.
	Accessor func(T) string
	// Cell overrides Accessor with rendered markup built from the full row.
	Cell func(CellContext[T]) template.HTML
	// ClassName is applied to every cell of the column.
	ClassName string
}

// CellContext is handed to Column.Cell.
type CellContext[T any] struct {
	RowID    string
	Index    int
	ColumnID string
	Original T
}

// RowProps are per-row presentational overrides shared by every row.
type RowProps[T any] struct {
	ClassName string
	Attrs     map[string]string
	Container RowContainer
	// OnClick runs before the table-level OnRowClick.
	OnClick func(Row[T])
}

// Table is a generic, capability-driven data table.
type Table[T any] struct {
	Data    []T
	Columns []Column[T]
	// RowID extracts a stable row identity; the positional index is used
	// when nil. Identities must be unique within one render.
	RowID        func(record T, index int) string
	OnRowClick   func(Row[T])
	RowClassName string
	RowProps     RowProps[T]
}

// HeaderCell is one rendered header.
type HeaderCell struct {
	ID      string
	Text    string
	Content template.HTML
}

// Cell is one rendered body cell.
type Cell struct {
	ID        string
	ColumnID  string
	ClassName string
	Text      string
	Content   template.HTML
}

// Row is one rendered body row with its resolved record.
type Row[T any] struct {
	ID       string
	Index    int
	Original T
	Cells    []Cell
}

// Grid is the result of one render pass.
type Grid[T any] struct {
	Headers []HeaderCell
	Rows    []Row[T]
}

// Build runs one render pass.
func (t *Table[T]) Build() Grid[T] {
	ids := t.columnIDs()
	grid := Grid[T]{
		Headers: make([]HeaderCell, len(t.Columns)),
		Rows:    make([]Row[T], len(t.Data)),
	}

	for i, col := range t.Columns {
		h := HeaderCell{ID: ids[i], Text: col.Header}
		if col.HeaderFunc != nil {
			h.Content = col.HeaderFunc()
		} else {
			h.Content = template.HTML(template.HTMLEscapeString(col.Header))
		}
		grid.Headers[i] = h
	}

	for idx, record := range t.Data {
		rowID := t.rowID(record, idx)
		row := Row[T]{ID: rowID, Index: idx, Original: record, Cells: make([]Cell, len(t.Columns))}
		for i, col := range t.Columns {
			row.Cells[i] = renderCell(col, ids[i], rowID, idx, record)
		}
		grid.Rows[idx] = row
	}

	return grid
}

// Click resolves rowID against a fresh render and notifies the row-level
// handler first and the table-level handler second. It reports false when
// no row carries that identity.
func (t *Table[T]) Click(rowID string) (Row[T], bool) {
	grid := t.Build()

	var (
		found Row[T]
		ok    bool
	)
	for _, row := range grid.Rows {
		if row.ID == rowID {
			found, ok = row, true
		}
	}
	if !ok {
		return Row[T]{}, false
	}

	if t.RowProps.OnClick != nil {
		t.RowProps.OnClick(found)
	}
	if t.OnRowClick != nil {
		t.OnRowClick(found)
	}
	return found, true
}

// RowClass merges the table and row-props class names.
func (t *Table[T]) RowClass() string {
	parts := make([]string, 0, 2)
	for _, c := range []string{t.RowClassName, t.RowProps.ClassName} {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// Dataset flattens the grid into plain text for exporters. Markup-only
// columns (no Accessor) are left out.
func (t *Table[T]) Dataset() export.Dataset {
	var cols []int
	data := export.Dataset{}
	for i, col := range t.Columns {
		if col.Accessor == nil {
			continue
		}
		cols = append(cols, i)
		data.Headers = append(data.Headers, col.Header)
	}

	data.Rows = make([][]string, 0, len(t.Data))
	for _, record := range t.Data {
		line := make([]string, len(cols))
		for j, i := range cols {
			line[j] = t.Columns[i].Accessor(record)
		}
		data.Rows = append(data.Rows, line)
	}
	return data
}

func (t *Table[T]) rowID(record T, index int) string {
	if t.RowID != nil {
		return t.RowID(record, index)
	}
	return strconv.Itoa(index)
}

func (t *Table[T]) columnIDs() []string {
	ids := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		switch {
		case col.ID != "":
			ids[i] = col.ID
		case col.Header != "":
			ids[i] = col.Header
		default:
			ids[i] = strconv.Itoa(i)
		}
	}
	return ids
}

func renderCell[T any](col Column[T], colID, rowID string, index int, record T) Cell {
	cell := Cell{ID: rowID + "_" + colID, ColumnID: colID, ClassName: col.ClassName}
	if col.Accessor != nil {
		cell.Text = col.Accessor(record)
	}
	switch {
	case col.Cell != nil:
		cell.Content = col.Cell(CellContext[T]{RowID: rowID, Index: index, ColumnID: colID, Original: record})
	default:
		cell.Content = template.HTML(template.HTMLEscapeString(cell.Text))
	}
	return cell
}
