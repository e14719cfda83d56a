package table

import (
	"bufio"
	"html/template"
	"io"
	"sort"
)

const (
	tableClass  = "min-w-full text-sm"
	headerClass = "border-b p-2 text-left font-semibold"
	cellClass   = "border-b p-2"
)

// RenderHTML writes the table markup to w. Text is escaped; Content produced
// by HeaderFunc or Cell is written as is.
func (t *Table[T]) RenderHTML(w io.Writer) error {
	grid := t.Build()
	container := t.RowProps.Container
	if container == nil {
		container = TableRow{}
	}
	rowClass := t.RowClass()

	bw := bufio.NewWriter(w)
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = bw.WriteString(p)
		}
	}

	write(`<table class="`, tableClass, `"><thead><tr>`)
	for _, h := range grid.Headers {
		write(`<th class="`, headerClass, `" data-column-id="`, esc(h.ID), `">`, string(h.Content), `</th>`)
	}
	write(`</tr></thead><tbody>`)

	for _, row := range grid.Rows {
		attrs := make(map[string]string, len(t.RowProps.Attrs)+4)
		for k, v := range t.RowProps.Attrs {
			attrs[k] = v
		}
		for k, v := range container.Attributes(row.ID, row.Index) {
			attrs[k] = v
		}
		attrs["data-key"] = row.ID
		if rowClass != "" {
			attrs["class"] = rowClass
		}

		el := container.Element()
		write("<", el)
		for _, k := range sortedKeys(attrs) {
			write(" ", esc(k), `="`, esc(attrs[k]), `"`)
		}
		write(">")
		for _, cell := range row.Cells {
			class := cellClass
			if cell.ClassName != "" {
				class += " " + cell.ClassName
			}
			write(`<td class="`, esc(class), `" data-cell-id="`, esc(cell.ID), `">`, string(cell.Content), `</td>`)
		}
		write("</", el, ">")
	}
	write(`</tbody></table>`)

	return bw.Flush()
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
