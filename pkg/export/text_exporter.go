package export

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// TextExporter renders datasets as a fixed-width ASCII table.
type TextExporter struct{}

// NewTextExporter constructs a text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Render writes an optional title line followed by the table.
func (e *TextExporter) Render(data Dataset, title string) ([]byte, error) {
	if err := data.validate("text"); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if title != "" {
		fmt.Fprintln(buf, title)
	}

	table := tablewriter.NewWriter(buf)
	table.SetHeader(data.Headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(data.Rows)
	table.Render()

	return buf.Bytes(), nil
}

// ContentType implements Exporter.
func (e *TextExporter) ContentType() string { return "text/plain; charset=utf-8" }

// Extension implements Exporter.
func (e *TextExporter) Extension() string { return FormatText }
