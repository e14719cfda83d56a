package export

import (
	"fmt"
	"strings"
)

// Dataset defines tabular export content. Every row has one value per header.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// Exporter renders a dataset into a downloadable document.
type Exporter interface {
	Render(data Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// Supported export formats.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatText = "txt"
)

// ForFormat returns the exporter registered for format.
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV, "":
		return NewCSVExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	case FormatText, "text":
		return NewTextExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (d Dataset) validate(kind string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", kind)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("%s row %d has %d values, want %d", kind, i, len(row), len(d.Headers))
		}
	}
	return nil
}
