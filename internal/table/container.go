package table

// RowContainer decides which element wraps a row's cells and what extra
// attributes it carries. The table still writes exactly one cell per column
// inside whatever container is injected.
type RowContainer interface {
	Element() string
	Attributes(rowID string, index int) map[string]string
}

// TableRow is the default container: a plain <tr>.
type TableRow struct{}

// Element implements RowContainer.
func (TableRow) Element() string { return "tr" }

// Attributes implements RowContainer.
func (TableRow) Attributes(string, int) map[string]string { return nil }

// ClickableRow is a <tr> that posts its identity to Action when clicked.
// Target names the element that receives the response fragment.
type ClickableRow struct {
	Action func(rowID string) string
	Target string
}

// Element implements RowContainer.
func (ClickableRow) Element() string { return "tr" }

// Attributes implements RowContainer.
func (r ClickableRow) Attributes(rowID string, _ int) map[string]string {
	attrs := map[string]string{
		"data-row-id": rowID,
		"role":        "button",
		"tabindex":    "0",
	}
	if r.Action != nil {
		attrs["hx-post"] = r.Action(rowID)
	}
	if r.Target != "" {
		attrs["hx-target"] = r.Target
	}
	return attrs
}
