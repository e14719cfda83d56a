package models

import "fmt"

// ClassOption is a class offered at a given weekly frequency.
type ClassOption struct {
	ID             int64  `json:"id"`
	Klass          int64  `json:"klass"`
	ClassName      string `json:"class_name"`
	WeeklySessions int    `json:"weekly_sessions"`
	MonthlyPrice   *int   `json:"monthly_price,omitempty"`
	BiannualPrice  *int   `json:"biannual_price,omitempty"`
}

// Label renders the option the way staff pick it in forms.
func (o ClassOption) Label() string {
	return fmt.Sprintf("%s · %d×sem", o.ClassName, o.WeeklySessions)
}
