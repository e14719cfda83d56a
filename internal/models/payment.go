package models

// PaymentMethod is how a payment is settled.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

// PaymentCycle is the billing period a payment obligation is computed for.
type PaymentCycle string

// Billing cycles known to the backend.
const (
	CycleMonthly  PaymentCycle = "M"
	CycleBiannual PaymentCycle = "S"
)

// Payment is one payment obligation row.
type Payment struct {
	ID         int64         `json:"id"`
	Enrollment int64         `json:"enrollment"`
	StudentDNI string        `json:"student_dni,omitempty"`
	ClassName  string        `json:"class_name,omitempty"`
	DueDate    string        `json:"due_date"`
	PaidOn     *string       `json:"paid_on"`
	Method     PaymentMethod `json:"method"`
	AmountDue  int           `json:"amount_due"`
	AmountPaid *int          `json:"amount_paid"`
	IsPaid     bool          `json:"is_paid"`
	IsLate     bool          `json:"is_late"`
}

// PaymentPatch is the PATCH /payments/<id>/ payload. Sending only Method
// asks the backend to recompute amount_due.
type PaymentPatch struct {
	Method     PaymentMethod `json:"method"`
	AmountPaid *int          `json:"amount_paid,omitempty"`
	PaidOn     string        `json:"paid_on,omitempty"`
}
