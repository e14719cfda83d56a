package models

// Student is the academy backend's student row. Fields after Active are
// derived server-side and never computed by the console.
type Student struct {
	ID             int64  `json:"id"`
	DNI            string `json:"DNI"`
	CUIL           string `json:"cuil,omitempty"`
	DisplayCUIL    string `json:"display_cuil,omitempty"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	BirthDate      string `json:"birth_date"`
	Contact        string `json:"contact"`
	Active         bool   `json:"active"`
	IsFamilyMember bool   `json:"is_family_member"`

	EnrolledClasses []string `json:"enrolled_classes"`
	EnrolledCount   int      `json:"enrolled_count"`
	AmountDue       int      `json:"amount_due"`
	Debt            int      `json:"debt"`
	IsPaid          bool     `json:"is_paid"`
	IsLate          bool     `json:"is_late"`
	HasFamily       bool     `json:"has_family"`
	CreditBalance   int      `json:"credit_balance"`
}

// FullName returns "<last> <first>", the form staff search by.
func (s Student) FullName() string {
	return s.LastName + " " + s.FirstName
}

// TaxID prefers the raw CUIL and falls back to the formatted one.
func (s Student) TaxID() string {
	if s.CUIL != "" {
		return s.CUIL
	}
	return s.DisplayCUIL
}

// FamilyFilter narrows the directory by family membership.
type FamilyFilter string

// Family filter values.
const (
	FamilyAll FamilyFilter = "all"
	FamilyYes FamilyFilter = "yes"
	FamilyNo  FamilyFilter = "no"
)

// ParseFamilyFilter maps unknown input to FamilyAll.
func ParseFamilyFilter(raw string) FamilyFilter {
	switch FamilyFilter(raw) {
	case FamilyYes:
		return FamilyYes
	case FamilyNo:
		return FamilyNo
	default:
		return FamilyAll
	}
}

// StudentFilter holds the in-memory directory filters.
type StudentFilter struct {
	Query  string
	Family FamilyFilter
}

// StudentFields are the writable student attributes.
type StudentFields struct {
	DNI            string `json:"DNI"`
	CUIL           string `json:"cuil"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	BirthDate      string `json:"birth_date"`
	Contact        string `json:"contact"`
	IsFamilyMember bool   `json:"is_family_member"`
}

// StudentCreate is the POST /students/ payload; enrollments are nested.
type StudentCreate struct {
	StudentFields
	Enrollments []EnrollmentInput `json:"enrollments"`
}

// StudentPatch is the PATCH /students/<id>/ payload. Enrollments are never
// part of it; they are reconciled separately. A nil Active leaves the
// backend's value untouched.
type StudentPatch struct {
	StudentFields
	Active *bool `json:"active,omitempty"`
}
