package models

import "strconv"

// Enrollment associates a student with one class option from a start date.
// A nil ID marks an entry that has not been persisted yet.
type Enrollment struct {
	ID     *int64 `json:"id,omitempty"`
	Option string `json:"option"`
	Start  string `json:"start"`
}

// Persisted reports whether the backend has assigned an id.
func (e Enrollment) Persisted() bool {
	return e.ID != nil
}

// RemoteEnrollment is an enrollment row as listed by the backend.
type RemoteEnrollment struct {
	ID             int64     `json:"id"`
	Student        int64     `json:"student"`
	StudentDNI     string    `json:"student_dni,omitempty"`
	Option         OptionRef `json:"option"`
	CourseName     string    `json:"course_name,omitempty"`
	WeeklySessions int       `json:"weekly_sessions,omitempty"`
	Start          string    `json:"start"`
}

// Local converts the remote row to the form representation.
func (r RemoteEnrollment) Local() Enrollment {
	id := r.ID
	return Enrollment{ID: &id, Option: r.Option.String(), Start: r.Start}
}

// NewEnrollment is the create payload for POST /enrollments/.
type NewEnrollment struct {
	Option  string `json:"option"`
	Start   string `json:"start"`
	Student int64  `json:"student"`
}

// OptionRef accepts the class-option foreign key as either a JSON number or
// a string; the backend emits numbers while form state carries strings.
type OptionRef string

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*o = OptionRef(s)
		return nil
	}
	if string(data) == "null" {
		*o = ""
		return nil
	}
	*o = OptionRef(data)
	return nil
}

func (o OptionRef) String() string {
	return string(o)
}

// EnrollmentInput is a nested enrollment in a student create payload.
type EnrollmentInput struct {
	Option string `json:"option"`
	Start  string `json:"start"`
}
