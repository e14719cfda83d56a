package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

// newValidator returns validate (or a fresh instance) reporting fields by
// their JSON names.
func newValidator(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(jsonFieldName)
	return validate
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// validationError converts validator output into a VALIDATION_ERROR whose
// details read "field: message".
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	fields := make(appErrors.FieldErrors, len(verrs))
	for _, fe := range verrs {
		name := fieldPath(fe)
		fields[name] = append(fields[name], fieldMessage(fe))
	}
	return appErrors.Validation(fields, err)
}

// fieldPath drops the root struct name, e.g. "StudentRequest.enrollments[0].start"
// becomes "enrollments[0].start".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "number":
		return "must contain only digits"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return "is invalid"
	}
}
