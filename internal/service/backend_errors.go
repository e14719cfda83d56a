package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/noah-isme/academy-admin/internal/repository"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

// translateBackendError maps a repository failure onto the console's error
// taxonomy: field errors become VALIDATION_ERROR, a missing resource becomes
// NOT_FOUND, anything else is an UPSTREAM_ERROR carrying the raw payload.
func translateBackendError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var backendErr *repository.BackendError
	if !errors.As(err, &backendErr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return appErrors.Wrap(err, appErrors.ErrUpstream.Code, http.StatusGatewayTimeout, message)
		}
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, message)
	}

	switch {
	case backendErr.Status == http.StatusNotFound:
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, message)
	case backendErr.Status < http.StatusInternalServerError && len(backendErr.Fields) > 0:
		return appErrors.Validation(backendErr.Fields, err)
	case backendErr.Status < http.StatusInternalServerError:
		out := appErrors.Wrap(err, appErrors.ErrValidation.Code, backendErr.Status, message)
		return appErrors.WithDetails(out, rawDetails(backendErr))
	default:
		out := appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, message)
		return appErrors.WithDetails(out, rawDetails(backendErr))
	}
}

func rawDetails(err *repository.BackendError) []string {
	body := strings.TrimSpace(string(err.Body))
	if body == "" {
		return nil
	}
	return []string{body}
}
