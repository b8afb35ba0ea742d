package errors

import (
	"errors"
	"net/http"
)

// MapToHTTPStatus converts a domain error into the status code exposed by
// the REST layer. Anything unknown is reported as a generic server error;
// the detail stays in the logs, not in the response.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrClubNotFound),
		errors.Is(err, ErrMessageNotFound),
		errors.Is(err, ErrActorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
