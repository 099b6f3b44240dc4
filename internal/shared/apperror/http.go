package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the boundary representation of any error: a stable code plus
// a human-readable message. Unknown errors collapse to INTERNAL_ERROR so no
// internal detail leaks to clients.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "Internal server error",
	}
}
