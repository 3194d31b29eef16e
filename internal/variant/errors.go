package variant

import (
	"fmt"
	"net/http"

	"github.com/denismitr/stockresizer/internal/media"
	"github.com/pkg/errors"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("image not found")
	ErrInternal   = errors.New("internal error")
)

// Error is the failure of a resolve call. StatusCode is one of 400, 404, 500,
// Message is safe to show to clients.
type Error struct {
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.StatusCode, e.Message, e.cause)
	}

	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrInternal:
		return e.StatusCode == http.StatusInternalServerError
	}

	return false
}

func badRequest(message string, cause error) *Error {
	return &Error{StatusCode: http.StatusBadRequest, Message: message, cause: cause}
}

func notFound(id media.ImageID, cause error) *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("Image %s not found.", id),
		cause:      cause,
	}
}

func internalError(id media.ImageID, cause error) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("Image %s could not be processed.", id),
		cause:      cause,
	}
}

func cancelled(id media.ImageID, cause error) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("Request for image %s was cancelled.", id),
		cause:      cause,
	}
}

// StatusCode extracts the status of err, anything that is not an *Error is a 500
func StatusCode(err error) int {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.StatusCode
	}

	return http.StatusInternalServerError
}
