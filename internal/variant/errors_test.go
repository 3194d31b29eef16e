package variant

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	tt := []struct {
		err      *Error
		sentinel error
		status   int
	}{
		{err: badRequest("Invalid image parameters.", nil), sentinel: ErrBadRequest, status: http.StatusBadRequest},
		{err: notFound("fjord.jpg", nil), sentinel: ErrNotFound, status: http.StatusNotFound},
		{err: internalError("fjord.jpg", errors.New("disk full")), sentinel: ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tc := range tt {
		t.Run(fmt.Sprintf("%d", tc.status), func(t *testing.T) {
			wrapped := errors.Wrap(tc.err, "resolve")

			assert.True(t, errors.Is(wrapped, tc.sentinel))
			assert.Equal(t, tc.status, StatusCode(wrapped))

			for _, other := range []error{ErrBadRequest, ErrNotFound, ErrInternal} {
				if other != tc.sentinel {
					assert.False(t, errors.Is(tc.err, other))
				}
			}
		})
	}
}

func TestError_Messages(t *testing.T) {
	assert.Equal(t, "Image missing.jpg not found.", notFound("missing.jpg", nil).Message)

	internal := internalError("fjord.jpg", errors.New("permission denied"))
	assert.Equal(t, "Image fjord.jpg could not be processed.", internal.Message)
	assert.NotContains(t, internal.Message, "permission")
	assert.Contains(t, internal.Error(), "permission denied")
}

func TestError_Cancelled(t *testing.T) {
	err := cancelled("fjord.jpg", context.Canceled)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(err, ErrInternal))
}

func TestStatusCode_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}
