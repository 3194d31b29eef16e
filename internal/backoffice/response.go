package backoffice

import (
	"net/http"

	"github.com/pkg/errors"
)

type errorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type listResponse struct {
	Data  VariantCollection `json:"data"`
	Total int               `json:"total"`
}

type purgeResponse struct {
	Removed int `json:"removed"`
}

func errorToResponse(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return unprocessableEntity(err)
	case errors.Is(err, ErrResourceNotFound):
		return notFound(err)
	default:
		return internalError(err)
	}
}

func internalError(err error) (int, errorResponse) {
	return http.StatusInternalServerError, errorResponse{Message: "Internal server error", Details: err.Error()}
}

func badRequest(err error) (int, errorResponse) {
	return http.StatusBadRequest, errorResponse{Message: err.Error()}
}

func notFound(err error) (int, errorResponse) {
	return http.StatusNotFound, errorResponse{Message: err.Error()}
}

func unprocessableEntity(err error) (int, errorResponse) {
	return http.StatusUnprocessableEntity, errorResponse{Message: err.Error()}
}
