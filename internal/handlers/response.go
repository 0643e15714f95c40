package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viorelmirea/provocations-backend/internal/repos"
	"github.com/viorelmirea/provocations-backend/internal/services"
)

// The wire contract is the site's existing one: 200 {"status":true,"data":...}
// on success, 400 {"status":false} on any failure. The error code field is a
// machine-readable addition; the boolean status stays authoritative.

type APIError struct {
	Code string `json:"code"`
}

type Envelope struct {
	Status bool      `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *APIError `json:"error,omitempty"`
}

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Status: true, Data: data})
}

func RespondFail(c *gin.Context, code string) {
	c.JSON(http.StatusBadRequest, Envelope{Status: false, Error: &APIError{Code: code}})
}

const (
	CodeInvalidRequest     = "invalid_request"
	CodeUnknownKind        = "unknown_kind"
	CodeUnknownConcern     = "unknown_concern"
	CodeNotAvailable       = "not_available"
	CodeGenerationFailed   = "generation_failed"
	CodeStorageUnavailable = "storage_unavailable"
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, services.ErrNotAvailable):
		return CodeNotAvailable
	case errors.Is(err, services.ErrGenerationFailed):
		return CodeGenerationFailed
	case errors.Is(err, repos.ErrStorageUnavailable), errors.Is(err, repos.ErrConstraintViolation):
		return CodeStorageUnavailable
	default:
		return CodeInvalidRequest
	}
}
