package httpserver

import (
	"errors"
	"net/http"

	"customer-accounts/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	codeValidation      = "VALIDATION_ERROR"
	codeConflict        = "CONFLICT"
	codeNotFound        = "NOT_FOUND"
	codeForbidden       = "FORBIDDEN"
	codeUnauthenticated = "AUTHENTICATION_FAILED"
	codeInternal        = "INTERNAL"
)

// statusFor maps a domain outcome to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, codeValidation
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, codeConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, codeForbidden
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, codeUnauthenticated
	}
	return http.StatusInternalServerError, codeInternal
}

// writeError aborts the request with the status for err. Unexpected errors
// are recorded on the context for the access log and never echoed.
func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error", "code": code})
		return
	}

	body := gin.H{"error": err.Error(), "code": code}
	var derr *domain.Error
	if errors.As(err, &derr) && len(derr.Fields) > 0 {
		body["fields"] = derr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

func badJSON(c *gin.Context, err error) {
	_ = c.Error(err)
	writeError(c, domain.Validation("request body must be a valid JSON object", nil))
}
