package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/pkg/response"
)

// ErrBadRequest marks malformed input detected at the boundary. It is the
// same kind services return for input they reject.
var ErrBadRequest = domain.ErrInvalidInput

type errorMapping struct {
	kind   error
	status int
	code   string
}

// Each error kind maps to its own status. A credential mismatch at login is
// 400 so that 401 always means "no valid token".
var errorMappings = []errorMapping{
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
	{domain.ErrUnauthorized, http.StatusBadRequest, "INVALID_CREDENTIALS"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrBadRequest, http.StatusBadRequest, "INVALID_INPUT"},
}

// StatusOf returns the HTTP status and error code for err.
func StatusOf(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// Fail records err on the context for the access log and writes the error
// envelope. Internal faults never leak their message.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status, code := StatusOf(err)
	msg := domain.Message(err)
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	} else if errors.Is(err, ErrBadRequest) && msg == domain.ErrInvalidInput.Error() {
		msg = "invalid request"
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="maisrole"`)
	}
	response.Error(c, status, code, msg, nil)
}

// FailValidation writes a 400 with per-field details.
func FailValidation(c *gin.Context, details map[string]string) {
	response.Error(c, http.StatusBadRequest, "INVALID_INPUT", "invalid payload", details)
}
