// Package httpapi exposes a taskflow executor's job registry over a small
// read-only HTTP surface, the way this codebase's lineage exposes job status
// through a JSON API.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the JSON shape of an error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError the way every error response is shaped.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes a JSON error envelope.
func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondOK writes a 200 JSON payload.
func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
