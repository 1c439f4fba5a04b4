// Package httpkit holds the gin glue shared by every module: auth, rate
// limiting, request ids and the JSON error envelope.
package httpkit

import (
	"errors"
	"net/http"

	"meal_planner_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

const msgInternalError = "internal error"

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// Error writes an error envelope.
func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK writes payload with 200.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// HandleError writes err and reports whether there was one. The status
// comes from the first *apperr.Error in the chain; wrapped causes are never
// sent to the client.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, msgInternalError, nil)
		return true
	}

	Error(c, appErr.HTTPStatus(), appErr.Message, appErr.Details)
	return true
}
