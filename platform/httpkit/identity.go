package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserID returns the subject AuthRequired stored on the request, or "".
func UserID(c *gin.Context) string {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		return ""
	}
	userID, _ := value.(string)
	return userID
}

// RequireUserID returns the caller's user id. Anonymous requests are aborted
// with 401 and ok is false.
func RequireUserID(c *gin.Context) (userID string, ok bool) {
	userID = UserID(c)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID, true
}
