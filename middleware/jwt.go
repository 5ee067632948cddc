package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docchat-io/docchat-be/types"
	"github.com/docchat-io/docchat-be/utils"
)

const userIDKey = "user_id"

// AuthMiddleware validates the Bearer token and stores the caller's user id
// in the gin context.
func AuthMiddleware(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		abortUnauthorized(c, "Authorization header is required")
		return
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		abortUnauthorized(c, "Authorization header format must be Bearer {token}")
		return
	}

	claims, err := utils.ParseUserToken(parts[1])
	if err != nil {
		abortUnauthorized(c, "Invalid or expired token")
		return
	}

	c.Set(userIDKey, claims.UserID)
	c.Next()
}

// UserID returns the authenticated caller's id set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
		Status:  "error",
		Code:    types.ErrorCode(types.ErrUnauthorized),
		Message: message,
	})
}
