package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"volunteen/utils"
)

// Authenticate validates the Bearer token and puts the user id into the
// request context for handlers and per-user limiters.
func Authenticate(c *gin.Context) {
	token := c.GetHeader("Authorization")
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "You must be logged in."})
		return
	}

	userID, err := utils.VerifyToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "You must be logged in."})
		return
	}

	c.Set("userId", userID)
	c.Next()
}

// MaybeAuthenticate sets the user id when a valid token is present but never
// rejects the request. Used by endpoints that work logged out with reduced
// context, like the chatbot.
func MaybeAuthenticate(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token != "" {
		if userID, err := utils.VerifyToken(token); err == nil {
			c.Set("userId", userID)
		}
	}
	c.Next()
}
