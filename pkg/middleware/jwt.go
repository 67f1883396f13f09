package middleware

import (
	"bitwise74/vidhub-api/internal/service"
	"strings"

	"github.com/gin-gonic/gin"
)

// AccessCookie is the cookie the access token is stored in
const AccessCookie = "accessToken"

// NewJWTMiddleware authenticates the request with the access token from the
// accessToken cookie or a bearer Authorization header. The user ends up in
// the context as "user" and their ID as "userID".
func NewJWTMiddleware(s *service.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.VerifyAccess(c.Request.Context(), accessToken(c))
		if err != nil {
			abort(c, err)
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessCookie); err == nil && token != "" {
		return token
	}

	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}
