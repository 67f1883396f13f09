package user

import (
	"bitwise74/vidhub-api/internal"
	"bitwise74/vidhub-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

func UserLogout(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if err := d.Sessions.Logout(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}

	clearSessionCookies(c, d)
	response.OK(c, http.StatusOK, gin.H{}, "User logged out")
}
