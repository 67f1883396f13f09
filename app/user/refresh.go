package user

import (
	"bitwise74/vidhub-api/internal"
	"bitwise74/vidhub-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

type refreshBody struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

// UserRefreshToken takes the refresh token from the request body, falling
// back to its cookie. A token in the body wins over a stale cookie.
func UserRefreshToken(c *gin.Context, d *internal.Deps) {
	var data refreshBody
	// The body is optional, a bind error just means there's no token in it
	_ = c.ShouldBind(&data)

	token := data.RefreshToken
	if token == "" {
		token, _ = c.Cookie(refreshCookie)
	}

	pair, err := d.Sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		c.Error(err)
		return
	}

	setSessionCookies(c, d, pair)
	response.OK(c, http.StatusOK, pair, "Access token refreshed")
}
