package user

import (
	"bitwise74/vidhub-api/internal"
	"bitwise74/vidhub-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

func UserChannelProfile(c *gin.Context, d *internal.Deps) {
	profile, err := d.Channels.ChannelProfile(c.Request.Context(), c.Param("username"), c.GetString("userID"))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, http.StatusOK, profile, "User channel fetched successfully")
}

func UserWatchHistory(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	history, err := d.Channels.WatchHistory(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, http.StatusOK, history, "Watch history fetched successfully")
}
