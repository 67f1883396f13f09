package user

import (
	"bitwise74/vidhub-api/internal"
	"bitwise74/vidhub-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

type changePasswordBody struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

func UserChangePassword(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data changePasswordBody
	if err := c.ShouldBind(&data); err != nil {
		c.Error(bindErr(err))
		return
	}

	if err := d.Profiles.ChangePassword(c.Request.Context(), userID, data.OldPassword, data.NewPassword); err != nil {
		c.Error(err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{}, "Password changed successfully")
}
