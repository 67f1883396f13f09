package user

import (
	"bitwise74/vidhub-api/internal"
	"bitwise74/vidhub-api/internal/model"
	"bitwise74/vidhub-api/internal/service"
	"bitwise74/vidhub-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

type updateAccountBody struct {
	Fullname string `json:"fullname" form:"fullname"`
	Email    string `json:"email" form:"email"`
}

func UserCurrent(c *gin.Context) {
	user := c.MustGet("user").(*model.User)
	response.OK(c, http.StatusOK, user, "Current user fetched successfully")
}

func UserUpdateAccount(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data updateAccountBody
	if err := c.ShouldBind(&data); err != nil {
		c.Error(bindErr(err))
		return
	}

	user, err := d.Profiles.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdate(data))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, http.StatusOK, user, "Account details updated successfully")
}

func UserUpdateAvatar(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	fh, err := formFile(c, "avatar")
	if err != nil {
		c.Error(err)
		return
	}

	user, err := d.Profiles.UpdateAvatar(c.Request.Context(), userID, fh)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, http.StatusOK, user, "Avatar updated successfully")
}

func UserUpdateCoverImage(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	fh, err := formFile(c, "coverImage")
	if err != nil {
		c.Error(err)
		return
	}

	user, err := d.Profiles.UpdateCoverImage(c.Request.Context(), userID, fh)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, http.StatusOK, user, "Cover image updated successfully")
}
