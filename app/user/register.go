package user

import (
	"bitwise74/vidhub-api/internal"
	"bitwise74/vidhub-api/internal/service"
	"bitwise74/vidhub-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserRegister expects a multipart form with the account fields, an avatar
// and optionally a coverImage
func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	avatar, err := formFile(c, "avatar")
	if err != nil {
		c.Error(err)
		return
	}

	cover, err := formFile(c, "coverImage")
	if err != nil {
		c.Error(err)
		return
	}

	user, err := d.Profiles.Register(c.Request.Context(), service.RegisterInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Fullname: c.PostForm("fullname"),
		Password: c.PostForm("password"),
	}, avatar, cover)
	if err != nil {
		c.Error(err)
		return
	}

	zap.L().Info("User registered", zap.String("userID", user.ID), zap.String("requestID", requestID))

	response.OK(c, http.StatusCreated, user, "User registered successfully")
}
