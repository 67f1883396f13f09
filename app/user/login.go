package user

import (
	"bitwise74/vidhub-api/internal"
	"bitwise74/vidhub-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		c.Error(bindErr(err))
		return
	}

	identifier := data.Username
	if identifier == "" {
		identifier = data.Email
	}

	res, err := d.Sessions.Login(c.Request.Context(), identifier, data.Password)
	if err != nil {
		c.Error(err)
		return
	}

	setSessionCookies(c, d, &res.SessionPair)

	zap.L().Debug("User logged in", zap.String("userID", res.User.ID), zap.String("requestID", requestID))

	response.OK(c, http.StatusOK, res, "User logged in successfully")
}
