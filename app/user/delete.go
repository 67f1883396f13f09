package user

import (
	"bitwise74/vidhub-api/internal"
	"bitwise74/vidhub-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type deleteBody struct {
	Username string `json:"username" form:"username"`
}

func UserDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data deleteBody
	if err := c.ShouldBind(&data); err != nil {
		c.Error(bindErr(err))
		return
	}

	if err := d.Profiles.DeleteUser(c.Request.Context(), data.Username); err != nil {
		c.Error(err)
		return
	}

	zap.L().Info("User deleted", zap.String("username", data.Username), zap.String("requestID", requestID))

	response.OK(c, http.StatusOK, gin.H{}, "User deleted successfully")
}
