package middleware

import (
	"bitwise74/vidhub-api/pkg/apperr"
	"bitwise74/vidhub-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewErrorMiddleware turns the last error attached with c.Error into the
// failure envelope. Internal errors are logged, their cause is never sent.
func NewErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		e := apperr.From(last.Err)
		requestID := c.GetString("requestID")

		if e.Kind == apperr.KindInternal {
			zap.L().Error(e.Message, zap.Error(e.Err), zap.String("requestID", requestID))
		} else {
			zap.L().Debug(e.Message, zap.Error(e.Err), zap.String("requestID", requestID))
		}

		response.Fail(c, e)
	}
}

// abort stops the chain and leaves err for the error middleware
func abort(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}
