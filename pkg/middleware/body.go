package middleware

import (
	"bitwise74/vidhub-api/pkg/apperr"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fast reject for legit requests
		if c.Request.ContentLength > maxBytes {
			abort(c, apperr.TooLarge("Request body size exceeds limit"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()

		// Handlers only see a failed read, swap it for a clearer error
		var maxErr *http.MaxBytesError
		if last := c.Errors.Last(); last != nil && errors.As(last.Err, &maxErr) {
			c.Error(apperr.TooLarge("Request body size exceeds limit"))
		}
	}
}
