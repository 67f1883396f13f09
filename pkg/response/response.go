// Package response writes the JSON envelope every endpoint answers with
package response

import (
	"bitwise74/vidhub-api/pkg/apperr"

	"github.com/gin-gonic/gin"
)

type Success struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

type Failure struct {
	Status    int      `json:"status"`
	Message   string   `json:"message"`
	Errors    []string `json:"errors"`
	RequestID string   `json:"requestID,omitempty"`
}

func OK(c *gin.Context, status int, data any, msg string) {
	c.JSON(status, Success{
		Status:  status,
		Data:    data,
		Message: msg,
	})
}

// Fail aborts the request with the failure envelope built from err
func Fail(c *gin.Context, err error) {
	e := apperr.From(err)
	status := e.Status()

	details := e.Details
	if details == nil {
		details = []string{}
	}

	c.AbortWithStatusJSON(status, Failure{
		Status:    status,
		Message:   e.Message,
		Errors:    details,
		RequestID: c.GetString("requestID"),
	})
}
