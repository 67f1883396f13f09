package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := map[Kind]int{
		KindBadRequest:      http.StatusBadRequest,
		KindUnauthorized:    http.StatusUnauthorized,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusConflict,
		KindTooLarge:        http.StatusRequestEntityTooLarge,
		KindTooManyRequests: http.StatusTooManyRequests,
		KindInternal:        http.StatusInternalServerError,
	}

	for kind, status := range cases {
		assert.Equal(t, status, New(kind, "x", nil).Status())
	}
}

func TestFrom_WrappedError(t *testing.T) {
	base := Unauthorized("Invalid refresh token", errors.New("token is expired"))
	wrapped := fmt.Errorf("refresh: %w", base)

	got := From(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, KindUnauthorized, got.Kind)
	assert.Equal(t, "Invalid refresh token", got.Message)
	assert.True(t, Is(wrapped, KindUnauthorized))
}

func TestFrom_ForeignError(t *testing.T) {
	got := From(errors.New("connection refused"))

	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, "Internal server error", got.Message)
	assert.EqualError(t, got.Unwrap(), "connection refused")
}

func TestFrom_Nil(t *testing.T) {
	assert.Nil(t, From(nil))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "User not found", NotFound("User not found").Error())
	assert.Equal(t, "Failed: boom", Internal("Failed", errors.New("boom")).Error())
}

func TestWithDetails(t *testing.T) {
	e := BadRequest("Invalid input").WithDetails("email is invalid", "password too short")
	assert.Equal(t, []string{"email is invalid", "password too short"}, e.Details)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindConflict, KindOf(Conflict("taken")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}
