package user

import (
	"bitwise74/vidhub-api/internal"
	"bitwise74/vidhub-api/internal/service"
	"bitwise74/vidhub-api/pkg/apperr"
	"bitwise74/vidhub-api/pkg/middleware"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

const refreshCookie = "refreshToken"

func setSessionCookies(c *gin.Context, d *internal.Deps, pair *service.SessionPair) {
	host := d.Config.Host

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessCookie, pair.AccessToken, int(d.Sessions.AccessTTL().Seconds()), "/", host.Domain, host.SecureCookie, true)
	c.SetCookie(refreshCookie, pair.RefreshToken, int(d.Sessions.RefreshTTL().Seconds()), "/", host.Domain, host.SecureCookie, true)
}

func clearSessionCookies(c *gin.Context, d *internal.Deps) {
	host := d.Config.Host

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessCookie, "", -1, "/", host.Domain, host.SecureCookie, true)
	c.SetCookie(refreshCookie, "", -1, "/", host.Domain, host.SecureCookie, true)
}

// formFile returns the uploaded file for field, or nil if there isn't one
func formFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}

		return nil, apperr.New(apperr.KindBadRequest, "Invalid form data", err)
	}

	return fh, nil
}

func bindErr(err error) error {
	return apperr.New(apperr.KindBadRequest, "Invalid request body", err)
}
