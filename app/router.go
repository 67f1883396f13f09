// Package app wires the dependencies and the HTTP routes together
package app

import (
	"bitwise74/vidhub-api/app/root"
	"bitwise74/vidhub-api/app/user"
	a "bitwise74/vidhub-api/aws"
	"bitwise74/vidhub-api/cloudflare"
	"bitwise74/vidhub-api/config"
	"bitwise74/vidhub-api/db"
	"bitwise74/vidhub-api/internal"
	"bitwise74/vidhub-api/internal/model"
	"bitwise74/vidhub-api/internal/service"
	"bitwise74/vidhub-api/pkg/apperr"
	"bitwise74/vidhub-api/pkg/middleware"
	"bitwise74/vidhub-api/pkg/security"
	"context"
	"fmt"
	"strings"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const channelCacheTTL = 30 * time.Second

// NewDeps connects to the database and the media host and builds the
// services on top of them
func NewDeps(ctx context.Context, cfg *config.Config) (*internal.Deps, error) {
	conn, err := db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	var s3 *a.S3Client
	switch cfg.Storage.Type {
	case "r2":
		s3, err = cloudflare.NewR2(ctx, cfg.Storage)
	default:
		s3, err = a.NewS3(ctx, cfg.Storage)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}

	return NewDepsWith(cfg, conn, service.NewS3Host(s3, cfg.Storage.UploadTimeout)), nil
}

// NewDepsWith builds the services on an existing database and media host
func NewDepsWith(cfg *config.Config, conn *gorm.DB, media service.MediaHost) *internal.Deps {
	argon := security.New()

	return &internal.Deps{
		DB:       conn,
		Config:   cfg,
		Sessions: service.NewSessions(conn, argon, cfg.JWT),
		Profiles: service.NewProfiles(conn, argon, media, cfg.Upload.MaxImageSize),
		Channels: service.NewChannels(conn),
	}
}

// NewRouter registers every route. Background work tied to the router stops
// when ctx is cancelled.
func NewRouter(ctx context.Context, d *internal.Deps) *gin.Engine {
	cfg := d.Config
	store := persist.NewMemoryStore(time.Minute)

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.Host.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		middleware.NewErrorMiddleware(),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 2*cfg.Upload.MaxImageSize + 1<<20

	router.NoRoute(func(c *gin.Context) {
		c.Error(apperr.NotFound("Route not found"))
	})

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.Security.RateLimit,
		Burst:             cfg.Security.RateLimit * 2,
	})
	go limiter.Cleanup(ctx)

	jwt := middleware.NewJWTMiddleware(d.Sessions)
	turnstile := middleware.NewTurnstileMiddleware(cfg.Security)
	small := middleware.BodySizeLimiter(1 << 20)
	oneImage := middleware.BodySizeLimiter(cfg.Upload.MaxImageSize + 1<<20)
	twoImages := middleware.BodySizeLimiter(2*cfg.Upload.MaxImageSize + 1<<20)

	m := router.Group("/api", limiter.Middleware())
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })
	}

	u := m.Group("/v1/users")
	{
		// POST /api/v1/users/register		-> Registers a new user with an avatar
		u.POST("/register", turnstile, twoImages, func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/v1/users/login		-> Logs in a user and sets the session cookies
		u.POST("/login", small, func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/v1/users/refresh-token	-> Rotates the session
		u.POST("/refresh-token", small, func(c *gin.Context) { user.UserRefreshToken(c, d) })

		// DELETE /api/v1/users/delete-user	-> Deletes a user by username
		u.DELETE("/delete-user", small, func(c *gin.Context) { user.UserDelete(c, d) })
	}

	auth := u.Group("", jwt)
	{
		// POST /api/v1/users/logout		-> Forgets the session
		auth.POST("/logout", func(c *gin.Context) { user.UserLogout(c, d) })

		// POST /api/v1/users/change-password	-> Changes the password
		auth.POST("/change-password", small, func(c *gin.Context) { user.UserChangePassword(c, d) })

		// GET /api/v1/users/current-user	-> Returns the logged in user
		auth.GET("/current-user", user.UserCurrent)

		// PATCH /api/v1/users/update-account	-> Updates fullname and/or email
		auth.PATCH("/update-account", small, func(c *gin.Context) { user.UserUpdateAccount(c, d) })

		// PATCH /api/v1/users/avatar		-> Replaces the avatar
		auth.PATCH("/avatar", oneImage, func(c *gin.Context) { user.UserUpdateAvatar(c, d) })

		// PATCH /api/v1/users/cover-image	-> Replaces the cover image
		auth.PATCH("/cover-image", oneImage, func(c *gin.Context) { user.UserUpdateCoverImage(c, d) })

		// GET /api/v1/users/c/:username	-> Returns a channel profile
		auth.GET("/c/:username", append(cachePerViewer(store, channelCacheTTL), func(c *gin.Context) { user.UserChannelProfile(c, d) })...)

		// GET /api/v1/users/history		-> Returns the watch history
		auth.GET("/history", func(c *gin.Context) { user.UserWatchHistory(c, d) })
	}

	return router
}

// cachePerViewer caches by request URI and viewer since the response depends
// on who is asking. Errors are written inside the cache so they go through
// its writer with their real status and never get stored. Users looking at
// their own channel always get a fresh answer.
func cachePerViewer(store persist.CacheStore, ttl time.Duration) gin.HandlersChain {
	return gin.HandlersChain{
		cache.Cache(store, ttl, cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
			if viewer, ok := c.Get("user"); ok {
				if u, ok := viewer.(*model.User); ok && strings.EqualFold(u.Username, c.Param("username")) {
					return false, cache.Strategy{}
				}
			}

			return true, cache.Strategy{
				CacheKey: c.GetString("userID") + ":" + c.Request.RequestURI,
			}
		})),
		middleware.NewErrorMiddleware(),
	}
}
