package main

import (
	"bitwise74/vidhub-api/app"
	"bitwise74/vidhub-api/config"
	"bitwise74/vidhub-api/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	configPath := config.Flags(pflag.CommandLine)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, config.ErrMissingSecret) {
			fmt.Println("WARNING: You haven't set the JWT secrets. Set jwt.access_secret and jwt.refresh_secret in the config file or as JWT_ACCESS_SECRET and JWT_REFRESH_SECRET.\nHere are two random secrets you can use:\n\n" + config.GenSecret() + "\n" + config.GenSecret())
			os.Exit(1)
		}

		panic(err)
	}

	if err := app.MakeLogger(cfg.App.LogLevel); err != nil {
		panic(err)
	}

	if !cfg.Security.TurnstileEnabled {
		zap.L().Warn("Cloudflare's turnstile is disabled. Registration won't be guarded against bots")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := app.NewDeps(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	service.SessionCleanup(ctx, cfg.Cleanup.SessionInterval, d.DB)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Host.Port),
		Handler:           app.NewRouter(ctx, d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Graceful shutdown failed", zap.Error(err))
	}

	if sqlDB, err := d.DB.DB(); err == nil {
		sqlDB.Close()
	}

	zap.L().Info("Server exited cleanly")
}
