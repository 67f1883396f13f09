// Package db opens the gorm connection and migrates the schema
package db

import (
	"bitwise74/vidhub-api/config"
	"bitwise74/vidhub-api/internal/model"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the service, in migration order
var Models = []any{
	&model.User{},
	&model.Subscription{},
	&model.Video{},
	&model.Post{},
	&model.WatchHistoryEntry{},
}

func New(cfg config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if inDocker() {
			if _, err := os.Stat(cfg.DSN); errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", cfg.DSN)
			}
		}

		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	return Open(dialector)
}

// Open connects with the given dialector and runs the migrations
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}

// inDocker reports whether the process runs in a container, either detected
// through /.dockerenv or forced with VIDHUB_IN_DOCKER=1
var inDocker = func() bool {
	if os.Getenv("VIDHUB_IN_DOCKER") == "1" {
		return true
	}

	_, err := os.Stat("/.dockerenv")
	return err == nil
}
