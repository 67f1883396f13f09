package internal

import (
	"bitwise74/vidhub-api/config"
	"bitwise74/vidhub-api/internal/service"

	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Sessions *service.Sessions
	Profiles *service.Profiles
	Channels *service.Channels
}
