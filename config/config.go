// Package config reads config.toml and the environment into the Config
// struct that gets passed around the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "r2"}
	validDBDrivers    = []string{"postgres", "sqlite"}
)

// ErrMissingSecret is returned when one of the JWT secrets isn't set
var ErrMissingSecret = errors.New("jwt secret is missing")

type Config struct {
	App      App      `mapstructure:"app"`
	Host     Host     `mapstructure:"host"`
	Database Database `mapstructure:"database"`
	JWT      JWT      `mapstructure:"jwt"`
	Storage  Storage  `mapstructure:"storage"`
	Upload   Upload   `mapstructure:"upload"`
	Security Security `mapstructure:"security"`
	Cleanup  Cleanup  `mapstructure:"cleanup"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

// Domain is the cookie domain. Empty binds cookies to the exact host.
type Host struct {
	Port         int      `mapstructure:"port"`
	Domain       string   `mapstructure:"domain"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	SecureCookie bool     `mapstructure:"secure_cookie"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type JWT struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
}

type Storage struct {
	Type            string        `mapstructure:"type"`
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	AccountID       string        `mapstructure:"account_id"`
	PublicURL       string        `mapstructure:"public_url"`
	UploadTimeout   time.Duration `mapstructure:"upload_timeout"`
}

type Upload struct {
	// In megabytes in the config file, converted to bytes by Load
	MaxImageSize int64 `mapstructure:"max_image_size"`
}

type Security struct {
	RateLimit            int    `mapstructure:"rate_limit"`
	TurnstileEnabled     bool   `mapstructure:"turnstile_enabled"`
	TurnstileSecretToken string `mapstructure:"turnstile_secret_token"`
}

type Cleanup struct {
	SessionInterval time.Duration `mapstructure:"session_interval"`
}

// Flags registers the command line flags understood by Load
func Flags(set *pflag.FlagSet) *string {
	return set.String("config", "config.toml", "Path to the config file")
}

// GenSecret returns a random hex string suitable as a JWT secret
func GenSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Load reads the config file at path (a missing file is fine, everything can
// come from the environment), applies defaults and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Upload.MaxImageSize <<= 20
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "")
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("host.secure_cookie", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "240h")

	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.upload_timeout", "1m")

	v.SetDefault("upload.max_image_size", 5)

	v.SetDefault("security.rate_limit", 10)
	v.SetDefault("security.turnstile_enabled", false)

	v.SetDefault("cleanup.session_interval", "1h")
}

// AutomaticEnv only kicks in for keys viper already knows about, secrets have
// no defaults so they need an explicit binding
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"jwt.access_secret",
		"jwt.refresh_secret",
		"storage.bucket",
		"storage.access_key_id",
		"storage.secret_access_key",
		"storage.account_id",
		"storage.public_url",
		"security.turnstile_secret_token",
	} {
		v.BindEnv(key)
	}
}

func (c *Config) validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDBDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.DSN == "" {
		return errors.New("database dsn can't be empty")
	}

	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return ErrMissingSecret
	}

	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("access and refresh secrets must differ")
	}

	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be bigger than 0")
	}

	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		return errors.New("access token lifetime must be shorter than the refresh token lifetime")
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}

	if c.Storage.Bucket == "" {
		return errors.New("bucket can't be empty")
	}
	if c.Storage.AccessKeyID == "" {
		return errors.New("access key id can't be empty")
	}
	if c.Storage.SecretAccessKey == "" {
		return errors.New("secret access key can't be empty")
	}

	if c.Storage.Type == "r2" {
		if c.Storage.AccountID == "" {
			return errors.New("account id can't be empty")
		}
		if c.Storage.PublicURL == "" {
			return errors.New("r2 buckets need a public url")
		}
	}

	if c.Upload.MaxImageSize <= 0 {
		return errors.New("upload.max_image_size must be bigger than 0")
	}

	if c.Security.RateLimit <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if c.Security.TurnstileEnabled && c.Security.TurnstileSecretToken == "" {
		return errors.New("turnstile secret token is missing")
	}

	if c.Cleanup.SessionInterval <= 0 {
		return errors.New("cleanup.session_interval must be bigger than 0")
	}

	return nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
