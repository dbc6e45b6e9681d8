package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the Oppia service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	BaseURL                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	TrackerSubject         string
	JWTSecret              string
	CourseUploadDir        string
	CertificateDir         string
	CourseCacheTTL         time.Duration
	DownloadRateLimit      int
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	SendgridAPIKey         string
	EmailFrom              string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("OPPIA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Oppia")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("database.url", "sqlite://oppia.db")
	v.SetDefault("nats.tracker_subject", "oppia.tracker")
	v.SetDefault("course.upload_dir", "upload")
	v.SetDefault("certificate.dir", "media/certificates")
	v.SetDefault("course.cache_ttl", "1m")
	v.SetDefault("download.rate_limit", 30)
	v.SetDefault("cloudinary.folder", "oppia/certificates")
	v.SetDefault("email.from", "no-reply@oppia-mobile.org")

	ttl, err := time.ParseDuration(v.GetString("course.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid course cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		BaseURL:                strings.TrimRight(v.GetString("app.base_url"), "/"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		TrackerSubject:         v.GetString("nats.tracker_subject"),
		JWTSecret:              v.GetString("jwt.secret"),
		CourseUploadDir:        v.GetString("course.upload_dir"),
		CertificateDir:         v.GetString("certificate.dir"),
		CourseCacheTTL:         ttl,
		DownloadRateLimit:      v.GetInt("download.rate_limit"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		SendgridAPIKey:         v.GetString("sendgrid.api_key"),
		EmailFrom:              v.GetString("email.from"),
	}

	if cfg.DownloadRateLimit <= 0 {
		cfg.DownloadRateLimit = 30
	}

	return cfg, nil
}

// LoadServer reads the configuration and enforces the values the HTTP server cannot run without.
func LoadServer() (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
