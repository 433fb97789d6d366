package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds environment-based settings
type Config struct {
	Environment    string
	ServerAddress  string
	DatabaseURL    string
	MigrationsPath string
	JWTSecret      string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string

	ResolveInterval time.Duration
	LivenessWindow  time.Duration

	UploadDir       string
	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}
	migrations := os.Getenv("MIGRATIONS_PATH")
	if migrations == "" {
		migrations = "./migrations"
	}
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}

	resolveInterval := time.Minute
	if v := os.Getenv("RESOLVE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RESOLVE_INTERVAL: %w", err)
		}
		// schedule windows are minute-granular; re-resolving slower than
		// once a minute would miss boundaries
		if d > time.Minute {
			return nil, fmt.Errorf("RESOLVE_INTERVAL must not exceed 1m")
		}
		resolveInterval = d
	}

	livenessWindow := 90 * time.Second
	if v := os.Getenv("LIVENESS_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LIVENESS_WINDOW: %w", err)
		}
		livenessWindow = d
	}

	return &Config{
		Environment:    os.Getenv("APP_ENV"),
		ServerAddress:  addr,
		DatabaseURL:    dbURL,
		MigrationsPath: migrations,
		JWTSecret:      jwtSecret,

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),

		ResolveInterval: resolveInterval,
		LivenessWindow:  livenessWindow,

		UploadDir:       uploadDir,
		UseSpaces:       os.Getenv("USE_SPACES") == "true",
		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesBucket:    os.Getenv("SPACES_BUCKET"),
		SpacesCDNURL:    os.Getenv("SPACES_CDN_URL"),
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),
	}, nil
}
