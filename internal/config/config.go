package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Supported metadata store backends.
const (
	MetadataMongo    = "mongo"
	MetadataPostgres = "postgres"
)

// Supported object store backends.
const (
	StorageHTTP   = "http"
	StorageMinIO  = "minio"
	StorageMemory = "memory"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MongoConfig holds settings for the MongoDB metadata store.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	// ConnectPerRequest opens a fresh client for every repository call and
	// disconnects it before the call returns. When false a single pooled
	// client is shared by all requests.
	ConnectPerRequest bool
	ConnectTimeoutSec int
}

// ObjectStoreConfig holds settings for the REST object storage API.
type ObjectStoreConfig struct {
	BaseURL        string
	ServiceKey     string
	Bucket         string
	HTTPTimeoutSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// AuthConfig holds settings for the identity boundary.
type AuthConfig struct {
	PublishableKey string
	Required       bool
	JWTSecret      string
	JWKSURL        string
	Issuer         string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	TimeZone   string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost         string
	Port            string
	BodyLimitBytes  int
	MetadataBackend string
	StorageBackend  string
	Database        DatabaseConfig
	Mongo           MongoConfig
	ObjectStore     ObjectStoreConfig
	MinIO           MinIOConfig
	Auth            AuthConfig
	Log             LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		// base64 inflates a 10 MiB payload to ~13.4 MiB before the JSON envelope.
		BodyLimitBytes:  getEnvInt("BODY_LIMIT_BYTES", 20<<20),
		MetadataBackend: strings.ToLower(getEnv("METADATA_BACKEND", MetadataMongo)),
		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", StorageHTTP)),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Mongo: MongoConfig{
			URI:               getEnv("MONGODB_URI", ""),
			Database:          getEnv("MONGODB_DATABASE", "litedrive"),
			Collection:        getEnv("MONGODB_COLLECTION", "files"),
			ConnectPerRequest: getEnvBool("MONGODB_CONNECT_PER_REQUEST", true),
			ConnectTimeoutSec: getEnvInt("MONGODB_CONNECT_TIMEOUT_SEC", 10),
		},
		ObjectStore: ObjectStoreConfig{
			BaseURL:        strings.TrimRight(getEnv("STORAGE_BASE_URL", ""), "/"),
			ServiceKey:     getEnv("STORAGE_SERVICE_KEY", ""),
			Bucket:         getEnv("STORAGE_BUCKET", "litedrive"),
			HTTPTimeoutSec: getEnvInt("STORAGE_HTTP_TIMEOUT_SEC", 30),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", "litedrive"),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PublicBaseURL: strings.TrimRight(getEnv("MINIO_PUBLIC_BASE_URL", ""), "/"),
		},
		Auth: AuthConfig{
			PublishableKey: getEnv("AUTH_PUBLISHABLE_KEY", ""),
			Required:       getEnvBool("AUTH_REQUIRED", false),
			JWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
			JWKSURL:        getEnv("AUTH_JWKS_URL", ""),
			Issuer:         getEnv("AUTH_ISSUER", ""),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 7),
			Compress:   getEnvBool("LOG_COMPRESS", false),
			TimeZone:   getEnv("TZ", "UTC"),
		},
	}
}

// Validate reports every required setting that is missing for the selected backends.
func (c *AppConfig) Validate() error {
	var errs []error

	switch c.MetadataBackend {
	case MetadataMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required"))
		}
	case MetadataPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("DB_HOST, DB_USER and DB_NAME are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown METADATA_BACKEND %q", c.MetadataBackend))
	}

	switch c.StorageBackend {
	case StorageHTTP:
		if c.ObjectStore.BaseURL == "" {
			errs = append(errs, errors.New("STORAGE_BASE_URL is required"))
		}
		if c.ObjectStore.ServiceKey == "" {
			errs = append(errs, errors.New("STORAGE_SERVICE_KEY is required"))
		}
	case StorageMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}

	if c.Auth.PublishableKey == "" {
		errs = append(errs, errors.New("AUTH_PUBLISHABLE_KEY is required"))
	}
	if c.Auth.Required && c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		errs = append(errs, errors.New("AUTH_REQUIRED needs AUTH_JWT_SECRET or AUTH_JWKS_URL"))
	}

	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
