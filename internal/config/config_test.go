package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MONGODB_CONNECT_PER_REQUEST", "false")
	t.Setenv("STORAGE_BASE_URL", "https://example.supabase.co/storage/v1/")
	t.Setenv("METADATA_BACKEND", "Postgres")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.False(t, cfg.Mongo.ConnectPerRequest)
	assert.Equal(t, "https://example.supabase.co/storage/v1", cfg.ObjectStore.BaseURL)
	assert.Equal(t, MetadataPostgres, cfg.MetadataBackend)
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"METADATA_BACKEND", "STORAGE_BACKEND", "MONGODB_DATABASE", "STORAGE_BUCKET", "BODY_LIMIT_BYTES"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, MetadataMongo, cfg.MetadataBackend)
	assert.Equal(t, StorageHTTP, cfg.StorageBackend)
	assert.Equal(t, "litedrive", cfg.Mongo.Database)
	assert.Equal(t, "files", cfg.Mongo.Collection)
	assert.Equal(t, "litedrive", cfg.ObjectStore.Bucket)
	assert.True(t, cfg.Mongo.ConnectPerRequest)
	assert.Equal(t, 20<<20, cfg.BodyLimitBytes)
}

func TestValidate(t *testing.T) {
	valid := func() *AppConfig {
		return &AppConfig{
			MetadataBackend: MetadataMongo,
			StorageBackend:  StorageHTTP,
			Mongo:           MongoConfig{URI: "mongodb://localhost:27017"},
			ObjectStore:     ObjectStoreConfig{BaseURL: "http://store", ServiceKey: "key"},
			Auth:            AuthConfig{PublishableKey: "pk_test"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("missing mongo uri and service key", func(t *testing.T) {
		cfg := valid()
		cfg.Mongo.URI = ""
		cfg.ObjectStore.ServiceKey = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MONGODB_URI")
		assert.Contains(t, err.Error(), "STORAGE_SERVICE_KEY")
	})

	t.Run("unknown backends", func(t *testing.T) {
		cfg := valid()
		cfg.MetadataBackend = "redis"
		cfg.StorageBackend = "ftp"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `METADATA_BACKEND "redis"`)
		assert.Contains(t, err.Error(), `STORAGE_BACKEND "ftp"`)
	})

	t.Run("auth required without verifier", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.Required = true
		assert.ErrorContains(t, cfg.Validate(), "AUTH_REQUIRED")
	})

	t.Run("memory storage needs nothing", func(t *testing.T) {
		cfg := valid()
		cfg.StorageBackend = StorageMemory
		cfg.ObjectStore = ObjectStoreConfig{}
		assert.NoError(t, cfg.Validate())
	})
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
