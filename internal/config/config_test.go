package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/user-directory/internal/config"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "http://localhost:3001", cfg.App.CORSOrigin)
	assert.Equal(t, config.StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, time.Hour, cfg.Postgres.MaxConnLifetime)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, time.Duration(0), cfg.Auth.TokenTTL)
	assert.Equal(t, config.MediaProviderCloudinary, cfg.Media.Provider)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, os.TempDir(), cfg.Upload.Dir)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.CountTTL)
}

func TestLoad_MissingSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_PORT", "8081")
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("AUTH_TOKEN_TTL", "24h")
	t.Setenv("MEDIA_PROVIDER", "s3")
	t.Setenv("S3_BUCKET", "avatars")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, config.StorageDriverMongo, cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "avatars", cfg.S3.Bucket)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_DotEnvFile(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_PORT", "")
	require.NoError(t, os.Unsetenv("APP_PORT"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=9090\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("APP_PORT") })

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	setBaseEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *config.Config) {}},
		{name: "unknown driver", mutate: func(c *config.Config) { c.Storage.Driver = "sqlite" }, wantErr: true},
		{name: "unknown provider", mutate: func(c *config.Config) { c.Media.Provider = "ftp" }, wantErr: true},
		{name: "cloudinary without key", mutate: func(c *config.Config) { c.Cloudinary.APIKey = "" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *config.Config) { c.Media.Provider = config.MediaProviderS3 }, wantErr: true},
		{name: "zero upload size", mutate: func(c *config.Config) { c.Upload.MaxBytes = 0 }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Storage:    config.StorageConfig{Driver: config.StorageDriverMemory},
				Media:      config.MediaConfig{Provider: config.MediaProviderCloudinary},
				Cloudinary: config.CloudinaryConfig{CloudName: "demo", APIKey: "k", APISecret: "s"},
				Upload:     config.UploadConfig{MaxBytes: 1},
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPostgresConfig_MigrateURL(t *testing.T) {
	p := config.PostgresConfig{
		Host: "db", Port: "5432", User: "app", Password: "p@ss", DBName: "users", SSLMode: "disable",
	}

	assert.Equal(t, "pgx5://app:p%40ss@db:5432/users?sslmode=disable", p.MigrateURL())
	assert.Equal(t, "host=db port=5432 user=app password=p@ss dbname=users sslmode=disable", p.DSN())
}
