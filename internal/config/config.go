package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"
	StorageDriverMemory   = "memory"

	MediaProviderCloudinary = "cloudinary"
	MediaProviderS3         = "s3"
)

type Config struct {
	App        AppConfig
	Storage    StorageConfig
	Postgres   PostgresConfig
	Mongo      MongoConfig
	Auth       AuthConfig
	Media      MediaConfig
	Cloudinary CloudinaryConfig
	S3         S3Config
	Upload     UploadConfig
	Redis      RedisConfig
}

type AppConfig struct {
	Port       string `envconfig:"APP_PORT" default:"3000"`
	CORSOrigin string `envconfig:"APP_CORS_ORIGIN" default:"http://localhost:3001"`
	LogLevel   string `envconfig:"APP_LOG_LEVEL" default:"info"`
	LogPretty  bool   `envconfig:"APP_LOG_PRETTY" default:"false"`
}

type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
}

type PostgresConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            string        `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD"`
	DBName          string        `envconfig:"DB_NAME" default:"users"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MigrationsPath  string        `envconfig:"DB_MIGRATIONS_PATH" default:"migrations"`
}

type MongoConfig struct {
	URI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"MONGO_DATABASE" default:"users"`
}

type AuthConfig struct {
	JWTSecret  string        `envconfig:"AUTH_JWT_SECRET" required:"true"`
	BcryptCost int           `envconfig:"AUTH_BCRYPT_COST" default:"10"`
	TokenTTL   time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"0"`
}

type MediaConfig struct {
	Provider string `envconfig:"MEDIA_PROVIDER" default:"cloudinary"`
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"CLOUDINARY_API_SECRET"`
}

type S3Config struct {
	Bucket    string        `envconfig:"S3_BUCKET"`
	Region    string        `envconfig:"S3_REGION" default:"us-east-1"`
	Endpoint  string        `envconfig:"S3_ENDPOINT"`
	AccessKey string        `envconfig:"S3_ACCESS_KEY"`
	SecretKey string        `envconfig:"S3_SECRET_KEY"`
	URLTTL    time.Duration `envconfig:"S3_URL_TTL" default:"15m"`
}

type UploadConfig struct {
	Dir      string `envconfig:"UPLOAD_DIR"`
	MaxBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
}

// RedisConfig: пустой Addr отключает кэш счётчика пользователей.
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CountTTL time.Duration `envconfig:"REDIS_COUNT_TTL" default:"30s"`
}

// NewConfig loads an optional .env file and then reads the environment.
func NewConfig() (*Config, error) {
	return Load(".env")
}

func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	sections := []any{
		&cfg.App, &cfg.Storage, &cfg.Postgres, &cfg.Mongo, &cfg.Auth,
		&cfg.Media, &cfg.Cloudinary, &cfg.S3, &cfg.Upload, &cfg.Redis,
	}
	// Секции читаются по отдельности, иначе envconfig добавит имя поля как префикс.
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to process env: %w", err)
		}
	}

	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = os.TempDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMongo, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Media.Provider {
	case MediaProviderCloudinary:
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return errors.New("cloudinary credentials are required")
		}
	case MediaProviderS3:
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required")
		}
	default:
		return fmt.Errorf("unknown media provider %q", c.Media.Provider)
	}

	if c.Upload.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}

	return nil
}

// DSN returns a keyword/value connection string accepted by pgxpool.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// MigrateURL returns the pgx5:// URL used by golang-migrate.
func (p PostgresConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}
