// Package config holds the server configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/cache"
	"github.com/evcraddock/realty/internal/imagehost"
)

// Storage drivers.
const (
	StorageSQLite = "sqlite"
	StorageMongo  = "mongo"
)

// Cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Image drivers.
const (
	ImagesLocal = "local"
	ImagesMinIO = "minio"
	ImagesHTTP  = "http"
)

// Config is the server configuration.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Images  ImagesConfig  `yaml:"images"`
	Admin   AdminConfig   `yaml:"admin"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []Validator{&c.App, &c.Storage, &c.Cache, &c.Images, &c.Admin} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Dev      bool       `yaml:"dev"`
	HTTP     HTTPConfig `yaml:"http"`
}

func (c *AppConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("app.http: %w", err)
	}
	return nil
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// BaseURL is the public origin used in locally hosted image URLs.
	BaseURL string `yaml:"base_url"`
}

// Address returns the listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects and configures the property store.
type StorageConfig struct {
	Driver string       `yaml:"driver"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Mongo  MongoConfig  `yaml:"mongo"`
}

// SQLiteConfig holds the embedded database path.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	Collection     string        `yaml:"collection"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(StorageSQLite, StorageMongo)),
	); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	switch c.Driver {
	case StorageSQLite:
		if err := validation.ValidateStruct(&c.SQLite,
			validation.Field(&c.SQLite.Path, validation.Required),
		); err != nil {
			return fmt.Errorf("storage.sqlite: %w", err)
		}
	case StorageMongo:
		if err := validation.ValidateStruct(&c.Mongo,
			validation.Field(&c.Mongo.URI, validation.Required),
			validation.Field(&c.Mongo.Database, validation.Required),
			validation.Field(&c.Mongo.Collection, validation.Required),
		); err != nil {
			return fmt.Errorf("storage.mongo: %w", err)
		}
	}
	return nil
}

// CacheConfig configures the server-side catalog cache.
type CacheConfig struct {
	Driver string        `yaml:"driver"`
	TTL    time.Duration `yaml:"ttl"`
	Dir    string        `yaml:"dir"`
	Redis  RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

func (c *CacheConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(CacheNone, CacheMemory, CacheFile, CacheRedis)),
		validation.Field(&c.TTL, validation.Min(time.Second)),
		validation.Field(&c.Dir, validation.When(c.Driver == CacheFile, validation.Required)),
	); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if c.Driver == CacheRedis {
		if err := validation.ValidateStruct(&c.Redis,
			validation.Field(&c.Redis.Addr, validation.Required),
		); err != nil {
			return fmt.Errorf("cache.redis: %w", err)
		}
	}
	return nil
}

// ImagesConfig selects where uploaded images are stored.
type ImagesConfig struct {
	Driver       string      `yaml:"driver"`
	MaxDimension int         `yaml:"max_dimension"`
	Local        LocalConfig `yaml:"local"`
	MinIO        MinIOConfig `yaml:"minio"`
	HTTP         HostConfig  `yaml:"http"`
}

// LocalConfig is the directory served under /uploads/.
type LocalConfig struct {
	Dir string `yaml:"dir"`
}

// MinIOConfig holds S3-compatible bucket settings.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
}

// HostConfig holds the hosted image API key.
type HostConfig struct {
	APIKey string `yaml:"api_key"`
}

func (c *ImagesConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(ImagesLocal, ImagesMinIO, ImagesHTTP)),
		validation.Field(&c.MaxDimension, validation.Min(0), validation.Max(10000)),
	); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	var err error
	switch c.Driver {
	case ImagesLocal:
		err = validation.ValidateStruct(&c.Local, validation.Field(&c.Local.Dir, validation.Required))
	case ImagesMinIO:
		err = validation.ValidateStruct(&c.MinIO,
			validation.Field(&c.MinIO.Endpoint, validation.Required),
			validation.Field(&c.MinIO.AccessKey, validation.Required),
			validation.Field(&c.MinIO.SecretKey, validation.Required),
			validation.Field(&c.MinIO.Bucket, validation.Required),
		)
	case ImagesHTTP:
		err = validation.ValidateStruct(&c.HTTP, validation.Field(&c.HTTP.APIKey, validation.Required))
	}
	if err != nil {
		return fmt.Errorf("images.%s: %w", c.Driver, err)
	}
	return nil
}

// MinIO converts the section to imagehost settings.
func (c *MinIOConfig) MinIO() imagehost.MinIOConfig {
	return imagehost.MinIOConfig{
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Bucket:    c.Bucket,
		UseSSL:    c.UseSSL,
		PublicURL: c.PublicURL,
	}
}

// AdminConfig holds the admin credential. Both secrets are required.
type AdminConfig struct {
	PasswordHash string        `yaml:"password_hash"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

func (c *AdminConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.PasswordHash, validation.Required.Error("is required (set REALTY_ADMIN_PASSWORD_HASH)")),
		validation.Field(&c.JWTSecret, validation.Required.Error("is required (set REALTY_JWT_SECRET)"), validation.Length(16, 0)),
		validation.Field(&c.TokenTTL, validation.Min(time.Minute)),
	); err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	return nil
}

// Auth converts the section to auth settings.
func (c *AdminConfig) Auth() auth.Config {
	return auth.Config{PasswordHash: c.PasswordHash, JWTSecret: c.JWTSecret, TokenTTL: c.TokenTTL}
}

// Default returns a configuration for a single-node install: SQLite under
// ~/.realty, an in-memory catalog cache and images on local disk.
func Default() *Config {
	dataDir := "."
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".realty")
	}
	return &Config{
		App: AppConfig{
			LogLevel: slog.LevelInfo,
			HTTP:     HTTPConfig{Port: 8080, BaseURL: "http://localhost:8080"},
		},
		Storage: StorageConfig{
			Driver: StorageSQLite,
			SQLite: SQLiteConfig{Path: filepath.Join(dataDir, "realty.db")},
			Mongo: MongoConfig{
				Database:       "realty",
				Collection:     "properties",
				ConnectTimeout: 10 * time.Second,
			},
		},
		Cache: CacheConfig{
			Driver: CacheMemory,
			TTL:    cache.DefaultTTL,
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "realty:"},
		},
		Images: ImagesConfig{
			Driver:       ImagesLocal,
			MaxDimension: imagehost.DefaultMaxDimension,
			Local:        LocalConfig{Dir: filepath.Join(dataDir, "uploads")},
		},
		Admin: AdminConfig{TokenTTL: auth.DefaultTokenTTL},
	}
}

// ApplyEnv overrides settings from REALTY_* environment variables.
func (c *Config) ApplyEnv() {
	setString(&c.Admin.PasswordHash, "REALTY_ADMIN_PASSWORD_HASH")
	setString(&c.Admin.JWTSecret, "REALTY_JWT_SECRET")
	setString(&c.Storage.Driver, "REALTY_STORAGE")
	setString(&c.Storage.SQLite.Path, "REALTY_DB_PATH")
	setString(&c.Storage.Mongo.URI, "REALTY_MONGO_URI")
	setString(&c.Cache.Driver, "REALTY_CACHE")
	setString(&c.Cache.Redis.Addr, "REALTY_REDIS_ADDR")
	setString(&c.Images.Driver, "REALTY_IMAGES")
	setString(&c.Images.HTTP.APIKey, "REALTY_IMAGE_API_KEY")
	setString(&c.Images.MinIO.AccessKey, "REALTY_MINIO_ACCESS_KEY")
	setString(&c.Images.MinIO.SecretKey, "REALTY_MINIO_SECRET_KEY")
	setString(&c.App.HTTP.BaseURL, "REALTY_BASE_URL")
	if v := os.Getenv("REALTY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.App.HTTP.Port = port
		}
	}
	if os.Getenv("REALTY_DEV_MODE") == "true" {
		c.App.Dev = true
	}
}

// FromFile builds the configuration from defaults, an optional YAML file
// and the environment, then validates it.
func FromFile(path string) (*Config, error) {
	cfg := Default()
	cfg.ApplyEnv()
	if err := LoadOptional(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
