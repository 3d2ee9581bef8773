// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const DefaultJWTSecret = "your-secret-key"

var (
	validLogLevels   = []string{"debug", "info", "warn", "error"}
	validDrivers     = []string{"postgres", "sqlite"}
	validCacheStores = []string{"memory", "redis"}
)

type Config struct {
	App       App      `mapstructure:"app"`
	Host      Host     `mapstructure:"host"`
	DB        DB       `mapstructure:"db"`
	JWT       JWT      `mapstructure:"jwt"`
	Auth      Auth     `mapstructure:"auth"`
	Security  Security `mapstructure:"security"`
	Cache     Cache    `mapstructure:"cache"`
	Redis     Redis    `mapstructure:"redis"`
	Storage   Storage  `mapstructure:"storage"`
	Upload    Upload   `mapstructure:"upload"`
	SeedAdmin bool     `mapstructure:"seed_admin"`
}

type App struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type Host struct {
	Port          int    `mapstructure:"port"`
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type DB struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	Port         int    `mapstructure:"port"`
	Schema       string `mapstructure:"schema"`
	Path         string `mapstructure:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type JWT struct {
	Secret string `mapstructure:"secret"`
}

// Auth holds the bootstrap credential pair. An empty password disables it.
type Auth struct {
	BootstrapUsername string `mapstructure:"bootstrap_username"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
}

type Security struct {
	RateLimit int `mapstructure:"rate_limit"` // requests per second per IP, 0 disables
}

type Cache struct {
	LinksTTL int    `mapstructure:"links_ttl"` // seconds, 0 disables
	Store    string `mapstructure:"store"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Storage struct {
	Enabled   bool   `mapstructure:"enabled"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	PublicURL string `mapstructure:"public_url"`
}

type Upload struct {
	MaxSize int64 `mapstructure:"max_size"` // MiB
}

// MaxBytes returns the upload limit in bytes
func (u Upload) MaxBytes() int64 {
	return u.MaxSize << 20
}

func (c *Config) Production() bool {
	return c.App.Env == "production"
}

// Setup reads flags from args, the optional config.toml file and the
// environment (including a .env file in the working directory), in increasing order of precedence below flags. It returns
// an error if something is critically wrong and the application can't run
// because of that.
func Setup(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("startpage-api", pflag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a config file (default ./config.toml if present)")
	fs.Int("port", 3009, "Port to listen on")
	fs.Bool("seed-admin", true, "Create the admin user when the users table is empty")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Variables from .env never override ones already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file, %w", err)
	}

	v := viper.New()

	v.BindPFlag("host.port", fs.Lookup("port"))
	v.BindPFlag("seed_admin", fs.Lookup("seed-admin"))

	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.env", "APP_ENV", "NODE_ENV")
	v.BindEnv("app.log_level", "APP_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("host.port", "PORT", "HOST_PORT")
	v.BindEnv("host.allowed_origin", "ALLOWED_ORIGIN", "HOST_ALLOWED_ORIGIN")

	v.BindEnv("jwt.secret", "JWT_SECRET")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")

	//
	// Defaults
	//
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 3009)
	v.SetDefault("host.allowed_origin", "http://localhost:5173")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "acumenus")
	v.SetDefault("db.name", "ohdsi")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.schema", "basicauth")
	v.SetDefault("db.path", "startpage.db")
	v.SetDefault("db.max_open_conns", 10)

	v.SetDefault("jwt.secret", DefaultJWTSecret)

	v.SetDefault("auth.bootstrap_username", "admin")
	v.SetDefault("auth.bootstrap_password", "admin123")

	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("cache.links_ttl", 0)
	v.SetDefault("cache.store", "memory")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.public_url", "")

	v.SetDefault("upload.max_size", 5)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || *configPath != "" {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if !validOrigin(c.Host.AllowedOrigin) {
		return fmt.Errorf("invalid host.allowed_origin %q, expected * or an http(s) origin like http://localhost:5173", c.Host.AllowedOrigin)
	}

	if !slices.Contains(validDrivers, c.DB.Driver) {
		return fmt.Errorf("invalid database driver %q", c.DB.Driver)
	}

	if c.DB.Driver == "sqlite" && c.DB.Path == "" {
		return errors.New("db.path can't be empty when using sqlite")
	}

	if c.JWT.Secret == "" {
		return errors.New("jwt.secret can't be empty")
	}

	if c.Production() && c.JWT.Secret == DefaultJWTSecret {
		return errors.New("refusing to run in production with the default jwt.secret")
	}

	if c.Security.RateLimit < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	if c.Cache.LinksTTL < 0 {
		return errors.New("cache.links_ttl can't be negative")
	}

	if !slices.Contains(validCacheStores, c.Cache.Store) {
		return fmt.Errorf("invalid cache store %q", c.Cache.Store)
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return errors.New("storage.bucket can't be empty when storage is enabled")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	return nil
}

// validOrigin accepts * or a bare scheme://host[:port] the CORS middleware
// will take
func validOrigin(o string) bool {
	if o == "*" {
		return true
	}

	u, err := url.Parse(o)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != "" && u.Path == "" && u.RawQuery == "" && u.User == nil
}
