package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	R2       R2Config       `yaml:"r2"`
	Thumbs   ThumbsConfig   `yaml:"thumbs"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// AllowedOrigins lists the browser origins allowed cross-origin, with credentials.
	// Empty means same-origin only.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// R2Config holds the object store that keeps full-resolution originals
type R2Config struct {
	AccountID string `yaml:"account_id"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	PublicURL string `yaml:"public_url"`
	// Endpoint overrides the account endpoint, e.g. a local MinIO for development
	Endpoint string `yaml:"endpoint"`
}

// ThumbsConfig holds the thumbnail backend (any MinIO-compatible API)
type ThumbsConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	UseSSL     bool   `yaml:"use_ssl"`
	PublicURL  string `yaml:"public_url"`
	PublicRead bool   `yaml:"public_read"`
}

// AuthConfig holds the admin secret and the key used to sign unlock cookies
type AuthConfig struct {
	AdminPassword string `yaml:"admin_password"`
	SessionSecret string `yaml:"session_secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file, then applies .env and environment overrides.
// A missing file is not an error so the service can run from the environment alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// .env is optional; variables already in the environment win
	_ = godotenv.Load()

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	if c.Auth.AdminPassword == "" {
		return errors.New("auth.admin_password (ADMIN_PASSWORD) is required")
	}
	if c.Auth.SessionSecret == "" {
		return errors.New("auth.session_secret (SESSION_SECRET) is required")
	}
	if c.R2.Bucket == "" {
		return errors.New("r2.bucket (R2_BUCKET_NAME) is required")
	}
	for _, origin := range c.Server.AllowedOrigins {
		if origin == "*" {
			return errors.New("server.allowed_origins (ALLOWED_ORIGINS) cannot be \"*\": the unlock cookie is sent with credentials")
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Host, "HOST")
	setInt(&c.Server.Port, "PORT")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	setString(&c.Database.Host, "DATABASE_HOST")
	setInt(&c.Database.Port, "DATABASE_PORT")
	setString(&c.Database.User, "DATABASE_USER")
	setString(&c.Database.Password, "DATABASE_PASSWORD")
	setString(&c.Database.DBName, "DATABASE_NAME")
	setString(&c.Database.SSLMode, "DATABASE_SSLMODE")

	setString(&c.R2.AccountID, "R2_ACCOUNT_ID")
	setString(&c.R2.AccessKey, "R2_ACCESS_KEY_ID")
	setString(&c.R2.SecretKey, "R2_SECRET_ACCESS_KEY")
	setString(&c.R2.Bucket, "R2_BUCKET_NAME")
	setString(&c.R2.PublicURL, "R2_PUBLIC_URL")
	setString(&c.R2.Endpoint, "R2_ENDPOINT")

	setString(&c.Thumbs.Endpoint, "THUMBS_ENDPOINT")
	setString(&c.Thumbs.AccessKey, "THUMBS_ACCESS_KEY")
	setString(&c.Thumbs.SecretKey, "THUMBS_SECRET_KEY")
	setString(&c.Thumbs.Bucket, "THUMBS_BUCKET")
	setString(&c.Thumbs.Region, "THUMBS_REGION")
	setString(&c.Thumbs.PublicURL, "THUMBS_PUBLIC_URL")
	setBool(&c.Thumbs.UseSSL, "THUMBS_USE_SSL")
	setBool(&c.Thumbs.PublicRead, "THUMBS_PUBLIC_READ")

	setString(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
	setString(&c.Auth.SessionSecret, "SESSION_SECRET")

	setString(&c.Log.Level, "LOG_LEVEL")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.R2.Region == "" {
		c.R2.Region = "auto"
	}
	if c.Thumbs.Bucket == "" {
		c.Thumbs.Bucket = "thumbnails"
	}
	if c.Thumbs.Region == "" {
		c.Thumbs.Region = "us-east-1"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the connection string in URL form, as the migrator expects it
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// EndpointURL returns the S3 API endpoint for the configured R2 account
func (c *R2Config) EndpointURL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
