package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all the configuration for the application.
type Config struct {
	Server    ServerConfig   `mapstructure:"server"`
	Database  DatabaseConfig `mapstructure:"database"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Google    GoogleConfig   `mapstructure:"google"`
	SMTP      SMTPConfig     `mapstructure:"smtp"`
	Storage   StorageConfig  `mapstructure:"storage"`
	Auth      AuthConfig     `mapstructure:"auth"`
	Queue     QueueConfig    `mapstructure:"queue"`
	Log       LogConfig      `mapstructure:"log"`
	JWTSecret string         `mapstructure:"jwtsecret"`
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Env            string   `mapstructure:"env"`
	AllowedOrigins []string `mapstructure:"allowedorigins"`
	CookieDomain   string   `mapstructure:"cookiedomain"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the Redis configuration.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"clientid"`
	ClientSecret string `mapstructure:"clientsecret"`
	RedirectURL  string `mapstructure:"redirecturl"`
}

type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	From       string `mapstructure:"from"`
	FromName   string `mapstructure:"fromname"`
	Encryption string `mapstructure:"encryption"` // starttls, ssl, none
}

// StorageConfig points at an S3-compatible bucket for profile pictures.
// Leaving Bucket empty disables uploads.
type StorageConfig struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"accesskey"`
	SecretKey     string `mapstructure:"secretkey"`
	PublicBaseURL string `mapstructure:"publicbaseurl"`
}

type AuthConfig struct {
	AllowedEmailDomain string        `mapstructure:"allowedemaildomain"`
	OTPLength          int           `mapstructure:"otplength"`
	OTPTTL             time.Duration `mapstructure:"otpttl"`
	SessionTTL         time.Duration `mapstructure:"sessionttl"`
	DeliveryTimeout    time.Duration `mapstructure:"deliverytimeout"`
	UploadTimeout      time.Duration `mapstructure:"uploadtimeout"`
}

// QueueConfig tunes the asynq background queue.
type QueueConfig struct {
	Name         string        `mapstructure:"name"`
	Attempts     int           `mapstructure:"attempts"`
	Backoff      time.Duration `mapstructure:"backoff"`
	InitialDelay time.Duration `mapstructure:"initialdelay"`
	Concurrency  int           `mapstructure:"concurrency"`
	// Retention keeps completed tasks inspectable for this long.
	Retention       time.Duration `mapstructure:"retention"`
	ShutdownTimeout time.Duration `mapstructure:"shutdowntimeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// IsProduction reports whether the server runs with production cookie and logging settings.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

var envBindings = map[string]string{
	"server.port":             "SERVER_PORT",
	"server.env":              "SERVER_ENV",
	"server.allowedorigins":   "ALLOWED_ORIGINS",
	"server.cookiedomain":     "COOKIE_DOMAIN",
	"database.url":            "DATABASE_URL",
	"redis.url":               "REDIS_URL",
	"jwtsecret":               "JWT_SECRET",
	"google.clientid":         "GOOGLE_CLIENT_ID",
	"google.clientsecret":     "GOOGLE_CLIENT_SECRET",
	"google.redirecturl":      "GOOGLE_REDIRECT_URL",
	"smtp.host":               "SMTP_HOST",
	"smtp.port":               "SMTP_PORT",
	"smtp.username":           "SMTP_USERNAME",
	"smtp.password":           "SMTP_PASSWORD",
	"smtp.from":               "SMTP_FROM",
	"smtp.fromname":           "SMTP_FROM_NAME",
	"smtp.encryption":         "SMTP_ENCRYPTION",
	"storage.bucket":          "STORAGE_BUCKET",
	"storage.region":          "STORAGE_REGION",
	"storage.endpoint":        "STORAGE_ENDPOINT",
	"storage.accesskey":       "STORAGE_ACCESS_KEY",
	"storage.secretkey":       "STORAGE_SECRET_KEY",
	"storage.publicbaseurl":   "STORAGE_PUBLIC_BASE_URL",
	"auth.allowedemaildomain": "AUTH_ALLOWED_EMAIL_DOMAIN",
	"auth.otplength":          "AUTH_OTP_LENGTH",
	"auth.otpttl":             "AUTH_OTP_TTL",
	"auth.sessionttl":         "AUTH_SESSION_TTL",
	"auth.deliverytimeout":    "AUTH_DELIVERY_TIMEOUT",
	"auth.uploadtimeout":      "AUTH_UPLOAD_TIMEOUT",
	"queue.name":              "QUEUE_NAME",
	"queue.attempts":          "QUEUE_ATTEMPTS",
	"queue.backoff":           "QUEUE_BACKOFF",
	"queue.initialdelay":      "QUEUE_INITIAL_DELAY",
	"queue.concurrency":       "QUEUE_CONCURRENCY",
	"queue.retention":         "QUEUE_RETENTION",
	"queue.shutdowntimeout":   "QUEUE_SHUTDOWN_TIMEOUT",
	"log.level":               "LOG_LEVEL",
	"log.format":              "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.allowedorigins", []string{"http://localhost:5173"})
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.fromname", "Psych")
	v.SetDefault("smtp.encryption", "starttls")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("auth.allowedemaildomain", "iiita.ac.in")
	v.SetDefault("auth.otplength", 6)
	v.SetDefault("auth.otpttl", 10*time.Minute)
	v.SetDefault("auth.sessionttl", 7*24*time.Hour)
	v.SetDefault("auth.deliverytimeout", 15*time.Second)
	v.SetDefault("auth.uploadtimeout", 10*time.Second)
	v.SetDefault("queue.name", "emails")
	v.SetDefault("queue.attempts", 3)
	v.SetDefault("queue.backoff", 2*time.Second)
	v.SetDefault("queue.initialdelay", 2*time.Second)
	v.SetDefault("queue.concurrency", 2)
	v.SetDefault("queue.retention", 24*time.Hour)
	v.SetDefault("queue.shutdowntimeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load creates a new Config object from the .env file and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Load .env into process environment for BindEnv to work with file-based envs
	if err := godotenv.Load(); err == nil {
		log.Printf("ℹ️ .env loaded into process environment via godotenv")
	}

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.OTPLength < 4 || c.Auth.OTPLength > 10 {
		return fmt.Errorf("AUTH_OTP_LENGTH must be between 4 and 10, got %d", c.Auth.OTPLength)
	}
	if c.Queue.Attempts < 1 {
		return fmt.Errorf("QUEUE_ATTEMPTS must be at least 1, got %d", c.Queue.Attempts)
	}
	if c.Queue.Concurrency < 1 {
		c.Queue.Concurrency = 1
	}
	return nil
}

// splitOrigins accepts both a list and a single comma-separated entry.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
