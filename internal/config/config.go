package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// Mail providers
const (
	MailProviderSMTP     = "smtp"
	MailProviderSendGrid = "sendgrid"
	MailProviderLog      = "log"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string   `yaml:"port" env:"SERVER_PORT"`
		Mode            string   `yaml:"mode" env:"SERVER_MODE"`
		Origins         []string `yaml:"origins" env:"SERVER_ORIGINS" envSeparator:","`
		ShutdownTimeout string   `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsPath  string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
		CookieName            string `yaml:"cookie_name" env:"JWT_COOKIE_NAME"`
		CookieSecure          bool   `yaml:"cookie_secure" env:"JWT_COOKIE_SECURE"`
		CookieDomain          string `yaml:"cookie_domain" env:"JWT_COOKIE_DOMAIN"`
	} `yaml:"jwt"`

	Auth struct {
		// EmailPattern restricts registration to the institution's addresses
		EmailPattern     string `yaml:"email_pattern" env:"AUTH_EMAIL_PATTERN"`
		LoginMaxAttempts int    `yaml:"login_max_attempts" env:"AUTH_LOGIN_MAX_ATTEMPTS"`
		LoginWindow      string `yaml:"login_window" env:"AUTH_LOGIN_WINDOW"`
	} `yaml:"auth"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		Host     string `yaml:"host" env:"REDIS_HOST"`
		Port     int    `yaml:"port" env:"REDIS_PORT"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		StatsTTL string `yaml:"stats_ttl" env:"REDIS_STATS_TTL"`
	} `yaml:"redis"`

	Storage struct {
		Driver          string   `yaml:"driver" env:"STORAGE_DRIVER"`
		LocalPath       string   `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		PublicBaseURL   string   `yaml:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL"`
		Bucket          string   `yaml:"bucket" env:"STORAGE_BUCKET"`
		Region          string   `yaml:"region" env:"STORAGE_REGION"`
		Endpoint        string   `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
		AccessKeyID     string   `yaml:"access_key_id" env:"STORAGE_ACCESS_KEY_ID"`
		SecretAccessKey string   `yaml:"secret_access_key" env:"STORAGE_SECRET_ACCESS_KEY"`
		UsePathStyle    bool     `yaml:"use_path_style" env:"STORAGE_USE_PATH_STYLE"`
		PresignTTL      string   `yaml:"presign_ttl" env:"STORAGE_PRESIGN_TTL"`
		MaxUploadSize   int64    `yaml:"max_upload_size" env:"STORAGE_MAX_UPLOAD_SIZE"`
		AllowedTypes    []string `yaml:"allowed_types" env:"STORAGE_ALLOWED_TYPES" envSeparator:","`
	} `yaml:"storage"`

	Mail struct {
		Provider        string `yaml:"provider" env:"MAIL_PROVIDER"`
		From            string `yaml:"from" env:"MAIL_FROM"`
		FromName        string `yaml:"from_name" env:"MAIL_FROM_NAME"`
		SMTPHost        string `yaml:"smtp_host" env:"MAIL_SMTP_HOST"`
		SMTPPort        int    `yaml:"smtp_port" env:"MAIL_SMTP_PORT"`
		SMTPUsername    string `yaml:"smtp_username" env:"MAIL_SMTP_USERNAME"`
		SMTPPassword    string `yaml:"smtp_password" env:"MAIL_SMTP_PASSWORD"`
		DialTimeout     string `yaml:"dial_timeout" env:"MAIL_DIAL_TIMEOUT"`
		GreetingTimeout string `yaml:"greeting_timeout" env:"MAIL_GREETING_TIMEOUT"`
		SocketTimeout   string `yaml:"socket_timeout" env:"MAIL_SOCKET_TIMEOUT"`
		SendGridAPIKey  string `yaml:"sendgrid_api_key" env:"MAIL_SENDGRID_API_KEY"`
	} `yaml:"mail"`

	Admission struct {
		// Fee is the per-approval amount used for the dashboard revenue estimate
		Fee                           int64  `yaml:"fee" env:"ADMISSION_FEE"`
		RequirePersonalBeforeAcademic bool   `yaml:"require_personal_before_academic" env:"ADMISSION_REQUIRE_PERSONAL_BEFORE_ACADEMIC"`
		ProxyTimeout                  string `yaml:"proxy_timeout" env:"ADMISSION_PROXY_TIMEOUT"`
	} `yaml:"admission"`

	Seed struct {
		Enabled       bool   `yaml:"enabled" env:"SEED_ENABLED"`
		AdminName     string `yaml:"admin_name" env:"SEED_ADMIN_NAME"`
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.Origins = []string{"http://localhost:3000"}
	config.Server.ShutdownTimeout = "5s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "admission"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsPath = "migrations"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "admission.app"
	config.JWT.CookieName = "token"

	config.Auth.EmailPattern = `^[^@\s]+@[^@\s]+\.[^@\s]+$`
	config.Auth.LoginMaxAttempts = 5
	config.Auth.LoginWindow = "15m"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.Enabled = true
	config.Redis.Host = "localhost"
	config.Redis.Port = 6379
	config.Redis.StatsTTL = "1m"

	config.Storage.Driver = StorageDriverLocal
	config.Storage.LocalPath = "uploads"
	config.Storage.PublicBaseURL = "http://localhost:8080/uploads"
	config.Storage.Region = "ap-south-1"
	config.Storage.PresignTTL = "15m"
	config.Storage.MaxUploadSize = 10 << 20
	config.Storage.AllowedTypes = []string{"application/pdf", "image/jpeg", "image/png"}

	config.Mail.Provider = MailProviderLog
	config.Mail.FromName = "Admissions Office"
	config.Mail.SMTPPort = 587
	config.Mail.DialTimeout = "30s"
	config.Mail.GreetingTimeout = "30s"
	config.Mail.SocketTimeout = "60s"

	config.Admission.Fee = 50000
	config.Admission.ProxyTimeout = "30s"

	config.Seed.AdminName = "Administrator"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"login window":                config.Auth.LoginWindow,
		"server shutdown timeout":     config.Server.ShutdownTimeout,
		"redis stats ttl":             config.Redis.StatsTTL,
		"storage presign ttl":         config.Storage.PresignTTL,
		"mail dial timeout":           config.Mail.DialTimeout,
		"mail greeting timeout":       config.Mail.GreetingTimeout,
		"mail socket timeout":         config.Mail.SocketTimeout,
		"proxy timeout":               config.Admission.ProxyTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if _, err := regexp.Compile(config.Auth.EmailPattern); err != nil {
		return fmt.Errorf("invalid auth email pattern: %w", err)
	}

	switch config.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if config.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	switch config.Mail.Provider {
	case MailProviderLog:
	case MailProviderSMTP:
		if config.Mail.SMTPHost == "" {
			return fmt.Errorf("smtp host is required for the smtp mail provider")
		}
	case MailProviderSendGrid:
		if config.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid api key is required for the sendgrid mail provider")
		}
	default:
		return fmt.Errorf("unknown mail provider %q", config.Mail.Provider)
	}

	if config.Seed.Enabled && (config.Seed.AdminEmail == "" || config.Seed.AdminPassword == "") {
		return fmt.Errorf("seed admin email and password are required when seeding is enabled")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// RedisAddr returns host:port for the redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// Duration parses a duration that validateConfig has already checked.
func Duration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}
