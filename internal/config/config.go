// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/pkg/auth"
	"github.com/gurkanbulca/todoapp/pkg/email"
)

const (
	defaultAccessSecret  = "dev-access-secret-change-in-production"
	defaultRefreshSecret = "dev-refresh-secret-change-in-production"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	Storage  StorageConfig
	Log      LogConfig
	App      AppConfig
	Password PasswordConfig
}

type ServerConfig struct {
	GRPCPort            string
	HTTPPort            string
	Environment         string
	AutoMigrate         bool
	EnableReflection    bool
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	ShutdownTimeout     time.Duration
	HealthProbeInterval time.Duration
}

type DatabaseConfig struct {
	Driver       string // "postgres" or "sqlite"
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	Path         string // sqlite file path
	MaxOpenConns int
	MaxIdleConns int
}

type JWTConfig struct {
	AccessSecret         string
	RefreshSecret        string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

type EmailConfig struct {
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	FromEmail        string
	FromName         string
	ContactRecipient string
	TestingMode      bool
	AppName          string
	BaseURL          string
	SupportEmail     string
}

type StorageConfig struct {
	MediaRoot     string
	MaxUploadSize int64
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	TimeZone        string
	TodosPerPage    int
	TagsPerPage     int
	RecentTodoLimit int
}

type PasswordConfig struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

// Load reads configuration from the environment, optionally layered over
// the YAML file named by CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	accessSecret := firstNonEmpty(v.GetString("jwt_access_secret"), v.GetString("jwt_secret"), defaultAccessSecret)
	refreshSecret := firstNonEmpty(v.GetString("jwt_refresh_secret"), v.GetString("jwt_secret"), defaultRefreshSecret)

	return &Config{
		Server: ServerConfig{
			GRPCPort:            v.GetString("grpc_port"),
			HTTPPort:            v.GetString("http_port"),
			Environment:         v.GetString("environment"),
			AutoMigrate:         v.GetBool("auto_migrate"),
			EnableReflection:    v.GetBool("enable_reflection"),
			ReadTimeout:         v.GetDuration("http_read_timeout"),
			WriteTimeout:        v.GetDuration("http_write_timeout"),
			ShutdownTimeout:     v.GetDuration("shutdown_timeout"),
			HealthProbeInterval: v.GetDuration("health_probe_interval"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(v.GetString("db_driver")),
			Host:         v.GetString("db_host"),
			Port:         v.GetInt("db_port"),
			User:         v.GetString("db_user"),
			Password:     v.GetString("db_password"),
			DBName:       v.GetString("db_name"),
			SSLMode:      v.GetString("db_ssl_mode"),
			Path:         v.GetString("db_path"),
			MaxOpenConns: v.GetInt("db_max_open_conns"),
			MaxIdleConns: v.GetInt("db_max_idle_conns"),
		},
		JWT: JWTConfig{
			AccessSecret:         accessSecret,
			RefreshSecret:        refreshSecret,
			AccessTokenDuration:  v.GetDuration("jwt_access_token_duration"),
			RefreshTokenDuration: v.GetDuration("jwt_refresh_token_duration"),
		},
		Email: EmailConfig{
			SMTPHost:         v.GetString("smtp_host"),
			SMTPPort:         v.GetInt("smtp_port"),
			SMTPUsername:     v.GetString("smtp_username"),
			SMTPPassword:     v.GetString("smtp_password"),
			FromEmail:        v.GetString("email_from"),
			FromName:         v.GetString("email_from_name"),
			ContactRecipient: v.GetString("contact_recipient"),
			TestingMode:      v.GetBool("email_testing_mode"),
			AppName:          v.GetString("app_name"),
			BaseURL:          v.GetString("base_url"),
			SupportEmail:     v.GetString("support_email"),
		},
		Storage: StorageConfig{
			MediaRoot:     v.GetString("media_root"),
			MaxUploadSize: v.GetInt64("max_upload_size"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		App: AppConfig{
			TimeZone:        v.GetString("time_zone"),
			TodosPerPage:    v.GetInt("todos_per_page"),
			TagsPerPage:     v.GetInt("tags_per_page"),
			RecentTodoLimit: v.GetInt("recent_todo_limit"),
		},
		Password: PasswordConfig{
			MinLength:      v.GetInt("password_min_length"),
			RequireUpper:   v.GetBool("password_require_upper"),
			RequireLower:   v.GetBool("password_require_lower"),
			RequireNumber:  v.GetBool("password_require_number"),
			RequireSpecial: v.GetBool("password_require_special"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("grpc_port", "50051")
	v.SetDefault("http_port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("enable_reflection", false)
	v.SetDefault("http_read_timeout", 15*time.Second)
	v.SetDefault("http_write_timeout", 30*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("health_probe_interval", 30*time.Second)

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "todoapp")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("db_path", "todoapp.db")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_access_secret", "")
	v.SetDefault("jwt_refresh_secret", "")
	v.SetDefault("jwt_access_token_duration", 15*time.Minute)
	v.SetDefault("jwt_refresh_token_duration", 7*24*time.Hour)

	v.SetDefault("smtp_host", "localhost")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("email_from", "noreply@example.com")
	v.SetDefault("email_from_name", "Todo App")
	v.SetDefault("contact_recipient", "admin@example.com")
	v.SetDefault("email_testing_mode", false)
	v.SetDefault("app_name", "Todo App")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("support_email", "support@example.com")

	v.SetDefault("media_root", "media")
	v.SetDefault("max_upload_size", 10<<20)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("time_zone", "UTC")
	v.SetDefault("todos_per_page", 10)
	v.SetDefault("tags_per_page", 20)
	v.SetDefault("recent_todo_limit", 5)

	v.SetDefault("password_min_length", 8)
	v.SetDefault("password_require_upper", true)
	v.SetDefault("password_require_lower", true)
	v.SetDefault("password_require_number", true)
	v.SetDefault("password_require_special", false)

	v.SetDefault("config_file", "")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ValidateConfig checks for settings the server cannot start with.
func (c *Config) ValidateConfig() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	if _, err := time.LoadLocation(c.App.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIME_ZONE %q: %w", c.App.TimeZone, err))
	}

	if c.App.TodosPerPage <= 0 || c.App.TagsPerPage <= 0 {
		errs = append(errs, errors.New("page sizes must be positive"))
	}

	if c.Storage.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE must be positive"))
	}

	if c.Password.MinLength < 1 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH must be at least 1"))
	}

	if !c.IsDevelopment() {
		if c.JWT.AccessSecret == defaultAccessSecret || c.JWT.RefreshSecret == defaultRefreshSecret {
			errs = append(errs, errors.New("JWT secrets must be set outside development"))
		}
		if c.JWT.AccessSecret == c.JWT.RefreshSecret {
			errs = append(errs, errors.New("JWT access and refresh secrets must differ"))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Location returns the application time zone; naive timestamps are read in it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		Driver:       c.Database.Driver,
		Host:         c.Database.Host,
		Port:         c.Database.Port,
		User:         c.Database.User,
		Password:     c.Database.Password,
		DBName:       c.Database.DBName,
		SSLMode:      c.Database.SSLMode,
		Path:         c.Database.Path,
		MaxOpenConns: c.Database.MaxOpenConns,
		MaxIdleConns: c.Database.MaxIdleConns,
	}
}

func (c *Config) ToEmailConfig() *email.Config {
	return &email.Config{
		SMTPHost:     c.Email.SMTPHost,
		SMTPPort:     c.Email.SMTPPort,
		SMTPUsername: c.Email.SMTPUsername,
		SMTPPassword: c.Email.SMTPPassword,
		FromEmail:    c.Email.FromEmail,
		FromName:     c.Email.FromName,
		BaseURL:      c.Email.BaseURL,
		AppName:      c.Email.AppName,
		SupportEmail: c.Email.SupportEmail,
	}
}

func (c *Config) PasswordPolicy() auth.PasswordPolicy {
	return auth.PasswordPolicy{
		MinLength:      c.Password.MinLength,
		RequireUpper:   c.Password.RequireUpper,
		RequireLower:   c.Password.RequireLower,
		RequireNumber:  c.Password.RequireNumber,
		RequireSpecial: c.Password.RequireSpecial,
	}
}
