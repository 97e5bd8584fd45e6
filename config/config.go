package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/patient"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Store      StoreConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Auth       AuthConfig
	Log        LogConfig
	Tracing    TracingConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Scheduling SchedulingConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type StoreConfig struct {
	// Driver is "postgres" or "memory". The memory store loses everything on restart.
	Driver string
}

type DatabaseConfig struct {
	Host               string
	Port               int
	Name               string
	User               string
	Password           string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	// AutoMigrate runs migrations when the server starts.
	AutoMigrate bool
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

// AuthConfig describes the single practice account.
type AuthConfig struct {
	Enabled           bool
	Username          string
	PasswordHash      string // bcrypt
	MaxFailedAttempts int
	LockDuration      time.Duration
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	// Endpoint is the OTLP/HTTP collector host:port.
	Endpoint   string
	Insecure   bool
	SampleRate float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	// Global Rate limit per IP
	RequestsPerSecond float64
	BurstSize         int
	// Auth endpoints have stricter limits
	AuthRequestsPerMinute int
}

type SchedulingConfig struct {
	PatientDeletePolicy patient.DeletePolicy
	// Location anchors the visible window and form-style start times.
	Location *time.Location
}

// Load reads configuration from the environment. When envFile names an
// existing file its KEY=VALUE pairs are used as defaults underneath the
// environment.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", envFile, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}
	e := env{v: v}

	var problems []string

	policy, err := patient.ParseDeletePolicy(e.get("PATIENT_DELETE_POLICY", string(patient.DeleteRestrict)))
	if err != nil {
		problems = append(problems, "PATIENT_DELETE_POLICY: "+err.Error())
	}
	tz := e.get("PRACTICE_TIMEZONE", "Europe/Paris")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		problems = append(problems, fmt.Sprintf("PRACTICE_TIMEZONE %q: %v", tz, err))
		loc = time.UTC
	}

	cfg := &Config{
		App: AppConfig{
			Name:        e.get("APP_NAME", "cabinet"),
			Environment: e.get("APP_ENV", "development"),
			Version:     e.get("APP_VERSION", "0.0.0"),
		},
		Server: ServerConfig{
			Host:            e.get("SERVER_HOST", "0.0.0.0"),
			Port:            e.getInt("SERVER_PORT", 8080),
			ReadTimeout:     e.getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    e.getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     e.getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: e.getDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(e.get("STORE_DRIVER", StoreDriverPostgres)),
		},
		Database: DatabaseConfig{
			Host:               e.get("DB_HOST", "localhost"),
			Port:               e.getInt("DB_PORT", 5432),
			Name:               e.get("DB_NAME", "cabinet"),
			User:               e.get("DB_USER", "cabinet"),
			Password:           e.get("DB_PASSWORD", ""),
			SSLMode:            e.get("DB_SSLMODE", "require"),
			MaxOpenConns:       e.getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       e.getInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:    e.getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime:    e.getDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			SlowQueryThreshold: e.getDuration("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
			AutoMigrate:        e.getBool("DB_AUTO_MIGRATE", false),
		},
		JWT: JWTConfig{
			Secret:          e.get("JWT_SECRET", ""),
			AccessTokenTTL:  e.getDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTokenTTL: e.getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
			Issuer:          e.get("JWT_ISSUER", "cabinet-api"),
		},
		Auth: AuthConfig{
			Enabled:           e.getBool("AUTH_ENABLED", false),
			Username:          e.get("AUTH_USERNAME", ""),
			PasswordHash:      e.get("AUTH_PASSWORD_HASH", ""),
			MaxFailedAttempts: e.getInt("AUTH_MAX_FAILED_ATTEMPTS", 5),
			LockDuration:      e.getDuration("AUTH_LOCK_DURATION", 15*time.Minute),
		},
		Log: LogConfig{
			Level:      e.get("LOG_LEVEL", "info"),
			Format:     e.get("LOG_FORMAT", "json"),
			OutputPath: e.get("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:     e.getBool("TRACING_ENABLED", false),
			ServiceName: e.get("TRACING_SERVICE_NAME", "cabinet-api"),
			Endpoint:    e.get("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Insecure:    e.getBool("TRACING_INSECURE", true),
			SampleRate:  e.getFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		CORS: CORSConfig{
			AllowedOrigins: e.getSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods: e.getSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: e.getSlice("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type", "X-Request-ID"}),
			MaxAge:         e.getDuration("CORS_MAX_AGE", 12*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond:     e.getFloat("RATE_LIMIT_RPS", 100),
			BurstSize:             e.getInt("RATE_LIMIT_BURST", 200),
			AuthRequestsPerMinute: e.getInt("RATE_LIMIT_AUTH_RPM", 10),
		},
		Scheduling: SchedulingConfig{
			PatientDeletePolicy: policy,
			Location:            loc,
		},
	}

	problems = append(problems, validate(cfg)...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("configuration errors:\n  - %s", strings.Join(problems, "\n  - "))
	}

	return cfg, nil
}

// validate enforces production security requirements.
func validate(cfg *Config) []string {
	var errs []string

	switch cfg.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory))
	}

	if cfg.Auth.Enabled {
		if cfg.JWT.Secret == "" {
			errs = append(errs, "JWT_SECRET is required when AUTH_ENABLED=true")
		} else if len(cfg.JWT.Secret) < 32 && cfg.App.Environment == "production" {
			errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
		}
		if cfg.Auth.Username == "" || cfg.Auth.PasswordHash == "" {
			errs = append(errs, "AUTH_USERNAME and AUTH_PASSWORD_HASH are required when AUTH_ENABLED=true")
		}
	} else if cfg.App.Environment == "production" {
		errs = append(errs, "AUTH_ENABLED=false is not allowed in production")
	}

	if cfg.Store.Driver == StoreDriverPostgres {
		if cfg.Database.Password == "" && cfg.App.Environment != "development" {
			errs = append(errs, "DB_PASSWORD is required in non-development environments")
		}
		if cfg.Database.SSLMode == "disable" && cfg.App.Environment == "production" {
			errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
		}
	} else if cfg.App.Environment == "production" {
		errs = append(errs, "STORE_DRIVER=memory is not allowed in production")
	}

	if cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.BurstSize <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return errs
}

// env reads typed values through viper, falling back when a key is unset or malformed.
type env struct {
	v *viper.Viper
}

func (e env) lookup(key string) (string, bool) {
	if !e.v.IsSet(key) {
		return "", false
	}
	return e.v.GetString(key), true
}

func (e env) get(key, fallback string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return fallback
}

func (e env) getInt(key string, fallback int) int {
	if v, ok := e.lookup(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func (e env) getFloat(key string, fallback float64) float64 {
	if v, ok := e.lookup(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func (e env) getBool(key string, fallback bool) bool {
	if v, ok := e.lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func (e env) getDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := e.lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func (e env) getSlice(key string, fallback []string) []string {
	if v, ok := e.lookup(key); ok {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
