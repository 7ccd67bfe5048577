package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	domainerr "github.com/hotellisting/hotellisting-api/domain/error"
)

// MinSigningKeyBytes is the shortest HMAC key accepted for HS256.
const MinSigningKeyBytes = 32

// Store backends.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	DatabaseURL   string
	RedisURL      string
	RunMigrations bool

	JWTIssuer          string
	JWTAudience        string
	JWTSecret          string
	AccessTokenMinutes int
	RefreshTokenTTL    time.Duration
	RefreshTokenSalt   string
	BcryptCost         int

	IdentityStore   string
	NamedTokenStore string

	ServerHost  string
	ServerPort  string
	Environment string

	LogLevel  string
	LogFormat string

	// CORSAllowedOrigins empty disables CORS handling.
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
}

// Load reads .env (if present) and the process environment, then validates.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RunMigrations:      getEnvOrDefaultBool("RUN_MIGRATIONS", true),
		JWTIssuer:          os.Getenv("JWT_ISSUER"),
		JWTAudience:        os.Getenv("JWT_AUDIENCE"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvOrDefaultInt("ACCESS_TOKEN_MINUTES", 10),
		RefreshTokenTTL:    getEnvOrDefaultDuration("REFRESH_TOKEN_TTL", 720*time.Hour),
		RefreshTokenSalt:   os.Getenv("REFRESH_TOKEN_SALT"),
		BcryptCost:         getEnvOrDefaultInt("BCRYPT_COST", 10),
		IdentityStore:      strings.ToLower(getEnvOrDefault("IDENTITY_STORE", StorePostgres)),
		NamedTokenStore:    strings.ToLower(getEnvOrDefault("NAMED_TOKEN_STORE", StorePostgres)),
		ServerHost:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		ServerPort:         getEnvOrDefault("SERVER_PORT", "8080"),
		Environment:        getEnvOrDefault("ENV", "development"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvOrDefault("LOG_FORMAT", "json"),

		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS"),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks everything that must be right before the service starts.
// Every failure wraps domainerr.ErrConfiguration.
func (c *Config) Validate() error {
	var problems []string

	if c.JWTIssuer == "" {
		problems = append(problems, "JWT_ISSUER is required")
	}
	if c.JWTAudience == "" {
		problems = append(problems, "JWT_AUDIENCE is required")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if len(c.JWTSecret) < MinSigningKeyBytes {
		problems = append(problems, fmt.Sprintf("JWT_SECRET must be at least %d bytes", MinSigningKeyBytes))
	}
	if c.AccessTokenMinutes <= 0 {
		problems = append(problems, "ACCESS_TOKEN_MINUTES must be positive")
	}
	if c.RefreshTokenTTL < 0 {
		problems = append(problems, "REFRESH_TOKEN_TTL must not be negative")
	}
	if c.RefreshTokenSalt == "" {
		problems = append(problems, "REFRESH_TOKEN_SALT is required")
	}

	switch c.IdentityStore {
	case StorePostgres, StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("IDENTITY_STORE %q is not supported", c.IdentityStore))
	}
	switch c.NamedTokenStore {
	case StorePostgres, StoreRedis, StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("NAMED_TOKEN_STORE %q is not supported", c.NamedTokenStore))
	}
	if c.UsesPostgres() && c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required for the postgres store")
	}
	if c.NamedTokenStore == StoreRedis && c.RedisURL == "" {
		problems = append(problems, "REDIS_URL is required for the redis store")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domainerr.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) UsesPostgres() bool {
	return c.IdentityStore == StorePostgres || c.NamedTokenStore == StorePostgres
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		// bare numbers are seconds
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty items.
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
