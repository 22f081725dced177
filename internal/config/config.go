package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server" json:"server"`
	Database    DatabaseConfig    `mapstructure:"database" json:"database"`
	Auth        AuthConfig        `mapstructure:"auth" json:"auth"`
	AI          AIConfig          `mapstructure:"ai" json:"ai"`
	Log         LogConfig         `mapstructure:"log" json:"log"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance" json:"maintenance"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host" json:"host"`
	Port        int    `mapstructure:"port" json:"port"`
	CORSOrigins string `mapstructure:"cors_origins" json:"cors_origins"`
	BodyLimitMB int    `mapstructure:"body_limit_mb" json:"body_limit_mb"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" json:"driver"` // postgres (lib/pq) or pgx
	URL             string        `mapstructure:"url" json:"url,omitempty"`
	Host            string        `mapstructure:"host" json:"host"`
	Port            int           `mapstructure:"port" json:"port"`
	User            string        `mapstructure:"user" json:"user"`
	Password        string        `mapstructure:"password" json:"password"`
	Database        string        `mapstructure:"database" json:"database"`
	SSLMode         string        `mapstructure:"sslmode" json:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" json:"-"`
	Issuer    string `mapstructure:"issuer" json:"issuer"`
}

// AIConfig selects how the companion produces replies. Provider is one of
// canned, openai, openai-compatible, ollama or anthropic.
type AIConfig struct {
	Provider        string        `mapstructure:"provider" json:"provider"`
	APIKey          string        `mapstructure:"api_key" json:"-"`
	BaseURL         string        `mapstructure:"base_url" json:"base_url,omitempty"`
	Model           string        `mapstructure:"model" json:"model"`
	Temperature     float32       `mapstructure:"temperature" json:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens" json:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout" json:"timeout"`
	BreakerFailures int           `mapstructure:"breaker_failures" json:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown" json:"breaker_cooldown"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"` // json or text
}

type MaintenanceConfig struct {
	SessionCleanupSchedule string        `mapstructure:"session_cleanup_schedule" json:"session_cleanup_schedule"`
	AuditPurgeSchedule     string        `mapstructure:"audit_purge_schedule" json:"audit_purge_schedule"`
	AuditRetention         time.Duration `mapstructure:"audit_retention" json:"audit_retention"`
}

// DevJWTSecret is used when no secret is configured
const DevJWTSecret = "change-me-in-production"

// Load reads config.(json|yaml) from the usual places, then applies
// environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path searches
// ., ./config and ~/.afterus.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".afterus"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix("AFTERUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("server.body_limit_mb", 10)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "afterus")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "afterus")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("auth.jwt_secret", DevJWTSecret)
	v.SetDefault("auth.issuer", "afterus")

	v.SetDefault("ai.provider", "canned")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "gpt-3.5-turbo")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 500)
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.breaker_failures", 5)
	v.SetDefault("ai.breaker_cooldown", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("maintenance.session_cleanup_schedule", "0 3 * * *")
	v.SetDefault("maintenance.audit_purge_schedule", "30 3 * * *")
	v.SetDefault("maintenance.audit_retention", 90*24*time.Hour)
}

func loadEnvOverrides(cfg *Config) {
	// Database overrides
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}

	if secret := os.Getenv("AFTERUS_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.AI.APIKey == "" && cfg.AI.Provider == "openai" {
		cfg.AI.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.AI.APIKey == "" && cfg.AI.Provider == "anthropic" {
		cfg.AI.APIKey = key
	}
}

// Addr is the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// Origins splits the comma-separated CORS origins
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// UsesDevSecret reports whether the JWT secret was left at its default
func (a AuthConfig) UsesDevSecret() bool {
	return a.JWTSecret == DevJWTSecret
}
