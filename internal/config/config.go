package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the service reads at startup.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
	Jobs     JobsConfig     `yaml:"jobs"`
}

type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	OpsAddr     string   `yaml:"ops_addr"` // empty disables the ops listener
	CORSOrigins []string `yaml:"cors_origins"`
	GinMode     string   `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"` // postgres or sqlite
	URL        string `yaml:"url"`
	SQLitePath string `yaml:"sqlite_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

type SecurityConfig struct {
	PinHashing string `yaml:"pin_hashing"` // plain or bcrypt
}

type JobsConfig struct {
	SummarySchedule string `yaml:"summary_schedule"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	PinsPlain  = "plain"
	PinsBcrypt = "bcrypt"
)

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:        ":8080",
			OpsAddr:     ":8081",
			CORSOrigins: []string{"http://localhost:3000"},
			GinMode:     "release",
		},
		Database: DatabaseConfig{
			Driver:     DriverPostgres,
			SQLitePath: "bank.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			PinHashing: PinsPlain,
		},
		Jobs: JobsConfig{
			SummarySchedule: "@hourly",
		},
	}
}

// Load reads .env (if present), then the YAML file at path (if path is not
// empty, falling back to BANK_CONFIG), then environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("BANK_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BANK_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v, ok := os.LookupEnv("BANK_OPS_ADDR"); ok {
		c.HTTP.OpsAddr = v
	}
	if v := os.Getenv("BANK_CORS_ORIGINS"); v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("BANK_GIN_MODE"); v != "" {
		c.HTTP.GinMode = v
	}

	if v := os.Getenv("BANK_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("BANK_DATABASE_URL"); v != "" {
		c.Database.URL = v
	} else if host := os.Getenv("DB_HOST"); host != "" {
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		c.Database.URL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, port, os.Getenv("DB_NAME"))
	}
	if v := os.Getenv("BANK_SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}

	if v := os.Getenv("BANK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BANK_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("BANK_PIN_HASHING"); v != "" {
		c.Security.PinHashing = v
	}
	if v, ok := os.LookupEnv("BANK_SUMMARY_SCHEDULE"); ok {
		c.Jobs.SummarySchedule = v
	}
}

// Validate reports the first setting the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("database url is required for the postgres driver")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("sqlite path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Security.PinHashing {
	case PinsPlain, PinsBcrypt:
	default:
		return fmt.Errorf("unknown pin hashing mode %q", c.Security.PinHashing)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	switch c.HTTP.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown gin mode %q", c.HTTP.GinMode)
	}

	if c.HTTP.Addr == "" {
		return errors.New("http addr is required")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
