// Package config assembles server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/algotutor/internal/admission"
	"github.com/abhisek/algotutor/internal/llm"
	"github.com/abhisek/algotutor/internal/prompt"
	"github.com/abhisek/algotutor/internal/session"
	"github.com/abhisek/algotutor/internal/store"
)

// Config holds everything `serve` needs.
type Config struct {
	Addr    string
	LogMode string

	DBDriver string
	DB       string

	// CatalogPath is empty for the embedded catalog.
	CatalogPath string

	ModePolicy          session.ModePolicy
	InstructionLanguage string

	RateLimit admission.Config
	RedisAddr string

	// CORSOrigins is empty to allow the local dev servers only.
	CORSOrigins []string

	LLM llm.Config
}

// LoadDotEnv loads path (".env" when empty) into the environment without
// overriding variables that are already set. A missing file is fine.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the TUTOR_* variables over the defaults and validates the
// result.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:                listenAddr(),
		LogMode:             getEnv("TUTOR_LOG_MODE", "dev"),
		DBDriver:            getEnv("TUTOR_DB_DRIVER", store.DriverSQLite),
		DB:                  os.Getenv("TUTOR_DB"),
		CatalogPath:         os.Getenv("TUTOR_CATALOG"),
		ModePolicy:          session.ModePolicy(getEnv("TUTOR_MODE_POLICY", string(session.PolicyReprobe))),
		InstructionLanguage: getEnv("TUTOR_INSTRUCTION_LANGUAGE", prompt.DefaultInstructionLanguage),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		CORSOrigins:         getEnvList("TUTOR_CORS_ORIGINS"),
		LLM:                 llm.ResolveConfig(),
	}

	var err error
	rl := admission.DefaultConfig()
	if rl.Max, err = getEnvInt("TUTOR_RATE_LIMIT_MAX", rl.Max); err != nil {
		return nil, err
	}
	if rl.Window, err = getEnvDuration("TUTOR_RATE_LIMIT_WINDOW", rl.Window); err != nil {
		return nil, err
	}
	cfg.RateLimit = rl

	if cfg.DB == "" && cfg.DBDriver == store.DriverSQLite {
		if cfg.DB, err = store.DefaultDBPath(); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

// Validate returns the first problem found, naming the variable to fix.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("TUTOR_ADDR must not be empty")
	}
	switch c.LogMode {
	case "dev", "prod", "production":
	default:
		return fmt.Errorf("TUTOR_LOG_MODE must be dev or prod, got %q", c.LogMode)
	}
	switch c.DBDriver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return fmt.Errorf("TUTOR_DB_DRIVER must be %s or %s, got %q", store.DriverSQLite, store.DriverPostgres, c.DBDriver)
	}
	if c.DB == "" {
		return fmt.Errorf("TUTOR_DB is required for the %s driver", c.DBDriver)
	}
	if _, err := session.ParseModePolicy(string(c.ModePolicy)); err != nil {
		return fmt.Errorf("TUTOR_MODE_POLICY: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("TUTOR_RATE_LIMIT_*: %w", err)
	}
	return c.LLM.Validate()
}

// listenAddr prefers TUTOR_ADDR, then PORT as ":PORT", then ":3000".
func listenAddr() string {
	if v := os.Getenv("TUTOR_ADDR"); v != "" {
		return v
	}
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return ":3000"
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return i, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 10m, got %q", key, v)
	}
	return d, nil
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
