// Package config loads application settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/quizcraft/internal/difficulty"
	"github.com/abhisek/quizcraft/internal/questiongen"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config is the application configuration.
type Config struct {
	Env      string
	LogLevel string
	Addr     string

	Store    string
	DBPath   string
	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	AMQPURL       string

	ConsulAddr  string
	ServiceID   string
	ServiceHost string

	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string

	Thresholds difficulty.Thresholds
	Generation questiongen.Config

	// ReapInterval is how often expired sessions are swept.
	ReapInterval time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Env:          "development",
		LogLevel:     "info",
		Addr:         ":5000",
		Store:        StoreSQLite,
		MongoURI:     "mongodb://localhost:27017",
		MongoDB:      "quizcraft",
		ServiceID:    "quizcraft-1",
		ServiceHost:  "localhost",
		TokenTTL:     24 * time.Hour,
		CORSOrigins:  []string{"http://localhost:3000"},
		Thresholds:   difficulty.DefaultThresholds(),
		Generation:   questiongen.DefaultConfig(),
		ReapInterval: 5 * time.Second,
	}
}

// Load reads envFile when it exists and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// FromEnv overlays QUIZCRAFT_* variables on Default.
func FromEnv() (Config, error) {
	cfg := Default()

	str(&cfg.Env, "QUIZCRAFT_ENV")
	str(&cfg.LogLevel, "QUIZCRAFT_LOG_LEVEL")
	str(&cfg.Addr, "QUIZCRAFT_ADDR")
	str(&cfg.Store, "QUIZCRAFT_STORE")
	str(&cfg.DBPath, "QUIZCRAFT_DB")
	str(&cfg.MongoURI, "QUIZCRAFT_MONGO_URI")
	str(&cfg.MongoDB, "QUIZCRAFT_MONGO_DB")
	str(&cfg.RedisAddr, "QUIZCRAFT_REDIS_ADDR")
	str(&cfg.RedisPassword, "QUIZCRAFT_REDIS_PASSWORD")
	str(&cfg.AMQPURL, "QUIZCRAFT_AMQP_URL")
	str(&cfg.ConsulAddr, "QUIZCRAFT_CONSUL_ADDR")
	str(&cfg.ServiceID, "QUIZCRAFT_SERVICE_ID")
	str(&cfg.ServiceHost, "QUIZCRAFT_SERVICE_HOST")
	str(&cfg.JWTSecret, "QUIZCRAFT_JWT_SECRET")

	if v := os.Getenv("QUIZCRAFT_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("QUIZCRAFT_GEN_MODE"); v != "" {
		cfg.Generation.Mode = questiongen.Mode(v)
	}

	var err error
	if cfg.TokenTTL, err = duration("QUIZCRAFT_TOKEN_TTL", cfg.TokenTTL); err != nil {
		return cfg, err
	}
	if cfg.ReapInterval, err = duration("QUIZCRAFT_REAP_INTERVAL", cfg.ReapInterval); err != nil {
		return cfg, err
	}
	if cfg.Thresholds.EasyBelow, err = number("QUIZCRAFT_EASY_BELOW", cfg.Thresholds.EasyBelow); err != nil {
		return cfg, err
	}
	if cfg.Thresholds.HardAbove, err = number("QUIZCRAFT_HARD_ABOVE", cfg.Thresholds.HardAbove); err != nil {
		return cfg, err
	}
	if v := os.Getenv("QUIZCRAFT_GEN_MAX_QUESTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("QUIZCRAFT_GEN_MAX_QUESTIONS: %w", err)
		}
		cfg.Generation.MaxQuestions = n
	}
	return cfg, nil
}

// Validate reports inconsistent settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreMongo:
	default:
		return fmt.Errorf("unknown store %q (want sqlite or mongo)", c.Store)
	}
	if c.Store == StoreMongo && c.MongoURI == "" {
		return fmt.Errorf("QUIZCRAFT_MONGO_URI is required for the mongo store")
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("difficulty thresholds: %w", err)
	}
	if err := c.Generation.Validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("reap interval must be positive")
	}
	return nil
}

// Production reports whether the process runs outside development.
func (c Config) Production() bool {
	return c.Env != "development" && c.Env != "local"
}

func str(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func duration(env string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(env)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", env, err)
	}
	return d, nil
}

func number(env string, def float64) (float64, error) {
	v := os.Getenv(env)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", env, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
