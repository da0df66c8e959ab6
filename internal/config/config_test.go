package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/quizcraft/internal/questiongen"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("QUIZCRAFT_ADDR", ":8080")
	t.Setenv("QUIZCRAFT_STORE", "mongo")
	t.Setenv("QUIZCRAFT_CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("QUIZCRAFT_EASY_BELOW", "30")
	t.Setenv("QUIZCRAFT_HARD_ABOVE", "90")
	t.Setenv("QUIZCRAFT_GEN_MODE", "json")
	t.Setenv("QUIZCRAFT_GEN_MAX_QUESTIONS", "10")
	t.Setenv("QUIZCRAFT_TOKEN_TTL", "1h")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Store != StoreMongo {
		t.Errorf("addr/store = %q/%q", cfg.Addr, cfg.Store)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.Thresholds.EasyBelow != 30 || cfg.Thresholds.HardAbove != 90 {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Generation.Mode != questiongen.ModeJSON || cfg.Generation.MaxQuestions != 10 {
		t.Errorf("Generation = %+v", cfg.Generation)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v", cfg.TokenTTL)
	}
}

func TestFromEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv("QUIZCRAFT_EASY_BELOW", "forty")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "postgres" }},
		{"mongo without uri", func(c *Config) { c.Store = StoreMongo; c.MongoURI = "" }},
		{"inverted thresholds", func(c *Config) { c.Thresholds.EasyBelow = 80; c.Thresholds.HardAbove = 20 }},
		{"bad generation mode", func(c *Config) { c.Generation.Mode = "xml" }},
		{"zero reap interval", func(c *Config) { c.ReapInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("QUIZCRAFT_JWT_SECRET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUIZCRAFT_JWT_SECRET", "")
	os.Unsetenv("QUIZCRAFT_JWT_SECRET")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "from-file" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
	os.Unsetenv("QUIZCRAFT_JWT_SECRET")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}
}
