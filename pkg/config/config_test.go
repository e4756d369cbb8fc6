package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Environment:    "test",
		Port:           "3000",
		SQLitePath:     ":memory:",
		JWTSecret:      "secret",
		RequestTimeout: time.Second,
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatal(err)
	}

	samples := [...]struct {
		name   string
		mutate func(*Config)
	}{
		{"empty secret", func(c *Config) { c.JWTSecret = "" }},
		{"no database", func(c *Config) { c.SQLitePath = ""; c.PostgresDSN = "" }},
		{"no port", func(c *Config) { c.Port = "" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
	}

	for _, s := range samples {
		cfg := validConfig()
		s.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", s.name)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "  s3cret \n")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("DEBUG", "true")

	cfg := LoadConfig()
	if cfg.JWTSecret != "s3cret" {
		t.Fatalf("secret not trimmed: %q", cfg.JWTSecret)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.RequestTimeout)
	}
	if cfg.Debug {
		t.Fatal("debug must be off in production")
	}
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Fatal("environment helpers disagree")
	}
}
