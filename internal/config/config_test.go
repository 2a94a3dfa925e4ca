package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c := Load()

	if c.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", c.ListenAddr)
	}
	if c.MongoDatabase != "latroca" {
		t.Errorf("MongoDatabase = %q, want latroca", c.MongoDatabase)
	}
	if c.JWTTTL != 3*time.Hour {
		t.Errorf("JWTTTL = %s, want 3h", c.JWTTTL)
	}
	if c.ModerationTimeout != 10*time.Second {
		t.Errorf("ModerationTimeout = %s, want 10s", c.ModerationTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("JWT_TTL", "45m")
	t.Setenv("MODERATION_TIMEOUT", "5")

	c := Load()
	if c.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q, want :9999", c.ListenAddr)
	}
	if c.JWTTTL != 45*time.Minute {
		t.Errorf("JWTTTL = %s, want 45m", c.JWTTTL)
	}
	if c.ModerationTimeout != 5*time.Second {
		t.Errorf("ModerationTimeout = %s, want 5s (bare int is seconds)", c.ModerationTimeout)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWTSecret:         strings.Repeat("s", 32),
		HuggingFaceAPIKey: "hf_x",
		MongoURI:          "mongodb://localhost:27017",
		ModerationTimeout: time.Second,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }},
		{"missing hf key", func(c *Config) { c.HuggingFaceAPIKey = "" }},
		{"missing mongo uri", func(c *Config) { c.MongoURI = "" }},
		{"zero timeout", func(c *Config) { c.ModerationTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("want validation error, got nil")
			}
		})
	}
}
