// Package config loads API server configuration from environment variables.
// Every setting has a sensible default for local development; secrets
// (JWT signing key, provider credentials) have none and are validated at
// startup so a misconfigured server fails fast instead of at first use.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all settings for the API server and the moderator worker.
type Config struct {
	ListenAddr string

	MongoURI      string
	MongoDatabase string

	RedisAddr string
	NATSURL   string // empty disables the moderation audit trail

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	HuggingFaceAPIKey  string
	HuggingFaceBaseURL string
	ModerationTimeout  time.Duration
	VerdictCacheTTL    time.Duration
	BlockedWordsFile   string // empty uses the built-in list
	AllowedWordsFile   string // empty uses the built-in list

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	FirebaseCredentials string // path to the service account JSON
	GoogleClientID      string // OAuth client ID for Google sign-in
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "latroca"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		NATSURL:   os.Getenv("NATS_URL"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   getEnv("JWT_ISSUER", "latroca-api"),
		JWTAudience: getEnv("JWT_AUDIENCE", "latroca-app"),
		JWTTTL:      getDuration("JWT_TTL", 3*time.Hour),

		HuggingFaceAPIKey:  os.Getenv("HF_API_KEY"),
		HuggingFaceBaseURL: os.Getenv("HF_BASE_URL"),
		ModerationTimeout:  getDuration("MODERATION_TIMEOUT", 10*time.Second),
		VerdictCacheTTL:    getDuration("VERDICT_CACHE_TTL", 10*time.Minute),
		BlockedWordsFile:   os.Getenv("BLOCKED_WORDS_FILE"),
		AllowedWordsFile:   os.Getenv("ALLOWED_WORDS_FILE"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
	}
}

// Validate checks the settings the API server cannot run without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("config: JWT_SECRET must be at least 32 bytes")
	}
	if c.HuggingFaceAPIKey == "" {
		return fmt.Errorf("config: HF_API_KEY is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("config: MONGO_URI is required")
	}
	if c.ModerationTimeout <= 0 {
		return fmt.Errorf("config: MODERATION_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Plain integers are taken as seconds.
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
