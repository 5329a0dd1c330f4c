package config

import (
	"os"
	"time"
)

type Config struct {
	Addr           string
	RedisURL       string
	SigningKeyPEM  string // path to an EC private key; empty generates a dev key
	ProfileAPIURL  string
	ProfileTimeout time.Duration
}

func Load() Config {
	addr := envString("GUILDPOST_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":9000"
		}
	}
	return Config{
		Addr:           addr,
		RedisURL:       envString("GUILDPOST_REDIS_URL", "redis://localhost:6379/0"),
		SigningKeyPEM:  envString("GUILDPOST_SIGNING_KEY", ""),
		ProfileAPIURL:  envString("GUILDPOST_PROFILE_API", "https://api.multiversx.com"),
		ProfileTimeout: envDuration("GUILDPOST_PROFILE_TIMEOUT", 3*time.Second),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
