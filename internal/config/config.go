// Package config collects the environment the binary runs with. Every
// setting has a default so the server starts with no environment at all.
package config

import (
	"os"
	"time"
)

type Config struct {
	Port            string
	DBPath          string
	LogLevel        string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PostmarkToken   string
	EmailFrom       string
	SweepInterval   time.Duration
}

func Load() Config {
	cfg := Config{
		Port:            getenv("EVENLY_PORT", "8080"),
		DBPath:          getenv("EVENLY_DB_PATH", "evenly.db"),
		LogLevel:        getenv("EVENLY_LOG_LEVEL", "info"),
		VAPIDPublicKey:  os.Getenv("EVENLY_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("EVENLY_VAPID_PRIVATE_KEY"),
		PostmarkToken:   os.Getenv("EVENLY_POSTMARK_TOKEN"),
		EmailFrom:       getenv("EVENLY_EMAIL_FROM", "boosts@evenly.app"),
		SweepInterval:   15 * time.Minute,
	}
	if v := os.Getenv("EVENLY_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
