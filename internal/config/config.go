package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is everything botpanel reads from the environment. A .env
// file in the working directory is loaded first if present.
type Config struct {
	APIURL string `env:"BOTPANEL_API_URL" envDefault:"https://api.robloxbot.cc"`
	// APIKey is the shared static key the backend expects on /api/*
	// routes. It gates casual abuse, not identity; identity is the
	// per-session username verification.
	APIKey string `env:"BOTPANEL_API_KEY"`

	// LogFile receives JSON log lines; the TUI owns the terminal so
	// nothing may log to stderr while it runs. Empty disables logging.
	LogFile string `env:"BOTPANEL_LOG_FILE" envDefault:"botpanel.log"`

	// CachePath is the sqlite file holding remembered usernames.
	CachePath string `env:"BOTPANEL_CACHE_PATH" envDefault:"botpanel-identities.db"`

	RosterInterval     time.Duration `env:"BOTPANEL_ROSTER_INTERVAL" envDefault:"5s"`
	NowPlayingInterval time.Duration `env:"BOTPANEL_NOW_PLAYING_INTERVAL" envDefault:"2s"`
	QueueInterval      time.Duration `env:"BOTPANEL_QUEUE_INTERVAL" envDefault:"5s"`

	// RosterRetries is extra attempts per roster cycle; RosterStaleAfter
	// marks the roster stale when no fresh result lands in time.
	RosterRetries    int           `env:"BOTPANEL_ROSTER_RETRIES" envDefault:"3"`
	RosterStaleAfter time.Duration `env:"BOTPANEL_ROSTER_STALE_AFTER" envDefault:"4s"`
}

// Load reads .env (best effort) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load() // missing .env is fine
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
