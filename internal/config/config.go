package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

// Source picks the upstream data origin. Mock wins over live, live over the
// scraped feed; the choice is made once per process.
type Source struct {
	UseMock     bool   `json:"use_mock"`
	UseLive     bool   `json:"use_live"`
	FeedBaseURL string `json:"feed_base_url"`
	YahooBase   string `json:"yahoo_base_url"`
}

type Watchlist struct {
	Dir      string `json:"dir"`
	Disabled bool   `json:"disabled"`
}

type Config struct {
	Server    Server    `json:"server"`
	Source    Source    `json:"source"`
	Watchlist Watchlist `json:"watchlist"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Source: Source{
			UseLive:     true,
			FeedBaseURL: "https://api.genelpara.com",
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("BORSA_USE_MOCK"); v != "" {
		if b, ok := parseBool(v); ok {
			cfg.Source.UseMock = b
		}
	}
	if v := os.Getenv("BORSA_USE_LIVE"); v != "" {
		if b, ok := parseBool(v); ok {
			cfg.Source.UseLive = b
		}
	}
	if v := os.Getenv("BORSA_FEED_URL"); v != "" {
		cfg.Source.FeedBaseURL = v
	}
	if v := os.Getenv("BORSA_YAHOO_URL"); v != "" {
		cfg.Source.YahooBase = v
	}
	if v := os.Getenv("BORSA_WATCHLIST_DIR"); v != "" {
		cfg.Watchlist.Dir = v
	}
	if v := os.Getenv("BORSA_WATCHLIST_DISABLED"); v != "" {
		if b, ok := parseBool(v); ok {
			cfg.Watchlist.Disabled = b
		}
	}
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true, true
	case "0", "false", "no", "n":
		return false, true
	}
	return false, false
}
