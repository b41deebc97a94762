package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Quotes struct {
	Endpoint            string `yaml:"endpoint"`
	RefreshIntervalSec  int    `yaml:"refresh_interval_sec"`
	RequestTimeoutSec   int    `yaml:"request_timeout_sec"`
	MinFetchIntervalSec int    `yaml:"min_fetch_interval_sec"`
	MaxDisplay          int    `yaml:"max_display"`
}

type Search struct {
	SuggestEndpoint  string `yaml:"suggest_endpoint"`
	SmartboxEndpoint string `yaml:"smartbox_endpoint"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

type Storage struct {
	WatchlistPath string `yaml:"watchlist_path"`
}

type Logging struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server  Server  `yaml:"server"`
	Quotes  Quotes  `yaml:"quotes"`
	Search  Search  `yaml:"search"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

func Default() Config {
	return Config{
		Server: Server{Host: "127.0.0.1", Port: 8080},
		Quotes: Quotes{
			RefreshIntervalSec: 5,
			RequestTimeoutSec:  5,
			MaxDisplay:         5,
		},
		Search:  Search{TimeoutSec: 5},
		Storage: Storage{WatchlistPath: "watchlist.json"},
		Logging: Logging{Level: "info"},
	}
}

// Load reads YAML config from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// RefreshInterval returns the refresh period with a 5s floor guard against
// zero or negative values from a hand-edited file.
func (c Config) RefreshInterval() time.Duration {
	if c.Quotes.RefreshIntervalSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Quotes.RefreshIntervalSec) * time.Second
}

func (c Config) RequestTimeout() time.Duration {
	if c.Quotes.RequestTimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Quotes.RequestTimeoutSec) * time.Second
}

func (c Config) SearchTimeout() time.Duration {
	if c.Search.TimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Search.TimeoutSec) * time.Second
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.Port = x
		}
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("WATCHLIST_PATH"); v != "" {
		cfg.Storage.WatchlistPath = v
	}
	if v := os.Getenv("REFRESH_INTERVAL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Quotes.RefreshIntervalSec = x
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Quotes.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("QUOTES_ENDPOINT"); v != "" {
		cfg.Quotes.Endpoint = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
