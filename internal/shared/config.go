package shared

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"

	"stay_search/internal/search"
)

type Config struct {
	AppEnv      string `env:"APP_ENV"      envDefault:"prod"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	HTTPAddr    string `env:"HTTP_ADDR"    envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9100"`

	MySQLDSN  string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/staysearch?parseTime=true&charset=utf8mb4&loc=UTC"`
	RedisAddr string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB"       envDefault:"0"`

	FeedBase string `env:"FEED_BASE_URL" envDefault:"http://localhost:8090/v1"`
	FeedKey  string `env:"FEED_API_KEY"`
	FeedRPS  int    `env:"FEED_RPS"      envDefault:"5"`
	Workers  int    `env:"INGEST_WORKERS" envDefault:"8"`

	CacheTTLSeconds       int    `env:"CACHE_TTL_SECONDS"       envDefault:"900"`
	AliasFile             string `env:"ALIAS_FILE"`
	TieBreak              string `env:"SEARCH_TIE_BREAK"        envDefault:"none"`
	ReloadIntervalSeconds int    `env:"RELOAD_INTERVAL_SECONDS" envDefault:"300"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if _, ok := search.ParseTieBreak(c.TieBreak); !ok {
		return Config{}, fmt.Errorf("config: SEARCH_TIE_BREAK must be none or id, got %q", c.TieBreak)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.FeedKey == "" {
		log.Warn().Msg("FEED_API_KEY is empty")
	}
	return c, nil
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) ReloadInterval() time.Duration {
	return time.Duration(c.ReloadIntervalSeconds) * time.Second
}

// SearchOptions translates search tuning knobs into engine options.
func (c Config) SearchOptions() []search.Option {
	tb, _ := search.ParseTieBreak(c.TieBreak)
	return []search.Option{search.WithTieBreak(tb)}
}
