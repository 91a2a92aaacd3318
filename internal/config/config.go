package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Postgres PostgresConfig `yaml:"postgres" envPrefix:"POSTGRES_"`
	Quiz     QuizConfig     `yaml:"quiz" envPrefix:"QUIZ_"`
	Report   ReportConfig   `yaml:"report" envPrefix:"REPORT_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	CORS     CORSConfig     `yaml:"cors" envPrefix:"CORS_"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"URL"`
}

// QuizConfig controls how long quiz content stays cached.
type QuizConfig struct {
	TTL string `yaml:"ttl" env:"TTL"`
}

// ReportConfig controls how long a computed statistics report stays cached.
type ReportConfig struct {
	TTL string `yaml:"ttl" env:"TTL"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins" env:"ORIGINS" envSeparator:","`
}

// Load reads YAML config from path, then applies QUIZSTATS_* environment
// overrides. A missing file is not an error so the service can run from
// environment variables alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "QUIZSTATS_"}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
