package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"trivia-race-service/internal/domain"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		PollInterval string `yaml:"pollInterval"`
	} `yaml:"server"`
	Store struct {
		Backend string `yaml:"backend"`
		RaceID  string `yaml:"raceId"`
	} `yaml:"store"`
	File struct {
		Dir      string `yaml:"dir"`
		BankPath string `yaml:"bankPath"`
	} `yaml:"file"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Race struct {
		BankID           string `yaml:"bankId"`
		PointsPerCorrect int    `yaml:"pointsPerCorrect"`
		QuestionTime     string `yaml:"questionTime"`
		ContinueWindow   string `yaml:"continueWindow"`
		ContinueMode     string `yaml:"continueMode"`
		Completion       string `yaml:"completion"`
		TargetScore      int    `yaml:"targetScore"`
		MaxRetries       int    `yaml:"maxRetries"`
	} `yaml:"race"`
	Admin struct {
		Secret string `yaml:"secret"`
	} `yaml:"admin"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
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

// Backend returns the configured store backend, inferring it from the configured
// connections when not set explicitly.
func (c Config) Backend() string {
	switch {
	case c.Store.Backend != "":
		return c.Store.Backend
	case c.Postgres.URL != "":
		return BackendPostgres
	case c.Redis.Addr != "":
		return BackendRedis
	case c.File.Dir != "":
		return BackendFile
	default:
		return BackendMemory
	}
}

// RaceID namespaces the shared documents so several races can share one backend.
func (c Config) RaceID() string {
	if c.Store.RaceID == "" {
		return "default"
	}
	return c.Store.RaceID
}

// BankID names the question bank to load.
func (c Config) BankID() string {
	if c.Race.BankID == "" {
		return "default"
	}
	return c.Race.BankID
}

// PollInterval is the cadence of the server-side poll loop.
func (c Config) PollInterval() time.Duration {
	return TTLDuration(c.Server.PollInterval, 500*time.Millisecond)
}

// RaceRules builds the rules for a bank of totalQuestions questions.
func (c Config) RaceRules(totalQuestions int) domain.RaceRules {
	rules := domain.DefaultRules(totalQuestions)
	if c.Race.PointsPerCorrect > 0 {
		rules.PointsPerCorrect = c.Race.PointsPerCorrect
	}
	rules.QuestionTime = TTLDuration(c.Race.QuestionTime, rules.QuestionTime)
	rules.ContinueWindow = TTLDuration(c.Race.ContinueWindow, rules.ContinueWindow)
	if c.Race.ContinueMode != "" {
		rules.ContinueMode = domain.ContinueMode(c.Race.ContinueMode)
	}
	if c.Race.Completion != "" {
		rules.Completion.Mode = domain.CompletionMode(c.Race.Completion)
	}
	rules.Completion.TargetScore = c.Race.TargetScore
	return rules
}

// Validate rejects unknown backends and backends missing their connection settings.
func (c Config) Validate() error {
	switch c.Backend() {
	case BackendMemory:
	case BackendFile:
		if c.File.Dir == "" {
			return fmt.Errorf("file backend requires file.dir")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis backend requires redis.addr")
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres backend requires postgres.url")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
