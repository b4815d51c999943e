package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"trivia-race-service/internal/domain"
)

func TestLoadAndRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
  pollInterval: 250ms
store:
  backend: file
  raceId: spring
file:
  dir: /tmp/race
race:
  pointsPerCorrect: 5
  questionTime: 45s
  continueMode: button
  completion: point-goal
  targetScore: 25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend() != BackendFile || cfg.RaceID() != "spring" || cfg.BankID() != "default" {
		t.Fatalf("unexpected store settings: backend=%s race=%s bank=%s", cfg.Backend(), cfg.RaceID(), cfg.BankID())
	}
	if cfg.PollInterval() != 250*time.Millisecond {
		t.Fatalf("expected 250ms poll interval, got %v", cfg.PollInterval())
	}

	rules := cfg.RaceRules(8)
	if rules.PointsPerCorrect != 5 || rules.QuestionTime != 45*time.Second || rules.ContinueWindow != 20*time.Second {
		t.Fatalf("unexpected rules: %+v", rules)
	}
	if rules.ContinueMode != domain.ContinueButton || rules.Completion.Mode != domain.CompletePointGoal || rules.Completion.TargetScore != 25 {
		t.Fatalf("unexpected modes: %+v", rules)
	}
	if err := rules.Validate(); err != nil {
		t.Fatalf("rules invalid: %v", err)
	}
}

func TestBackendInference(t *testing.T) {
	var cfg Config
	if cfg.Backend() != BackendMemory {
		t.Fatalf("expected memory default, got %s", cfg.Backend())
	}
	cfg.Redis.Addr = "localhost:6379"
	if cfg.Backend() != BackendRedis {
		t.Fatalf("expected redis, got %s", cfg.Backend())
	}
	cfg.Postgres.URL = "postgres://localhost/race"
	if cfg.Backend() != BackendPostgres {
		t.Fatalf("expected postgres, got %s", cfg.Backend())
	}

	var bad Config
	bad.Store.Backend = "file"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected file backend without dir to fail")
	}
	bad.Store.Backend = "sqlite"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("nonsense", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for invalid input, got %v", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}
