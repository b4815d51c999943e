package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"trivia-race-service/internal/app"
	"trivia-race-service/internal/config"
	"trivia-race-service/internal/domain"
	"trivia-race-service/internal/infra/file"
	"trivia-race-service/internal/infra/memory"
	pgstore "trivia-race-service/internal/infra/postgres"
	redisstore "trivia-race-service/internal/infra/redis"
)

// backend holds the stores of the configured backend plus whatever must be closed on exit.
type backend struct {
	states  app.StateStore
	answers app.AnswerLog
	banks   app.BankLoader
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend connects the stores named by cfg.Backend().
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}
	switch cfg.Backend() {
	case config.BackendMemory:
		b.states = memory.NewStateStore()
		b.answers = memory.NewAnswerLog()
	case config.BackendFile:
		states, err := file.NewStateStore(cfg.File.Dir)
		if err != nil {
			return nil, err
		}
		answers, err := file.NewAnswerLog(cfg.File.Dir)
		if err != nil {
			return nil, err
		}
		b.states, b.answers = states, answers
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		ttl := config.TTLDuration(cfg.Redis.TTL, 0)
		b.states = redisstore.NewStateStore(client, cfg.RaceID(), ttl)
		b.answers = redisstore.NewAnswerLog(client, cfg.RaceID(), ttl)
	case config.BackendPostgres:
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.states = pgstore.NewStateStore(pool, cfg.RaceID())
		b.answers = pgstore.NewAnswerLog(pool, cfg.RaceID())
		b.banks = pgstore.NewBankLoader(pool)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend())
	}
	return b, nil
}

// loadBank resolves the question bank: a YAML file wins, then the Postgres bank table,
// then the built-in bank.
func (b *backend) loadBank(ctx context.Context, cfg config.Config) (domain.QuestionBank, error) {
	if cfg.File.BankPath != "" {
		return resolveBank(ctx, cfg.BankID(), file.NewBankLoader(cfg.File.BankPath), nil)
	}
	return resolveBank(ctx, cfg.BankID(), b.banks, defaultBanks())
}

func defaultBanks() app.BankLoader {
	return memory.NewStaticBankLoader(map[string]domain.QuestionBank{
		memory.DefaultBankID: memory.DefaultBank(),
	})
}

// resolveBank loads bankID from primary, falling back when primary is unset or does not
// hold the bank. Any other failure is returned as is.
func resolveBank(ctx context.Context, bankID string, primary, fallback app.BankLoader) (domain.QuestionBank, error) {
	var (
		bank domain.QuestionBank
		err  error = domain.ErrBankNotFound
	)
	if primary != nil {
		bank, err = primary.LoadBank(ctx, bankID)
	}
	if errors.Is(err, domain.ErrBankNotFound) && fallback != nil {
		if primary != nil || bankID != memory.DefaultBankID {
			log.Printf("question bank %q not stored, using the built-in bank", bankID)
		}
		bank, err = fallback.LoadBank(ctx, memory.DefaultBankID)
	}
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("load question bank %q: %w", bankID, err)
	}
	if err := bank.Validate(); err != nil {
		return domain.QuestionBank{}, err
	}
	return bank, nil
}

// newRaceService wires a RaceService on top of the configured backend.
func newRaceService(ctx context.Context, cfg config.Config) (*app.RaceService, *backend, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	bank, err := b.loadBank(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	rules := cfg.RaceRules(bank.Len())
	if err := rules.Validate(); err != nil {
		b.Close()
		return nil, nil, err
	}
	log.Printf("race %q on %s backend: %d questions, %d pts each, %s per question",
		cfg.RaceID(), cfg.Backend(), bank.Len(), rules.PointsPerCorrect, rules.QuestionTime.Round(time.Second))
	return app.NewRaceService(b.states, b.answers, bank, rules, app.Options{MaxRetries: cfg.Race.MaxRetries}), b, nil
}
