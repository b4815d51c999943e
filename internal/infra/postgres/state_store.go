package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-race-service/internal/domain"
)

// StateStore keeps the RaceState as a single JSONB row per race.
type StateStore struct {
	pool   *pgxpool.Pool
	raceID string
}

func NewStateStore(pool *pgxpool.Pool, raceID string) *StateStore {
	return &StateStore{pool: pool, raceID: raceID}
}

func (s *StateStore) LoadState(ctx context.Context) (domain.RaceState, error) {
	var (
		raw     []byte
		version int64
	)
	err := s.pool.QueryRow(ctx, `SELECT doc, version FROM race_states WHERE race_id=$1`, s.raceID).Scan(&raw, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewRaceState(), nil
	}
	if err != nil {
		return domain.NewRaceState(), fmt.Errorf("load race state: %w", err)
	}

	var doc domain.RaceState
	if err := json.Unmarshal(raw, &doc); err != nil {
		doc = domain.NewRaceState()
	}
	domain.EnsureKeys(&doc)
	doc.Version = version
	return doc, nil
}

// SaveState upserts the row only while its version still matches the loaded one.
func (s *StateStore) SaveState(ctx context.Context, doc domain.RaceState) error {
	expected := doc.Version
	doc.Version++
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO race_states (race_id, doc, version, updated_at)
		VALUES ($1, $2::jsonb, $3, now())
		ON CONFLICT (race_id) DO UPDATE
		SET doc = EXCLUDED.doc, version = EXCLUDED.version, updated_at = EXCLUDED.updated_at
		WHERE race_states.version = $4`,
		s.raceID, string(data), doc.Version, expected)
	if err != nil {
		return fmt.Errorf("save race state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}
