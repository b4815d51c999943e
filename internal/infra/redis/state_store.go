package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-race-service/internal/domain"
)

// StateStore keeps the RaceState as one JSON string shared by every instance.
// Saves are compare-and-set on the document version using WATCH/MULTI, so two
// instances can never silently overwrite each other.
type StateStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewStateStore stores the document under race:{raceID}:state. A zero ttl keeps it forever.
func NewStateStore(client *redis.Client, raceID string, ttl time.Duration) *StateStore {
	return &StateStore{
		client: client,
		key:    stateKey(raceID),
		ttl:    ttl,
	}
}

func (s *StateStore) LoadState(ctx context.Context) (domain.RaceState, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewRaceState(), nil
	}
	if err != nil {
		return domain.NewRaceState(), err
	}
	return decodeState(data), nil
}

func (s *StateStore) SaveState(ctx context.Context, doc domain.RaceState) error {
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, s.key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if decodeState(current).Version != doc.Version {
			return domain.ErrVersionConflict
		}

		doc.Version++
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, s.ttl)
			return nil
		})
		return err
	}, s.key)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrVersionConflict
	}
	return err
}

// decodeState treats a missing or unparsable value as the empty document.
func decodeState(data []byte) domain.RaceState {
	if len(data) == 0 {
		return domain.NewRaceState()
	}
	var doc domain.RaceState
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.NewRaceState()
	}
	domain.EnsureKeys(&doc)
	return doc
}

func stateKey(raceID string) string {
	return "race:" + raceID + ":state"
}

func answersKey(raceID string) string {
	return "race:" + raceID + ":answers"
}
