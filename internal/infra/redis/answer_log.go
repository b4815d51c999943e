package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-race-service/internal/domain"
)

// AnswerLog stores audit records as a Redis list; RPUSH keeps insertion order across instances.
type AnswerLog struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewAnswerLog stores records under race:{raceID}:answers. A zero ttl keeps them forever.
func NewAnswerLog(client *redis.Client, raceID string, ttl time.Duration) *AnswerLog {
	return &AnswerLog{
		client: client,
		key:    answersKey(raceID),
		ttl:    ttl,
	}
}

func (l *AnswerLog) Append(ctx context.Context, record domain.AnswerRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	pipe := l.client.TxPipeline()
	pipe.RPush(ctx, l.key, data)
	if l.ttl > 0 {
		pipe.Expire(ctx, l.key, l.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (l *AnswerLog) List(ctx context.Context) ([]domain.AnswerRecord, error) {
	raw, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]domain.AnswerRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.AnswerRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			log.Printf("skipping unreadable answer record in %s: %v", l.key, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *AnswerLog) Clear(ctx context.Context) error {
	return l.client.Del(ctx, l.key).Err()
}
