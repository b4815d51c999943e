package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-race-service/internal/domain"
)

// AnswerLog appends audit records to the answer_log table; the serial id keeps insertion order.
type AnswerLog struct {
	pool   *pgxpool.Pool
	raceID string
}

func NewAnswerLog(pool *pgxpool.Pool, raceID string) *AnswerLog {
	return &AnswerLog{pool: pool, raceID: raceID}
}

func (l *AnswerLog) Append(ctx context.Context, record domain.AnswerRecord) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO answer_log (race_id, recorded_at, player, question_index, selected, correct)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.raceID, record.Timestamp.Time, record.Player, record.QuestionIndex, record.Selected, record.Correct)
	if err != nil {
		return fmt.Errorf("append answer: %w", err)
	}
	return nil
}

func (l *AnswerLog) List(ctx context.Context) ([]domain.AnswerRecord, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT recorded_at, player, question_index, selected, correct
		FROM answer_log WHERE race_id=$1 ORDER BY id`, l.raceID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AnswerRecord, 0)
	for rows.Next() {
		var (
			rec        domain.AnswerRecord
			recordedAt time.Time
		)
		if err := rows.Scan(&recordedAt, &rec.Player, &rec.QuestionIndex, &rec.Selected, &rec.Correct); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		rec.Timestamp = domain.Timestamp{Time: recordedAt}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (l *AnswerLog) Clear(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, `DELETE FROM answer_log WHERE race_id=$1`, l.raceID); err != nil {
		return fmt.Errorf("clear answers: %w", err)
	}
	return nil
}
