package memory

import (
	"context"
	"sync"

	"trivia-race-service/internal/domain"
)

// AnswerLog is an in-process implementation of app.AnswerLog.
type AnswerLog struct {
	mu      sync.RWMutex
	records []domain.AnswerRecord
}

func NewAnswerLog() *AnswerLog {
	return &AnswerLog{}
}

func (l *AnswerLog) Append(_ context.Context, record domain.AnswerRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

func (l *AnswerLog) List(_ context.Context) ([]domain.AnswerRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.AnswerRecord(nil), l.records...), nil
}

func (l *AnswerLog) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
	return nil
}
