package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"trivia-race-service/internal/domain"
)

// AnswerLog keeps the audit log as a JSON array on disk, rewritten whole on every append.
type AnswerLog struct {
	path string
	mu   sync.Mutex
}

func NewAnswerLog(dir string) (*AnswerLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &AnswerLog{path: filepath.Join(dir, AnswersFileName)}, nil
}

func (l *AnswerLog) Append(_ context.Context, record domain.AnswerRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read()
	if err != nil {
		return err
	}
	return writeJSON(l.path, append(records, record))
}

func (l *AnswerLog) List(_ context.Context) ([]domain.AnswerRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

func (l *AnswerLog) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return writeJSON(l.path, []domain.AnswerRecord{})
}

func (l *AnswerLog) read() ([]domain.AnswerRecord, error) {
	var records []domain.AnswerRecord
	ok, err := readJSON(l.path, &records)
	if err != nil {
		return nil, err
	}
	if !ok || records == nil {
		return []domain.AnswerRecord{}, nil
	}
	return records, nil
}
