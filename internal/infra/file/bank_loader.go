package file

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trivia-race-service/internal/domain"
)

// BankLoader reads a question bank from a YAML file.
type BankLoader struct {
	path string
}

func NewBankLoader(path string) *BankLoader {
	return &BankLoader{path: path}
}

func (l *BankLoader) LoadBank(_ context.Context, bankID string) (domain.QuestionBank, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: %v", domain.ErrBankNotFound, err)
	}
	var bank domain.QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidBank, l.path, err)
	}
	if bank.ID == "" {
		bank.ID = bankID
	}
	return bank, nil
}
