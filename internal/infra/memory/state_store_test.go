package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-race-service/internal/domain"
)

func TestStateStoreCompareAndSet(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore()

	first, err := store.LoadState(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, _ := store.LoadState(ctx)

	if _, err := domain.JoinPlayer(&first, "Ana", time.Now()); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := store.SaveState(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	if _, err := domain.JoinPlayer(&second, "Bob", time.Now()); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := store.SaveState(ctx, second); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	current, _ := store.LoadState(ctx)
	if current.Version != 1 {
		t.Fatalf("expected version 1, got %d", current.Version)
	}
	if _, ok := current.Players["Ana"]; !ok {
		t.Fatalf("expected Ana persisted, got %+v", current.Players)
	}
}

func TestStateStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore()

	doc, _ := store.LoadState(ctx)
	doc.Players["ghost"] = domain.PlayerProgress{}

	again, _ := store.LoadState(ctx)
	if len(again.Players) != 0 {
		t.Fatalf("expected loaded snapshot to be isolated, got %+v", again.Players)
	}
}

func TestAnswerLogPreservesOrder(t *testing.T) {
	ctx := context.Background()
	answers := NewAnswerLog()

	for i := 0; i < 3; i++ {
		if err := answers.Append(ctx, domain.AnswerRecord{Player: "Ana", QuestionIndex: i}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	records, _ := answers.List(ctx)
	for i, r := range records {
		if r.QuestionIndex != i {
			t.Fatalf("expected record %d in position %d, got %+v", i, i, r)
		}
	}

	if err := answers.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if records, _ := answers.List(ctx); len(records) != 0 {
		t.Fatalf("expected empty log, got %d", len(records))
	}
}

func TestDefaultBankIsValid(t *testing.T) {
	bank := DefaultBank()
	if err := bank.Validate(); err != nil {
		t.Fatalf("default bank invalid: %v", err)
	}
	if bank.Len() != 8 {
		t.Fatalf("expected 8 questions, got %d", bank.Len())
	}

	loader := NewStaticBankLoader(map[string]domain.QuestionBank{DefaultBankID: bank})
	if _, err := loader.LoadBank(context.Background(), "missing"); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected bank not found, got %v", err)
	}
}
