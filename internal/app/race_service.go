package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-race-service/internal/domain"
)

// StateStore persists the whole RaceState document.
// SaveState must fail with domain.ErrVersionConflict when doc.Version does not match the
// stored version, and store the document with its version incremented otherwise.
// LoadState returns an empty document when nothing (or nothing readable) is stored.
type StateStore interface {
	LoadState(ctx context.Context) (domain.RaceState, error)
	SaveState(ctx context.Context, doc domain.RaceState) error
}

// AnswerLog is the append-only audit log of submissions.
type AnswerLog interface {
	Append(ctx context.Context, record domain.AnswerRecord) error
	List(ctx context.Context) ([]domain.AnswerRecord, error)
	Clear(ctx context.Context) error
}

// BankLoader loads a question bank at startup.
type BankLoader interface {
	LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

const (
	defaultMaxRetries   = 5
	snapshotKey         = "race-state"
	snapshotLoadTimeout = 5 * time.Second
)

// errUnchanged lets a mutation skip the write when it had nothing to do.
var errUnchanged = errors.New("unchanged")

// Options tune a RaceService.
type Options struct {
	// MaxRetries bounds the read-modify-write attempts on version conflicts.
	MaxRetries int
	// Now overrides the clock in tests.
	Now func() time.Time
}

// RaceService exposes the race operations every client and the organizer call.
type RaceService struct {
	states     StateStore
	answers    AnswerLog
	bank       domain.QuestionBank
	rules      domain.RaceRules
	now        func() time.Time
	maxRetries int
	sf         singleflight.Group
}

func NewRaceService(states StateStore, answers AnswerLog, bank domain.QuestionBank, rules domain.RaceRules, opts Options) *RaceService {
	rules.TotalQuestions = bank.Len()
	s := &RaceService{
		states:     states,
		answers:    answers,
		bank:       bank,
		rules:      rules,
		now:        opts.Now,
		maxRetries: opts.MaxRetries,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxRetries <= 0 {
		s.maxRetries = defaultMaxRetries
	}
	return s
}

// Rules returns the rules in effect.
func (s *RaceService) Rules() domain.RaceRules {
	return s.rules
}

// Bank returns the question bank in effect.
func (s *RaceService) Bank() domain.QuestionBank {
	return s.bank
}

// Join registers a player. Re-joining returns the stored progress without writing.
// Blank names yield domain.ErrInvalidJoin, which callers treat as a no-op.
func (s *RaceService) Join(ctx context.Context, name string) (domain.PlayerProgress, error) {
	name = domain.NormalizeName(name)
	if name == "" {
		return domain.PlayerProgress{}, domain.ErrInvalidJoin
	}

	var joined domain.PlayerProgress
	created := false
	_, err := s.mutate(ctx, func(doc *domain.RaceState) error {
		if existing, ok := doc.Players[name]; ok {
			joined = existing
			return errUnchanged
		}
		p, err := domain.JoinPlayer(doc, name, s.now())
		joined = p
		created = err == nil
		return err
	})
	if err == nil && created {
		log.Printf("player %q joined", name)
	}
	return joined, err
}

// StartRace sets the global start time. Calling it again restarts the clock.
func (s *RaceService) StartRace(ctx context.Context, organizerName string) (domain.RaceState, error) {
	probe := domain.NewRaceState()
	if err := domain.StartRace(&probe, organizerName, s.now()); err != nil {
		return domain.RaceState{}, err
	}

	doc, err := s.mutate(ctx, func(doc *domain.RaceState) error {
		return domain.StartRace(doc, organizerName, s.now())
	})
	if err == nil {
		log.Printf("race started by %q", domain.NormalizeName(organizerName))
	}
	return doc, err
}

// Reset empties the race state and clears the answer log.
func (s *RaceService) Reset(ctx context.Context) error {
	_, stateErr := s.mutate(ctx, func(doc *domain.RaceState) error {
		domain.Reset(doc)
		return nil
	})
	var logErr error
	if err := s.answers.Clear(ctx); err != nil {
		log.Printf("clear answer log: %v", err)
		logErr = fmt.Errorf("%w: clear answer log: %v", domain.ErrStoreUnavailable, err)
	}
	if err := errors.Join(stateErr, logErr); err != nil {
		return err
	}
	log.Printf("race reset")
	return nil
}

// SubmitAnswer scores name's answer to questionIndex and appends it to the audit log.
// When persistence fails after the answer was decided, the result is still returned
// together with an error wrapping domain.ErrStoreUnavailable.
func (s *RaceService) SubmitAnswer(ctx context.Context, name string, questionIndex int, selected string) (domain.SubmitResult, error) {
	name = domain.NormalizeName(name)
	if name == "" {
		return domain.SubmitResult{}, domain.ErrParticipantNotFound
	}
	if questionIndex < 0 {
		return domain.SubmitResult{}, domain.ErrStaleSubmission
	}
	if questionIndex >= s.bank.Len() {
		return domain.SubmitResult{}, domain.ErrNoMoreQuestions
	}
	question := s.bank.Questions[questionIndex]
	if !question.HasOption(selected) {
		return domain.SubmitResult{}, domain.ErrOptionNotFound
	}

	var result domain.SubmitResult
	decided := false
	_, saveErr := s.mutate(ctx, func(doc *domain.RaceState) error {
		result, decided = domain.SubmitResult{}, false
		if !doc.Started() {
			return domain.ErrRaceNotStarted
		}
		p, ok := doc.Players[name]
		if !ok {
			return domain.ErrParticipantNotFound
		}
		res, err := domain.SubmitAnswer(p, domain.Answer{
			Player:        name,
			QuestionIndex: questionIndex,
			Selected:      selected,
			CorrectOption: question.CorrectOption,
		}, s.rules, doc.StartedAt, s.now())
		if err != nil {
			return err
		}
		doc.Players[name] = res.Progress
		result = res
		decided = true
		return nil
	})
	if saveErr != nil && !(decided && errors.Is(saveErr, domain.ErrStoreUnavailable)) {
		return domain.SubmitResult{}, saveErr
	}

	var appendErr error
	if err := s.answers.Append(ctx, result.Record); err != nil {
		log.Printf("append answer for %q: %v", name, err)
		appendErr = fmt.Errorf("%w: append answer: %v", domain.ErrStoreUnavailable, err)
	}
	if result.JustFinished {
		log.Printf("player %q finished with %d points", name, result.Progress.Score)
	}
	return result, errors.Join(saveErr, appendErr)
}

// Continue dismisses the feedback screen of name for the question at nextIndex.
// It is a no-op when the feedback already ended, so a button press racing the timeout is harmless.
func (s *RaceService) Continue(ctx context.Context, name string, nextIndex int) (domain.PlayerProgress, error) {
	name = domain.NormalizeName(name)
	var out domain.PlayerProgress
	_, err := s.mutate(ctx, func(doc *domain.RaceState) error {
		p, ok := doc.Players[name]
		if !ok {
			return domain.ErrParticipantNotFound
		}
		next, changed := domain.Continue(p, nextIndex, s.rules, s.now())
		out = next
		if !changed {
			return errUnchanged
		}
		doc.Players[name] = next
		return nil
	})
	return out, err
}

// GetState returns the latest readable snapshot. It never fails: an unreadable store
// yields the empty document.
func (s *RaceService) GetState(ctx context.Context) domain.RaceState {
	doc, _ := s.snapshot(ctx)
	return doc
}

// GetAnswerLog returns the audit log in insertion order, optionally filtered by player.
func (s *RaceService) GetAnswerLog(ctx context.Context, player string) []domain.AnswerRecord {
	records, err := s.answers.List(ctx)
	if err != nil {
		log.Printf("answer log unavailable, showing empty log: %v", err)
		return []domain.AnswerRecord{}
	}
	return domain.FilterAnswers(records, player)
}

// GetAudit returns the flat audit projection, optionally filtered by player.
func (s *RaceService) GetAudit(ctx context.Context, player string) []domain.AuditRow {
	return domain.AuditRows(s.GetAnswerLog(ctx, ""), player)
}

// GetRanking returns the leaderboard truncated to limit entries (all when limit <= 0).
func (s *RaceService) GetRanking(ctx context.Context, limit int) []domain.RankingEntry {
	state, _ := s.snapshot(ctx)
	return domain.Top(domain.Rank(state.Players, s.rules.MaxPoints()), limit)
}

// GetRoster returns the organizer's player table in join order.
func (s *RaceService) GetRoster(ctx context.Context) []domain.RosterEntry {
	state, _ := s.snapshot(ctx)
	return domain.Roster(state)
}

// View renders the personal view of name for one poll cycle. When the store is
// unreadable the view is built from the empty document and the error wraps
// domain.ErrStoreUnavailable so the client can show a retry state.
func (s *RaceService) View(ctx context.Context, name string) (domain.PlayerView, error) {
	state, err := s.snapshot(ctx)
	return domain.BuildView(state, name, s.bank, s.rules, s.now()), err
}

// snapshot coalesces concurrent reads from many pollers into one store load.
// The shared load ignores the caller's cancellation and is bounded by snapshotLoadTimeout.
func (s *RaceService) snapshot(ctx context.Context) (domain.RaceState, error) {
	v, err, _ := s.sf.Do(snapshotKey, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotLoadTimeout)
		defer cancel()
		return s.load(loadCtx)
	})
	return v.(domain.RaceState).Clone(), err
}

func (s *RaceService) load(ctx context.Context) (domain.RaceState, error) {
	doc, err := s.states.LoadState(ctx)
	if err != nil {
		log.Printf("race state unavailable, using empty state: %v", err)
		return domain.NewRaceState(), fmt.Errorf("%w: load race state: %v", domain.ErrStoreUnavailable, err)
	}
	domain.EnsureKeys(&doc)
	return doc, nil
}

// mutate runs load, apply, save as tightly as possible and retries on version conflicts.
// apply only touches the entries it needs, so a retry re-applies the caller's change on
// top of whatever other clients wrote in between.
func (s *RaceService) mutate(ctx context.Context, apply func(doc *domain.RaceState) error) (domain.RaceState, error) {
	var doc domain.RaceState
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		var err error
		doc, err = s.load(ctx)
		if err != nil {
			return doc, err
		}
		if err := apply(&doc); err != nil {
			if errors.Is(err, errUnchanged) {
				return doc, nil
			}
			return doc, err
		}

		err = s.states.SaveState(ctx, doc)
		if err == nil {
			doc.Version++
			s.sf.Forget(snapshotKey)
			return doc, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			log.Printf("save race state: %v", err)
			return doc, fmt.Errorf("%w: save race state: %v", domain.ErrStoreUnavailable, err)
		}
		if ctx.Err() != nil {
			return doc, ctx.Err()
		}
	}
	return doc, fmt.Errorf("save race state after %d attempts: %w", s.maxRetries, domain.ErrVersionConflict)
}
