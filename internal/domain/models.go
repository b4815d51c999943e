package domain

import (
	"fmt"
	"time"
)

// PlayerProgress is one participant's position in the race.
type PlayerProgress struct {
	Score             int       `json:"score"`
	CorrectCount      int       `json:"correctCount"`
	QuestionIndex     int       `json:"questionIndex"`
	Finished          bool      `json:"finished"`
	FinishTimeSeconds *int      `json:"finishTimeSeconds"`
	JoinedAt          Timestamp `json:"joinedAt"`

	// Feedback bookkeeping; lets any client re-derive the screen after a reconnect.
	LastAnsweredAt      *Timestamp `json:"lastAnsweredAt,omitempty"`
	LastAnswerCorrect   bool       `json:"lastAnswerCorrect,omitempty"`
	FeedbackDismissedAt *Timestamp `json:"feedbackDismissedAt,omitempty"`
}

// RaceState is the single shared document every client reads and overwrites.
type RaceState struct {
	StartedAt     *Timestamp                `json:"startedAt"`
	OrganizerName *string                   `json:"organizerName"`
	Players       map[string]PlayerProgress `json:"players"`
	// Version is bumped by the store on every successful save.
	Version int64 `json:"version"`
}

// NewRaceState returns the empty document used on first access and after a reset.
func NewRaceState() RaceState {
	return RaceState{Players: make(map[string]PlayerProgress)}
}

// Clone copies the document so callers can mutate it without aliasing a shared snapshot.
func (s RaceState) Clone() RaceState {
	out := s
	out.Players = make(map[string]PlayerProgress, len(s.Players))
	for name, p := range s.Players {
		out.Players[name] = p
	}
	return out
}

// Started reports whether the organizer has started the race.
func (s RaceState) Started() bool {
	return s.StartedAt != nil
}

// AnswerRecord is one entry of the append-only audit log.
type AnswerRecord struct {
	Timestamp     Timestamp `json:"timestamp"`
	Player        string    `json:"player"`
	QuestionIndex int       `json:"questionIndex"`
	Selected      string    `json:"selected"`
	Correct       bool      `json:"correct"`
}

// Question is a multiple-choice question with exactly one correct option.
type Question struct {
	Text          string   `json:"text" yaml:"text"`
	Options       []string `json:"options" yaml:"options"`
	CorrectOption string   `json:"correctOption" yaml:"correctOption"`
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// QuestionBank is the ordered, immutable list of questions for a race.
type QuestionBank struct {
	ID        string     `json:"id" yaml:"id"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Len returns the number of questions.
func (b QuestionBank) Len() int {
	return len(b.Questions)
}

// Validate checks every question has at least two options and a correct option among them.
func (b QuestionBank) Validate() error {
	if len(b.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidBank)
	}
	for i, q := range b.Questions {
		if q.Text == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidBank, i+1)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidBank, i+1)
		}
		if !q.HasOption(q.CorrectOption) {
			return fmt.Errorf("%w: question %d correct option %q is not offered", ErrInvalidBank, i+1, q.CorrectOption)
		}
	}
	return nil
}

// ContinueMode selects which triggers move a player from feedback to the next question.
type ContinueMode string

const (
	ContinueEither  ContinueMode = "either"
	ContinueButton  ContinueMode = "button"
	ContinueTimeout ContinueMode = "timeout"
)

// CompletionMode selects when a player counts as finished.
type CompletionMode string

const (
	// CompleteFixedCount finishes a player after answering every question.
	CompleteFixedCount CompletionMode = "fixed-count"
	// CompletePointGoal finishes a player as soon as their score reaches TargetScore.
	CompletePointGoal CompletionMode = "point-goal"
)

// CompletionPolicy decides when a player's race is over.
type CompletionPolicy struct {
	Mode        CompletionMode
	TargetScore int
}

// Done reports whether p satisfies the policy.
func (c CompletionPolicy) Done(p PlayerProgress, totalQuestions int) bool {
	if c.Mode == CompletePointGoal {
		return p.Score >= c.TargetScore
	}
	return p.QuestionIndex >= totalQuestions
}

// RaceRules holds the per-deployment constants of a race.
type RaceRules struct {
	PointsPerCorrect int
	TotalQuestions   int
	QuestionTime     time.Duration
	ContinueWindow   time.Duration
	ContinueMode     ContinueMode
	Completion       CompletionPolicy
}

// DefaultRules returns the standard race: 10 points per answer, 60s per question,
// 20s feedback window and fixed-count completion.
func DefaultRules(totalQuestions int) RaceRules {
	return RaceRules{
		PointsPerCorrect: 10,
		TotalQuestions:   totalQuestions,
		QuestionTime:     60 * time.Second,
		ContinueWindow:   20 * time.Second,
		ContinueMode:     ContinueEither,
		Completion:       CompletionPolicy{Mode: CompleteFixedCount},
	}
}

// MaxPoints is the score of a perfect run.
func (r RaceRules) MaxPoints() int {
	return r.PointsPerCorrect * r.TotalQuestions
}

// RaceDuration is the global clock: one question time per question.
func (r RaceRules) RaceDuration() time.Duration {
	return r.QuestionTime * time.Duration(r.TotalQuestions)
}

// Validate rejects rules that would make progress impossible.
func (r RaceRules) Validate() error {
	if r.PointsPerCorrect <= 0 {
		return fmt.Errorf("points per correct answer must be positive, got %d", r.PointsPerCorrect)
	}
	if r.TotalQuestions <= 0 {
		return fmt.Errorf("total questions must be positive, got %d", r.TotalQuestions)
	}
	switch r.ContinueMode {
	case ContinueEither, ContinueButton, ContinueTimeout:
	default:
		return fmt.Errorf("unknown continue mode %q", r.ContinueMode)
	}
	switch r.Completion.Mode {
	case CompleteFixedCount:
	case CompletePointGoal:
		if r.Completion.TargetScore <= 0 {
			return fmt.Errorf("point-goal completion needs a positive target score")
		}
	default:
		return fmt.Errorf("unknown completion mode %q", r.Completion.Mode)
	}
	return nil
}
