package domain

import (
	"fmt"
	"time"
)

// Screen is the per-player state derived from stored fields only.
type Screen string

const (
	ScreenNotJoined      Screen = "not-joined"
	ScreenWaiting        Screen = "waiting"
	ScreenAnswering      Screen = "answering"
	ScreenFeedback       Screen = "feedback"
	ScreenOutOfQuestions Screen = "out-of-questions"
	ScreenFinished       Screen = "finished"
)

// QuestionView is the current question without its answer.
type QuestionView struct {
	Index            int      `json:"index"`
	Number           int      `json:"number"`
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	RemainingSeconds int      `json:"remainingSeconds"`
	TimeUp           bool     `json:"timeUp"`
}

// FeedbackView describes the answer the player just gave.
type FeedbackView struct {
	AnsweredIndex            int  `json:"answeredIndex"`
	NextIndex                int  `json:"nextIndex"`
	Correct                  bool `json:"correct"`
	Awarded                  int  `json:"awarded"`
	CanContinue              bool `json:"canContinue"`
	ContinueRemainingSeconds int  `json:"continueRemainingSeconds"`
}

// PlayerView is what one client renders on a poll cycle.
type PlayerView struct {
	Player                 string        `json:"player"`
	Screen                 Screen        `json:"screen"`
	RaceStarted            bool          `json:"raceStarted"`
	OrganizerName          string        `json:"organizerName,omitempty"`
	GlobalRemainingSeconds int           `json:"globalRemainingSeconds"`
	RaceExpired            bool          `json:"raceExpired"`
	Question               *QuestionView `json:"question,omitempty"`
	Feedback               *FeedbackView `json:"feedback,omitempty"`
	Score                  int           `json:"score"`
	CorrectCount           int           `json:"correctCount"`
	QuestionIndex          int           `json:"questionIndex"`
	TotalQuestions         int           `json:"totalQuestions"`
	Progress               float64       `json:"progress"`
	ProgressLabel          string        `json:"progressLabel"`
	FinishTimeSeconds      *int          `json:"finishTimeSeconds,omitempty"`
	FinishTime             string        `json:"finishTime,omitempty"`
}

// DeriveScreen maps a player's stored progress to the screen a client must show.
func DeriveScreen(p *PlayerProgress, startedAt *Timestamp, rules RaceRules, now time.Time) Screen {
	switch {
	case p == nil:
		return ScreenNotJoined
	case p.Finished:
		return ScreenFinished
	case startedAt == nil:
		return ScreenWaiting
	case inFeedback(*p, rules, now):
		return ScreenFeedback
	case p.QuestionIndex >= rules.TotalQuestions:
		return ScreenOutOfQuestions
	default:
		return ScreenAnswering
	}
}

func inFeedback(p PlayerProgress, rules RaceRules, now time.Time) bool {
	if p.LastAnsweredAt == nil || p.FeedbackDismissedAt != nil {
		return false
	}
	if rules.ContinueMode == ContinueButton {
		return true
	}
	return now.Sub(p.LastAnsweredAt.Time) < rules.ContinueWindow
}

// questionOpenedAt is when the current question became visible to the player.
func questionOpenedAt(p PlayerProgress, startedAt time.Time, rules RaceRules) time.Time {
	opened := startedAt
	switch {
	case p.FeedbackDismissedAt != nil:
		opened = p.FeedbackDismissedAt.Time
	case p.LastAnsweredAt != nil && rules.ContinueMode != ContinueButton:
		opened = p.LastAnsweredAt.Add(rules.ContinueWindow)
	case p.LastAnsweredAt != nil:
		opened = p.LastAnsweredAt.Time
	}
	if opened.Before(startedAt) {
		return startedAt
	}
	return opened
}

// BuildView renders the personal view of name from a state snapshot.
func BuildView(state RaceState, name string, bank QuestionBank, rules RaceRules, now time.Time) PlayerView {
	name = NormalizeName(name)
	view := PlayerView{
		Player:         name,
		RaceStarted:    state.Started(),
		TotalQuestions: rules.TotalQuestions,
	}
	if state.OrganizerName != nil {
		view.OrganizerName = *state.OrganizerName
	}
	if state.StartedAt != nil {
		remaining := rules.RaceDuration() - now.Sub(state.StartedAt.Time)
		if remaining < 0 {
			remaining = 0
		}
		view.GlobalRemainingSeconds = int(remaining / time.Second)
		view.RaceExpired = remaining == 0
	}

	var progress *PlayerProgress
	if p, ok := state.Players[name]; ok && name != "" {
		progress = &p
	}
	view.Screen = DeriveScreen(progress, state.StartedAt, rules, now)
	if progress == nil {
		return view
	}

	p := *progress
	view.Score = p.Score
	view.CorrectCount = p.CorrectCount
	view.QuestionIndex = p.QuestionIndex
	view.Progress = progressFraction(p.Score, rules.MaxPoints())
	view.ProgressLabel = fmt.Sprintf("%d pts - Question %d / %d", p.Score, min(p.QuestionIndex+1, rules.TotalQuestions), rules.TotalQuestions)
	if p.FinishTimeSeconds != nil {
		view.FinishTimeSeconds = p.FinishTimeSeconds
		view.FinishTime = FormatMMSS(*p.FinishTimeSeconds)
	}

	switch view.Screen {
	case ScreenFeedback:
		fb := &FeedbackView{
			AnsweredIndex: p.QuestionIndex - 1,
			NextIndex:     p.QuestionIndex,
			Correct:       p.LastAnswerCorrect,
			CanContinue:   rules.ContinueMode != ContinueTimeout,
		}
		if p.LastAnswerCorrect {
			fb.Awarded = rules.PointsPerCorrect
		}
		if rules.ContinueMode != ContinueButton {
			left := rules.ContinueWindow - now.Sub(p.LastAnsweredAt.Time)
			fb.ContinueRemainingSeconds = int((left + time.Second - 1) / time.Second)
		}
		view.Feedback = fb
	case ScreenAnswering:
		if p.QuestionIndex < bank.Len() {
			q := bank.Questions[p.QuestionIndex]
			left := rules.QuestionTime - now.Sub(questionOpenedAt(p, state.StartedAt.Time, rules))
			if left < 0 {
				left = 0
			}
			view.Question = &QuestionView{
				Index:            p.QuestionIndex,
				Number:           p.QuestionIndex + 1,
				Text:             q.Text,
				Options:          append([]string(nil), q.Options...),
				RemainingSeconds: int(left / time.Second),
				TimeUp:           left == 0,
			}
		}
	}
	return view
}
