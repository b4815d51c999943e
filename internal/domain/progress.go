package domain

import "time"

// Answer is one submission from a player for the question at QuestionIndex.
type Answer struct {
	Player        string
	QuestionIndex int
	Selected      string
	CorrectOption string
}

// SubmitResult is the outcome of a processed answer.
type SubmitResult struct {
	Progress     PlayerProgress `json:"progress"`
	Record       AnswerRecord   `json:"record"`
	Correct      bool           `json:"correct"`
	Awarded      int            `json:"awarded"`
	JustFinished bool           `json:"justFinished"`
}

// SubmitAnswer advances p by one answer. Only an answer for the player's current question
// is accepted, so a duplicated submission can never score twice.
func SubmitAnswer(p PlayerProgress, answer Answer, rules RaceRules, startedAt *Timestamp, now time.Time) (SubmitResult, error) {
	switch {
	case answer.QuestionIndex < p.QuestionIndex:
		return SubmitResult{}, ErrStaleSubmission
	case p.Finished:
		return SubmitResult{}, ErrAlreadyFinished
	case answer.QuestionIndex > p.QuestionIndex:
		return SubmitResult{}, ErrQuestionAhead
	case p.QuestionIndex >= rules.TotalQuestions:
		return SubmitResult{}, ErrNoMoreQuestions
	}

	correct := answer.Selected == answer.CorrectOption
	awarded := 0
	if correct {
		awarded = rules.PointsPerCorrect
		p.Score += awarded
		p.CorrectCount++
	}
	p.QuestionIndex++
	p.LastAnsweredAt = At(now)
	p.LastAnswerCorrect = correct
	p.FeedbackDismissedAt = nil

	justFinished := false
	if rules.Completion.Done(p, rules.TotalQuestions) {
		p.Finished = true
		justFinished = true
		if startedAt != nil {
			secs := elapsedSeconds(startedAt.Time, now)
			p.FinishTimeSeconds = &secs
		}
	}

	return SubmitResult{
		Progress: p,
		Record: AnswerRecord{
			Timestamp:     Timestamp{Time: now},
			Player:        answer.Player,
			QuestionIndex: answer.QuestionIndex,
			Selected:      answer.Selected,
			Correct:       correct,
		},
		Correct:      correct,
		Awarded:      awarded,
		JustFinished: justFinished,
	}, nil
}

// Continue dismisses the feedback for the answer that moved the player to nextIndex.
// It reports false when there is nothing to dismiss, which makes repeated calls harmless.
func Continue(p PlayerProgress, nextIndex int, rules RaceRules, now time.Time) (PlayerProgress, bool) {
	if rules.ContinueMode == ContinueTimeout {
		return p, false
	}
	if p.Finished || nextIndex != p.QuestionIndex {
		return p, false
	}
	// Once the window has run out the question is already open; moving its clock would
	// hand the player extra time.
	if !inFeedback(p, rules, now) {
		return p, false
	}
	p.FeedbackDismissedAt = At(now)
	return p, true
}
