package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trivia-race-service/internal/domain"
)

func eightQuestionRules() domain.RaceRules {
	return domain.DefaultRules(8)
}

func answer(index int, selected string) domain.Answer {
	return domain.Answer{Player: "Ana", QuestionIndex: index, Selected: selected, CorrectOption: "right"}
}

func TestSubmitAnswerCorrect(t *testing.T) {
	rules := eightQuestionRules()
	started := domain.At(t0)

	res, err := domain.SubmitAnswer(domain.PlayerProgress{}, answer(0, "right"), rules, started, t0.Add(5*time.Second))
	require.NoError(t, err)
	require.True(t, res.Correct)
	require.Equal(t, 10, res.Awarded)
	require.Equal(t, 10, res.Progress.Score)
	require.Equal(t, 1, res.Progress.CorrectCount)
	require.Equal(t, 1, res.Progress.QuestionIndex)
	require.False(t, res.Progress.Finished)
	require.Nil(t, res.Progress.FinishTimeSeconds)
	require.Equal(t, "Ana", res.Record.Player)
	require.Equal(t, 0, res.Record.QuestionIndex)
	require.True(t, res.Record.Correct)
}

func TestSubmitAnswerIncorrectStillAdvances(t *testing.T) {
	res, err := domain.SubmitAnswer(domain.PlayerProgress{}, answer(0, "wrong"), eightQuestionRules(), domain.At(t0), t0)
	require.NoError(t, err)
	require.False(t, res.Correct)
	require.Equal(t, 0, res.Progress.Score)
	require.Equal(t, 1, res.Progress.QuestionIndex)
	require.Equal(t, "wrong", res.Record.Selected)
	require.False(t, res.Record.Correct)
}

func TestSubmitAnswerRejectsOutOfOrder(t *testing.T) {
	rules := eightQuestionRules()
	p := domain.PlayerProgress{QuestionIndex: 3, Score: 20, CorrectCount: 2}

	tests := []struct {
		name  string
		index int
		want  error
	}{
		{"duplicate of previous", 2, domain.ErrStaleSubmission},
		{"far behind", 0, domain.ErrStaleSubmission},
		{"ahead", 4, domain.ErrQuestionAhead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.SubmitAnswer(p, answer(tt.index, "right"), rules, domain.At(t0), t0)
			require.ErrorIs(t, err, tt.want)
		})
	}

	finished := domain.PlayerProgress{QuestionIndex: 8, Finished: true}
	_, err := domain.SubmitAnswer(finished, answer(8, "right"), rules, domain.At(t0), t0)
	require.ErrorIs(t, err, domain.ErrAlreadyFinished)
	_, err = domain.SubmitAnswer(finished, answer(7, "right"), rules, domain.At(t0), t0)
	require.ErrorIs(t, err, domain.ErrStaleSubmission)
}

func TestDuplicateSubmissionScoresOnce(t *testing.T) {
	rules := eightQuestionRules()
	res, err := domain.SubmitAnswer(domain.PlayerProgress{}, answer(0, "right"), rules, domain.At(t0), t0)
	require.NoError(t, err)

	_, err = domain.SubmitAnswer(res.Progress, answer(0, "right"), rules, domain.At(t0), t0)
	require.ErrorIs(t, err, domain.ErrStaleSubmission)
	require.Equal(t, 10, res.Progress.Score)
	require.Equal(t, 1, res.Progress.CorrectCount)
}

func TestFullRunFinishesWithElapsedTime(t *testing.T) {
	rules := eightQuestionRules()
	started := domain.At(t0)
	p := domain.PlayerProgress{JoinedAt: domain.Timestamp{Time: t0.Add(-time.Minute)}}
	correctAt := map[int]bool{0: true, 1: true, 3: true, 5: true, 7: true}

	now := t0
	for i := 0; i < rules.TotalQuestions; i++ {
		now = now.Add(17 * time.Second)
		selected := "wrong"
		if correctAt[i] {
			selected = "right"
		}
		res, err := domain.SubmitAnswer(p, answer(i, selected), rules, started, now)
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.Progress.QuestionIndex, p.QuestionIndex)
		require.Equal(t, res.Progress.CorrectCount*rules.PointsPerCorrect, res.Progress.Score)
		require.Equal(t, i == rules.TotalQuestions-1, res.JustFinished)
		p = res.Progress
	}

	require.Equal(t, 50, p.Score)
	require.Equal(t, 5, p.CorrectCount)
	require.Equal(t, 8, p.QuestionIndex)
	require.True(t, p.Finished)
	require.NotNil(t, p.FinishTimeSeconds)
	require.Equal(t, 8*17, *p.FinishTimeSeconds)

	_, err := domain.SubmitAnswer(p, answer(8, "right"), rules, started, now.Add(time.Second))
	require.ErrorIs(t, err, domain.ErrAlreadyFinished)
	require.Equal(t, 8*17, *p.FinishTimeSeconds)
}

func TestSubmitWithoutStartDoesNotPanic(t *testing.T) {
	rules := domain.DefaultRules(1)
	res, err := domain.SubmitAnswer(domain.PlayerProgress{}, answer(0, "right"), rules, nil, t0)
	require.NoError(t, err)
	require.True(t, res.Progress.Finished)
	require.Nil(t, res.Progress.FinishTimeSeconds)
}

func TestPointGoalCompletion(t *testing.T) {
	rules := eightQuestionRules()
	rules.Completion = domain.CompletionPolicy{Mode: domain.CompletePointGoal, TargetScore: 20}
	started := domain.At(t0)

	p := domain.PlayerProgress{}
	res, err := domain.SubmitAnswer(p, answer(0, "right"), rules, started, t0.Add(10*time.Second))
	require.NoError(t, err)
	require.False(t, res.Progress.Finished)

	res, err = domain.SubmitAnswer(res.Progress, answer(1, "right"), rules, started, t0.Add(25*time.Second))
	require.NoError(t, err)
	require.True(t, res.Progress.Finished)
	require.Equal(t, 2, res.Progress.QuestionIndex)
	require.Equal(t, 25, *res.Progress.FinishTimeSeconds)
}

func TestPointGoalExhaustedBankLeavesPlayerUnfinished(t *testing.T) {
	rules := domain.DefaultRules(2)
	rules.Completion = domain.CompletionPolicy{Mode: domain.CompletePointGoal, TargetScore: 50}

	p := domain.PlayerProgress{}
	for i := 0; i < 2; i++ {
		res, err := domain.SubmitAnswer(p, answer(i, "right"), rules, domain.At(t0), t0)
		require.NoError(t, err)
		p = res.Progress
	}
	require.False(t, p.Finished)
	require.Nil(t, p.FinishTimeSeconds)

	_, err := domain.SubmitAnswer(p, answer(2, "right"), rules, domain.At(t0), t0)
	require.ErrorIs(t, err, domain.ErrNoMoreQuestions)
}

func TestFinishTimeNeverNegative(t *testing.T) {
	rules := domain.DefaultRules(1)
	res, err := domain.SubmitAnswer(domain.PlayerProgress{}, answer(0, "right"), rules, domain.At(t0), t0.Add(-3*time.Second))
	require.NoError(t, err)
	require.Equal(t, 0, *res.Progress.FinishTimeSeconds)
}

func TestContinueDismissesFeedbackOnce(t *testing.T) {
	rules := eightQuestionRules()
	res, err := domain.SubmitAnswer(domain.PlayerProgress{}, answer(0, "right"), rules, domain.At(t0), t0)
	require.NoError(t, err)

	p, changed := domain.Continue(res.Progress, 1, rules, t0.Add(3*time.Second))
	require.True(t, changed)
	require.NotNil(t, p.FeedbackDismissedAt)

	_, changed = domain.Continue(p, 1, rules, t0.Add(4*time.Second))
	require.False(t, changed)

	_, changed = domain.Continue(res.Progress, 0, rules, t0)
	require.False(t, changed, "continue for a stale index is ignored")
}

func TestContinueAfterWindowExpiredIsNoOp(t *testing.T) {
	rules := eightQuestionRules()
	res, err := domain.SubmitAnswer(domain.PlayerProgress{}, answer(0, "wrong"), rules, domain.At(t0), t0)
	require.NoError(t, err)

	late := t0.Add(rules.ContinueWindow + 10*time.Second)
	p, changed := domain.Continue(res.Progress, 1, rules, late)
	require.False(t, changed)
	require.Nil(t, p.FeedbackDismissedAt)

	// Button mode has no window, so a late press still counts.
	rules.ContinueMode = domain.ContinueButton
	_, changed = domain.Continue(res.Progress, 1, rules, late)
	require.True(t, changed)
}

func TestContinueDisabledInTimeoutMode(t *testing.T) {
	rules := eightQuestionRules()
	rules.ContinueMode = domain.ContinueTimeout
	res, err := domain.SubmitAnswer(domain.PlayerProgress{}, answer(0, "right"), rules, domain.At(t0), t0)
	require.NoError(t, err)

	_, changed := domain.Continue(res.Progress, 1, rules, t0)
	require.False(t, changed)
}

func TestRulesValidate(t *testing.T) {
	require.NoError(t, domain.DefaultRules(8).Validate())

	bad := domain.DefaultRules(8)
	bad.Completion.Mode = domain.CompletePointGoal
	require.Error(t, bad.Validate())

	bad = domain.DefaultRules(8)
	bad.ContinueMode = "sometimes"
	require.Error(t, bad.Validate())

	require.Error(t, domain.DefaultRules(0).Validate())
}
