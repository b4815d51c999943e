package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trivia-race-service/internal/domain"
)

func secs(n int) *int { return &n }

func TestRankFinishedBeatsUnfinishedOnEqualScore(t *testing.T) {
	players := map[string]domain.PlayerProgress{
		"Bob": {Score: 50, CorrectCount: 5, QuestionIndex: 6, JoinedAt: domain.Timestamp{Time: t0}},
		"Ana": {Score: 50, CorrectCount: 5, QuestionIndex: 8, Finished: true, FinishTimeSeconds: secs(300), JoinedAt: domain.Timestamp{Time: t0.Add(time.Minute)}},
	}
	ranking := domain.Rank(players, 80)
	require.Len(t, ranking, 2)
	require.Equal(t, "Ana", ranking[0].Player)
	require.Equal(t, 1, ranking[0].Position)
	require.Equal(t, "05:00", ranking[0].FinishTime)
	require.Equal(t, "Bob", ranking[1].Player)
	require.Empty(t, ranking[1].FinishTime)
}

func TestRankOrdering(t *testing.T) {
	players := map[string]domain.PlayerProgress{
		"slow":     {Score: 60, Finished: true, FinishTimeSeconds: secs(400), JoinedAt: domain.Timestamp{Time: t0}},
		"fast":     {Score: 60, Finished: true, FinishTimeSeconds: secs(200), JoinedAt: domain.Timestamp{Time: t0}},
		"leader":   {Score: 80, Finished: true, FinishTimeSeconds: secs(450), JoinedAt: domain.Timestamp{Time: t0}},
		"early":    {Score: 10, JoinedAt: domain.Timestamp{Time: t0}},
		"late":     {Score: 10, JoinedAt: domain.Timestamp{Time: t0.Add(time.Second)}},
		"sameTime": {Score: 10, JoinedAt: domain.Timestamp{Time: t0.Add(time.Second)}},
	}

	got := names(domain.Rank(players, 80))
	require.Equal(t, []string{"leader", "fast", "slow", "early", "late", "sameTime"}, got)

	for i := 0; i < 20; i++ {
		require.Equal(t, got, names(domain.Rank(players, 80)))
	}
}

func TestRankProgressAndTop(t *testing.T) {
	players := map[string]domain.PlayerProgress{
		"a": {Score: 40},
		"b": {Score: 30},
		"c": {Score: 20},
		"d": {Score: 10},
	}
	ranking := domain.Rank(players, 80)
	require.InDelta(t, 0.5, ranking[0].Progress, 1e-9)

	top := domain.Top(ranking, 3)
	require.Equal(t, []string{"a", "b", "c"}, names(top))
	require.Len(t, domain.Top(ranking, 0), 4)
	require.Len(t, domain.Top(ranking, 10), 4)
}

func TestRankEmpty(t *testing.T) {
	require.Empty(t, domain.Rank(nil, 80))
}

func names(entries []domain.RankingEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Player)
	}
	return out
}
