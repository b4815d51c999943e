package domain

import (
	"math"
	"sort"
)

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	Position          int     `json:"position"`
	Player            string  `json:"player"`
	Score             int     `json:"score"`
	CorrectCount      int     `json:"correctCount"`
	Finished          bool    `json:"finished"`
	FinishTimeSeconds *int    `json:"finishTimeSeconds"`
	FinishTime        string  `json:"finishTime,omitempty"`
	Progress          float64 `json:"progress"`
}

// Rank orders players by score descending, then finish time ascending with unfinished
// players last, then join time and name so the order is total.
func Rank(players map[string]PlayerProgress, maxPoints int) []RankingEntry {
	type row struct {
		name string
		p    PlayerProgress
	}
	rows := make([]row, 0, len(players))
	for name, p := range players {
		rows = append(rows, row{name: name, p: p})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].p, rows[j].p
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if fa, fb := finishKey(a), finishKey(b); fa != fb {
			return fa < fb
		}
		if !a.JoinedAt.Equal(b.JoinedAt.Time) {
			return a.JoinedAt.Before(b.JoinedAt.Time)
		}
		return rows[i].name < rows[j].name
	})

	entries := make([]RankingEntry, 0, len(rows))
	for i, r := range rows {
		entry := RankingEntry{
			Position:          i + 1,
			Player:            r.name,
			Score:             r.p.Score,
			CorrectCount:      r.p.CorrectCount,
			Finished:          r.p.Finished,
			FinishTimeSeconds: r.p.FinishTimeSeconds,
			Progress:          progressFraction(r.p.Score, maxPoints),
		}
		if r.p.FinishTimeSeconds != nil {
			entry.FinishTime = FormatMMSS(*r.p.FinishTimeSeconds)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Top truncates a ranking to limit entries; limit <= 0 keeps everything.
func Top(entries []RankingEntry, limit int) []RankingEntry {
	if limit <= 0 || limit >= len(entries) {
		return entries
	}
	return entries[:limit]
}

func finishKey(p PlayerProgress) int {
	if p.FinishTimeSeconds == nil {
		return math.MaxInt
	}
	return *p.FinishTimeSeconds
}

func progressFraction(score, maxPoints int) float64 {
	if maxPoints <= 0 {
		return 0
	}
	return math.Min(float64(score)/float64(maxPoints), 1)
}
