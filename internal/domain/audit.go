package domain

import (
	"sort"
	"time"
)

const auditTimeLayout = "2006-01-02 15:04:05"

// AuditRow is the flat projection of an AnswerRecord used by audit exports.
type AuditRow struct {
	Time           string `json:"time"`
	Player         string `json:"player"`
	QuestionNumber int    `json:"questionNumber"`
	Selected       string `json:"selected"`
	Correct        bool   `json:"correct"`
}

// FilterAnswers keeps the records of player, preserving log order. An empty player keeps all.
func FilterAnswers(records []AnswerRecord, player string) []AnswerRecord {
	player = NormalizeName(player)
	out := make([]AnswerRecord, 0, len(records))
	for _, r := range records {
		if player == "" || r.Player == player {
			out = append(out, r)
		}
	}
	return out
}

// AuditRows projects the filtered log into rows, times rendered in UTC.
func AuditRows(records []AnswerRecord, player string) []AuditRow {
	filtered := FilterAnswers(records, player)
	rows := make([]AuditRow, 0, len(filtered))
	for _, r := range filtered {
		rows = append(rows, AuditRow{
			Time:           r.Timestamp.UTC().Format(auditTimeLayout),
			Player:         r.Player,
			QuestionNumber: r.QuestionIndex + 1,
			Selected:       r.Selected,
			Correct:        r.Correct,
		})
	}
	return rows
}

// AuditPlayers lists the distinct players present in the log, sorted.
func AuditPlayers(records []AnswerRecord) []string {
	seen := make(map[string]struct{})
	players := make([]string, 0)
	for _, r := range records {
		if r.Player == "" {
			continue
		}
		if _, ok := seen[r.Player]; ok {
			continue
		}
		seen[r.Player] = struct{}{}
		players = append(players, r.Player)
	}
	sort.Strings(players)
	return players
}

// RosterEntry is a row of the organizer's connected-players table.
type RosterEntry struct {
	Player       string    `json:"player"`
	CorrectCount int       `json:"correctCount"`
	Score        int       `json:"score"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Roster lists players in join order.
func Roster(state RaceState) []RosterEntry {
	entries := make([]RosterEntry, 0, len(state.Players))
	for name, p := range state.Players {
		entries = append(entries, RosterEntry{
			Player:       name,
			CorrectCount: p.CorrectCount,
			Score:        p.Score,
			JoinedAt:     p.JoinedAt.Time,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].JoinedAt.Equal(entries[j].JoinedAt) {
			return entries[i].JoinedAt.Before(entries[j].JoinedAt)
		}
		return entries[i].Player < entries[j].Player
	})
	return entries
}
