package domain

import (
	"strings"
	"time"
)

// EnsureKeys fills in fields missing from a document written by an older or partial writer.
// It must run after every load and is idempotent.
func EnsureKeys(doc *RaceState) {
	if doc.Players == nil {
		doc.Players = make(map[string]PlayerProgress)
	}
	if doc.OrganizerName != nil && strings.TrimSpace(*doc.OrganizerName) == "" {
		doc.OrganizerName = nil
	}
}

// NormalizeName trims surrounding whitespace; names are otherwise case-sensitive.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// JoinPlayer registers name with fresh progress. An existing player is returned untouched.
func JoinPlayer(doc *RaceState, name string, now time.Time) (PlayerProgress, error) {
	name = NormalizeName(name)
	if name == "" {
		return PlayerProgress{}, ErrInvalidJoin
	}
	EnsureKeys(doc)
	if existing, ok := doc.Players[name]; ok {
		return existing, nil
	}
	p := PlayerProgress{JoinedAt: Timestamp{Time: now}}
	doc.Players[name] = p
	return p, nil
}

// StartRace arms the global clock. Calling it again re-arms the clock.
func StartRace(doc *RaceState, organizerName string, now time.Time) error {
	organizerName = strings.TrimSpace(organizerName)
	if organizerName == "" {
		return ErrMissingOrganizerName
	}
	doc.StartedAt = At(now)
	doc.OrganizerName = &organizerName
	return nil
}

// Reset empties the document. The version survives so concurrent writers still conflict.
func Reset(doc *RaceState) {
	version := doc.Version
	*doc = NewRaceState()
	doc.Version = version
}
