package domain

import "errors"

var (
	// ErrStoreUnavailable wraps any failure to read or write a race document.
	ErrStoreUnavailable = errors.New("race store unavailable")
	// ErrVersionConflict is returned by a store when the document changed since it was loaded.
	ErrVersionConflict = errors.New("race state was modified concurrently")
	// ErrInvalidJoin is returned for blank player names; callers treat it as a no-op.
	ErrInvalidJoin = errors.New("player name is blank")
	// ErrMissingOrganizerName rejects a race start without an organizer.
	ErrMissingOrganizerName = errors.New("organizer name is required to start the race")
	// ErrParticipantNotFound is returned when a player acts before joining.
	ErrParticipantNotFound = errors.New("player has not joined the race")
	// ErrRaceNotStarted rejects answers before the organizer starts the race.
	ErrRaceNotStarted = errors.New("race has not started")
	// ErrStaleSubmission is returned for an answer to a question the player already passed.
	ErrStaleSubmission = errors.New("answer submitted for a question already answered")
	// ErrQuestionAhead is returned for an answer to a question the player has not reached.
	ErrQuestionAhead = errors.New("answer submitted for a question not yet reached")
	// ErrAlreadyFinished rejects answers from players who completed the race.
	ErrAlreadyFinished = errors.New("player already finished the race")
	// ErrNoMoreQuestions is returned once the question bank is exhausted.
	ErrNoMoreQuestions = errors.New("no more questions")
	// ErrOptionNotFound indicates the selected option is not offered by the question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrInvalidBank indicates an unusable question bank.
	ErrInvalidBank = errors.New("invalid question bank")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
)
