package bracket

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyPool       = errors.New("cannot build a round from an empty song pool")
	ErrInvalidChoice   = errors.New("song is not part of this matchup")
	ErrAlreadyClosed   = errors.New("round is already closed")
	ErrBracketExists   = errors.New("bracket has already been generated")
	ErrInvalidSchedule = errors.New("invalid tournament schedule")
)

// PhaseError reports an operation attempted outside the window that permits it.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s is not allowed during %s", e.Op, e.Phase)
}

// IncompleteRoundError lists matchups that have neither a bye nor any votes.
type IncompleteRoundError struct {
	MatchupIDs []uuid.UUID
}

func (e *IncompleteRoundError) Error() string {
	ids := make([]string, len(e.MatchupIDs))
	for i, id := range e.MatchupIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("round cannot be closed, matchups without votes: %s", strings.Join(ids, ", "))
}
