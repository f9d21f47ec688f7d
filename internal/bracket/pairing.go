package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRound pairs songs sequentially in the given seed order. With an odd count the last song
// gets a bye, which is created already resolved. The result has exactly ceil(n/2) matchups.
func NewRound(tournamentID uuid.UUID, number int, songIDs []uuid.UUID, now time.Time) (*Round, []Matchup, error) {
	if len(songIDs) == 0 {
		return nil, nil, ErrEmptyPool
	}

	seen := make(map[uuid.UUID]struct{}, len(songIDs))
	for _, id := range songIDs {
		if _, dup := seen[id]; dup {
			return nil, nil, fmt.Errorf("song %s is listed more than once", id)
		}
		seen[id] = struct{}{}
	}

	round := &Round{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Number:       number,
		Name:         RoundName(len(songIDs)),
		Status:       RoundOpen,
		CreatedAt:    now,
	}

	matchups := make([]Matchup, 0, (len(songIDs)+1)/2)
	for i := 0; i < len(songIDs); i += 2 {
		song1 := songIDs[i]
		m := Matchup{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			RoundID:      round.ID,
			Position:     len(matchups) + 1,
			Song1ID:      &song1,
			CreatedAt:    now,
		}

		if i+1 < len(songIDs) {
			song2 := songIDs[i+1]
			m.Song2ID = &song2
		} else {
			m.IsBye = true
			m.WinnerSongID = &song1
		}

		matchups = append(matchups, m)
	}

	return round, matchups, nil
}
