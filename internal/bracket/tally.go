package bracket

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

type Tally map[uuid.UUID]int

// CountVotes groups vote counts by matchup, then by song.
func CountVotes(votes []Vote) map[uuid.UUID]Tally {
	counts := make(map[uuid.UUID]Tally)
	for _, v := range votes {
		if counts[v.MatchupID] == nil {
			counts[v.MatchupID] = make(Tally)
		}
		counts[v.MatchupID][v.SongID]++
	}
	return counts
}

// DecideWinner picks the song with more votes. Equal counts go to the earlier submission.
// ok is false when the matchup has no votes for either of its songs.
func DecideWinner(m *Matchup, tally Tally, songs map[uuid.UUID]Song) (winner uuid.UUID, ok bool, err error) {
	if m.WinnerSongID != nil {
		return *m.WinnerSongID, true, nil
	}
	if m.Song1ID == nil || m.Song2ID == nil {
		return uuid.Nil, false, fmt.Errorf("matchup %s is missing a song", m.ID)
	}

	id1, id2 := *m.Song1ID, *m.Song2ID
	votes1, votes2 := tally[id1], tally[id2]
	if votes1+votes2 == 0 {
		return uuid.Nil, false, nil
	}

	switch {
	case votes1 > votes2:
		return id1, true, nil
	case votes2 > votes1:
		return id2, true, nil
	}

	song1, found1 := songs[id1]
	song2, found2 := songs[id2]
	if !found1 || !found2 {
		return uuid.Nil, false, fmt.Errorf("matchup %s references an unknown song", m.ID)
	}
	if song2.SubmittedBefore(&song1) {
		return id2, true, nil
	}
	return id1, true, nil
}

// RoundOutcome maps each matchup to its winner, with winners listed in matchup order.
type RoundOutcome struct {
	Winners   []uuid.UUID
	ByMatchup map[uuid.UUID]uuid.UUID
}

// ResolveRound decides every matchup of a round or reports the ones that cannot be decided.
func ResolveRound(matchups []Matchup, votes []Vote, songs map[uuid.UUID]Song) (*RoundOutcome, error) {
	ordered := make([]Matchup, len(matchups))
	copy(ordered, matchups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	counts := CountVotes(votes)
	outcome := &RoundOutcome{ByMatchup: make(map[uuid.UUID]uuid.UUID, len(ordered))}
	var unresolved []uuid.UUID

	for i := range ordered {
		m := &ordered[i]
		winner, ok, err := DecideWinner(m, counts[m.ID], songs)
		if err != nil {
			return nil, err
		}
		if !ok {
			unresolved = append(unresolved, m.ID)
			continue
		}
		outcome.Winners = append(outcome.Winners, winner)
		outcome.ByMatchup[m.ID] = winner
	}

	if len(unresolved) > 0 {
		return nil, &IncompleteRoundError{MatchupIDs: unresolved}
	}
	return outcome, nil
}
