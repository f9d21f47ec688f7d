package views

import (
	"sort"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/service"
	"github.com/google/uuid"
)

type MatchupView struct {
	Matchup    bracket.Matchup
	Song1      *bracket.Song
	Song2      *bracket.Song
	Votes1     int
	Votes2     int
	UserChoice *uuid.UUID
	CanVote    bool
}

func (m MatchupView) IsWinner(song *bracket.Song) bool {
	return song != nil && m.Matchup.IsWinner(&song.ID)
}

func (m MatchupView) IsChoice(song *bracket.Song) bool {
	return song != nil && m.UserChoice != nil && *m.UserChoice == song.ID
}

type RoundView struct {
	Round    bracket.Round
	Matchups []MatchupView
}

type TournamentPage struct {
	Tournament   *bracket.Tournament
	Phase        bracket.Phase
	Rounds       []RoundView
	Songs        []bracket.Song
	MySongs      []bracket.Song
	Champion     *bracket.Song
	ActiveRound  *bracket.Round
	Participants []bracket.Participant
	CanSubmit    bool
	IsAdmin      bool
	Error        string
}

// PrepareBracketData groups matchups under their rounds in round and position order, with the
// vote counts and the viewer's own picks filled in.
func PrepareBracketData(data *service.TournamentData, userVotes []bracket.Vote) []RoundView {
	choices := make(map[uuid.UUID]uuid.UUID, len(userVotes))
	for _, v := range userVotes {
		choices[v.MatchupID] = v.SongID
	}

	byRound := make(map[uuid.UUID][]MatchupView)
	for _, m := range data.Matchups {
		view := MatchupView{Matchup: m}
		tally := data.Tallies[m.ID]
		if m.Song1ID != nil {
			view.Song1 = lookupSong(data.SongMap, *m.Song1ID)
			view.Votes1 = tally[*m.Song1ID]
		}
		if m.Song2ID != nil {
			view.Song2 = lookupSong(data.SongMap, *m.Song2ID)
			view.Votes2 = tally[*m.Song2ID]
		}
		if choice, ok := choices[m.ID]; ok {
			view.UserChoice = &choice
		}
		byRound[m.RoundID] = append(byRound[m.RoundID], view)
	}

	rounds := make([]RoundView, 0, len(data.Rounds))
	for _, r := range data.Rounds {
		matchups := byRound[r.ID]
		sort.Slice(matchups, func(i, j int) bool {
			return matchups[i].Matchup.Position < matchups[j].Matchup.Position
		})
		canVote := data.Phase.AllowsVoteIn(r.Number)
		for i := range matchups {
			matchups[i].CanVote = canVote && !matchups[i].Matchup.IsBye
		}
		rounds = append(rounds, RoundView{Round: r, Matchups: matchups})
	}

	sort.Slice(rounds, func(i, j int) bool {
		return rounds[i].Round.Number < rounds[j].Round.Number
	})
	return rounds
}

func lookupSong(songs map[uuid.UUID]bracket.Song, id uuid.UUID) *bracket.Song {
	if s, ok := songs[id]; ok {
		return &s
	}
	return nil
}

// NewTournamentPage assembles the tournament screen for viewer, who may be nil.
func NewTournamentPage(data *service.TournamentData, viewerID *uuid.UUID, isAdmin bool, userVotes []bracket.Vote) TournamentPage {
	p := TournamentPage{
		Tournament:   data.Tournament,
		Phase:        data.Phase,
		Rounds:       PrepareBracketData(data, userVotes),
		Songs:        data.Songs,
		Champion:     data.Champion,
		ActiveRound:  data.ActiveRound,
		Participants: data.Participants,
		IsAdmin:      isAdmin,
	}
	if viewerID != nil {
		for _, s := range data.Songs {
			if s.SubmitterID == *viewerID {
				p.MySongs = append(p.MySongs, s)
			}
		}
		p.CanSubmit = data.Phase.AllowsSubmission() && len(p.MySongs) < data.Tournament.MaxSubmissionsPerUser
	}
	return p
}
