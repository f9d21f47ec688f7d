package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/metadata"
	"github.com/AdamBeresnev/aux-analytics/internal/service"
	"github.com/AdamBeresnev/aux-analytics/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData(t *testing.T) (*service.TournamentData, []bracket.Song) {
	t.Helper()
	now := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	tournament := &bracket.Tournament{
		ID:                    uuid.New(),
		Code:                  "AB2C",
		Name:                  "Songs of 2026",
		RegistrationDeadline:  now.Add(-2 * time.Hour),
		VotingStart:           now.Add(-time.Hour),
		VotingEnd:             now.Add(48 * time.Hour),
		MaxSubmissionsPerUser: 4,
	}

	submitter := uuid.New()
	songs := make([]bracket.Song, 5)
	for i := range songs {
		songs[i] = bracket.Song{
			ID:           uuid.New(),
			TournamentID: tournament.ID,
			SubmitterID:  submitter,
			Title:        "Song",
			Artist:       "Artist",
			Source:       metadata.SourceManual,
			CreatedAt:    now.Add(time.Duration(i) * time.Minute),
		}
	}
	songs[0].Source = metadata.SourceYouTube
	songs[0].ExternalID = utils.Ptr("dQw4w9WgXcQ")

	ids := make([]uuid.UUID, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	round1, matchups1, err := bracket.NewRound(tournament.ID, 1, ids, now)
	require.NoError(t, err)
	round1.Status = bracket.RoundClosed
	matchups1[0].WinnerSongID = &ids[0]
	matchups1[1].WinnerSongID = &ids[3]

	round2, matchups2, err := bracket.NewRound(tournament.ID, 2, []uuid.UUID{ids[0], ids[3], ids[4]}, now)
	require.NoError(t, err)

	// Matchups arrive out of order to check sorting.
	matchups := append(append([]bracket.Matchup{}, matchups2...), matchups1[2], matchups1[1], matchups1[0])
	rounds := []bracket.Round{*round2, *round1}

	votes := []bracket.Vote{
		{UserID: submitter, MatchupID: matchups2[0].ID, SongID: ids[3]},
		{UserID: uuid.New(), MatchupID: matchups2[0].ID, SongID: ids[3]},
		{UserID: uuid.New(), MatchupID: matchups2[0].ID, SongID: ids[0]},
	}

	songMap := make(map[uuid.UUID]bracket.Song)
	for _, s := range songs {
		songMap[s.ID] = s
	}

	return &service.TournamentData{
		Tournament:  tournament,
		Phase:       bracket.CurrentPhase(tournament, rounds, now),
		Songs:       songs,
		SongMap:     songMap,
		Rounds:      rounds,
		Matchups:    matchups,
		Tallies:     bracket.CountVotes(votes),
		ActiveRound: bracket.ActiveRound(rounds),
		Participants: []bracket.Participant{
			{UserID: submitter, Username: "Freddie", RegisteredAt: now.Add(-3 * time.Hour)},
		},
	}, songs
}

func TestPrepareBracketData(t *testing.T) {
	data, songs := testData(t)
	myVote := []bracket.Vote{{MatchupID: data.Matchups[0].ID, SongID: songs[3].ID}}

	rounds := PrepareBracketData(data, myVote)
	require.Len(t, rounds, 2)

	assert.Equal(t, 1, rounds[0].Round.Number)
	assert.Equal(t, 2, rounds[1].Round.Number)

	first := rounds[0].Matchups
	require.Len(t, first, 3)
	for i, m := range first {
		assert.Equal(t, i+1, m.Matchup.Position)
		assert.False(t, m.CanVote, "closed rounds take no votes")
	}
	assert.True(t, first[0].IsWinner(first[0].Song1))
	assert.True(t, first[2].Matchup.IsBye)

	second := rounds[1].Matchups
	require.Len(t, second, 2)
	assert.True(t, second[0].CanVote)
	assert.False(t, second[1].CanVote)
	assert.Equal(t, 1, second[0].Votes1)
	assert.Equal(t, 2, second[0].Votes2)
	assert.True(t, second[0].IsChoice(second[0].Song2))
	assert.False(t, second[0].IsChoice(second[0].Song1))
}

func TestNewTournamentPage(t *testing.T) {
	data, songs := testData(t)

	page := NewTournamentPage(data, &songs[0].SubmitterID, true, nil)
	assert.Len(t, page.MySongs, 5)
	assert.False(t, page.CanSubmit)
	assert.Equal(t, 2, page.ActiveRound.Number)

	assert.Len(t, page.Participants, 1)

	anonymous := NewTournamentPage(data, nil, false, nil)
	assert.Empty(t, anonymous.MySongs)
}

func TestTournamentViewRenders(t *testing.T) {
	data, _ := testData(t)

	var buf bytes.Buffer
	err := TournamentView(context.Background(), NewTournamentPage(data, nil, true, nil)).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Songs of 2026")
	assert.Contains(t, html, "voting (round 2)")
	assert.Contains(t, html, "Close Semifinals")
	assert.Contains(t, html, "https://www.youtube.com/embed/dQw4w9WgXcQ")
	assert.Contains(t, html, "Participants (1)")
	assert.Contains(t, html, "Freddie")
}

func TestIndexRenders(t *testing.T) {
	var buf bytes.Buffer
	err := Index(context.Background(), IndexData{Open: []bracket.Tournament{{ID: uuid.New(), Name: "Summer Hits", Year: 2026}}}).Render(context.Background(), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Summer Hits")
	assert.Contains(t, buf.String(), "Log in")
}
