package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/db"
	"github.com/AdamBeresnev/aux-analytics/internal/metadata"
	users "github.com/AdamBeresnev/aux-analytics/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSuperUserID = "00000000-0000-0000-0000-000000000001"

// setupTestDB creates a throwaway SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to open test DB")

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	require.NoError(t, NewUserStore(database).CreateUser(context.Background(), &users.User{
		ID:       uuid.MustParse(testSuperUserID),
		Email:    "owner@example.com",
		Username: "Owner",
		IsAdmin:  true,
	}))

	return database
}

func inTx(t *testing.T, database *sqlx.DB, fn func(tx *sqlx.Tx)) {
	t.Helper()
	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit())
}

func newTestTournament() *bracket.Tournament {
	deadline := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	return &bracket.Tournament{
		ID:                    uuid.New(),
		Code:                  "AB2C",
		OwnerID:               uuid.MustParse(testSuperUserID),
		Name:                  "Test Tournament",
		Year:                  2026,
		RegistrationDeadline:  deadline,
		VotingStart:           deadline.Add(time.Hour),
		VotingEnd:             deadline.Add(7 * 24 * time.Hour),
		MaxSubmissionsPerUser: bracket.DefaultMaxSubmissionsPerUser,
		CreatedAt:             time.Now().UTC(),
	}
}

func newTestSong(tournamentID uuid.UUID, title string, at time.Time) *bracket.Song {
	return &bracket.Song{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		SubmitterID:  uuid.MustParse(testSuperUserID),
		Title:        title,
		Artist:       "Artist",
		Source:       metadata.SourceManual,
		CreatedAt:    at,
	}
}

// seedRound stores a tournament, two songs and a single open round with one matchup
func seedRound(t *testing.T, database *sqlx.DB, store *TournamentStore) (*bracket.Tournament, *bracket.Round, bracket.Matchup, []*bracket.Song) {
	t.Helper()
	ctx := context.Background()

	tournament := newTestTournament()
	songs := []*bracket.Song{
		newTestSong(tournament.ID, "Song A", time.Unix(100, 0).UTC()),
		newTestSong(tournament.ID, "Song B", time.Unix(200, 0).UTC()),
	}

	round, matchups, err := bracket.NewRound(tournament.ID, 1, []uuid.UUID{songs[0].ID, songs[1].ID}, time.Now().UTC())
	require.NoError(t, err)

	inTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, store.CreateTournament(ctx, tx, tournament))
		for _, s := range songs {
			require.NoError(t, store.CreateSong(ctx, tx, s))
		}
		require.NoError(t, store.CreateRound(ctx, tx, round))
		require.NoError(t, store.CreateMatchups(ctx, tx, matchups))
	})

	return tournament, round, matchups[0], songs
}

func TestCreateTournament(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	tournament := newTestTournament()

	inTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, store.CreateTournament(context.Background(), tx, tournament))

		exists, err := store.CodeExistsTx(context.Background(), tx, tournament.Code)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	fetched, err := store.GetTournament(context.Background(), tournament.ID.String())
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, tournament.Name, fetched.Name)
	assert.Equal(t, tournament.Code, fetched.Code)
	assert.True(t, tournament.RegistrationDeadline.Equal(fetched.RegistrationDeadline))
	assert.True(t, tournament.VotingEnd.Equal(fetched.VotingEnd))
	assert.Nil(t, fetched.ChampionSongID)

	byCode, err := store.GetTournamentByCode(context.Background(), "AB2C")
	require.NoError(t, err)
	assert.Equal(t, tournament.ID, byCode.ID)
}

func TestCreateSong_UniquePerSubmitter(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament := newTestTournament()

	inTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, store.CreateTournament(ctx, tx, tournament))
		require.NoError(t, store.CreateSong(ctx, tx, newTestSong(tournament.ID, "Same", time.Now().UTC())))
	})

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = store.CreateSong(ctx, tx, newTestSong(tournament.ID, "Same", time.Now().UTC()))
	assert.Error(t, err)
}

func TestCreateMatchups(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	tournament, round, matchup, songs := seedRound(t, database, store)

	fetched, err := store.GetMatchups(context.Background(), tournament.ID.String())
	require.NoError(t, err)
	require.Len(t, fetched, 1)

	assert.Equal(t, matchup.ID, fetched[0].ID)
	assert.Equal(t, round.ID, fetched[0].RoundID)
	assert.Equal(t, songs[0].ID, *fetched[0].Song1ID)
	assert.Equal(t, songs[1].ID, *fetched[0].Song2ID)
	assert.Nil(t, fetched[0].WinnerSongID)
	assert.False(t, fetched[0].IsBye)

	rounds, err := store.GetRounds(context.Background(), tournament.ID.String())
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, bracket.RoundOpen, rounds[0].Status)
}

func TestUpsertVote_OneRowPerVoterAndMatchup(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	_, round, matchup, songs := seedRound(t, database, store)
	voterID := uuid.MustParse(testSuperUserID)

	first := time.Now().UTC()
	inTx(t, database, func(tx *sqlx.Tx) {
		vote, err := store.UpsertVoteTx(ctx, tx, &bracket.Vote{
			ID: uuid.New(), UserID: voterID, MatchupID: matchup.ID, SongID: songs[0].ID, VotedAt: first, UpdatedAt: first,
		})
		require.NoError(t, err)
		assert.Equal(t, songs[0].ID, vote.SongID)
		assert.False(t, vote.IsVoteChanged)
	})

	var firstID uuid.UUID
	require.NoError(t, database.Get(&firstID, "SELECT id FROM votes WHERE user_id = ?", voterID))

	second := first.Add(time.Minute)
	inTx(t, database, func(tx *sqlx.Tx) {
		vote, err := store.UpsertVoteTx(ctx, tx, &bracket.Vote{
			ID: uuid.New(), UserID: voterID, MatchupID: matchup.ID, SongID: songs[1].ID, VotedAt: second, UpdatedAt: second,
		})
		require.NoError(t, err)
		assert.Equal(t, firstID, vote.ID)
		assert.Equal(t, songs[1].ID, vote.SongID)
		assert.True(t, vote.IsVoteChanged)
		assert.True(t, first.Equal(vote.VotedAt))
		assert.True(t, second.Equal(vote.UpdatedAt))
	})

	var count int
	require.NoError(t, database.Get(&count, "SELECT COUNT(*) FROM votes WHERE user_id = ? AND matchup_id = ?", voterID, matchup.ID))
	assert.Equal(t, 1, count)

	inTx(t, database, func(tx *sqlx.Tx) {
		votes, err := store.GetRoundVotesTx(ctx, tx, round.ID)
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, songs[1].ID, votes[0].SongID)
	})
}

func TestCloseRoundTx_OnlyOnce(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	_, round, _, _ := seedRound(t, database, store)

	inTx(t, database, func(tx *sqlx.Tx) {
		closed, err := store.CloseRoundTx(ctx, tx, round.ID, time.Now().UTC())
		require.NoError(t, err)
		assert.True(t, closed)
	})

	inTx(t, database, func(tx *sqlx.Tx) {
		closed, err := store.CloseRoundTx(ctx, tx, round.ID, time.Now().UTC())
		require.NoError(t, err)
		assert.False(t, closed)
	})

	fetched, err := store.GetRound(ctx, round.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bracket.RoundClosed, fetched.Status)
	assert.NotNil(t, fetched.ClosedAt)

	open, err := store.ListOpenRounds(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestSetMatchupWinnerTx_Immutable(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	_, _, matchup, songs := seedRound(t, database, store)

	inTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, store.SetMatchupWinnerTx(ctx, tx, matchup.ID, songs[0].ID))
		// Same winner again is a no-op
		require.NoError(t, store.SetMatchupWinnerTx(ctx, tx, matchup.ID, songs[0].ID))
		assert.Error(t, store.SetMatchupWinnerTx(ctx, tx, matchup.ID, songs[1].ID))
	})

	fetched, err := store.GetMatchup(ctx, matchup.ID.String())
	require.NoError(t, err)
	require.NotNil(t, fetched.WinnerSongID)
	assert.Equal(t, songs[0].ID, *fetched.WinnerSongID)
}

func TestCompleteTournamentTx(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament, _, _, songs := seedRound(t, database, store)

	inTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, store.CompleteTournamentTx(ctx, tx, tournament.ID, songs[0].ID, time.Now().UTC()))
		assert.Error(t, store.CompleteTournamentTx(ctx, tx, tournament.ID, songs[1].ID, time.Now().UTC()))
	})

	fetched, err := store.GetTournament(ctx, tournament.ID.String())
	require.NoError(t, err)
	assert.True(t, fetched.IsComplete())
	assert.Equal(t, songs[0].ID, *fetched.ChampionSongID)
}

func TestRegisterParticipant_Idempotent(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament := newTestTournament()
	owner := uuid.MustParse(testSuperUserID)
	first := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	inTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, store.CreateTournament(ctx, tx, tournament))
		require.NoError(t, store.RegisterParticipant(ctx, tx, tournament.ID, owner, first))
		require.NoError(t, store.RegisterParticipant(ctx, tx, tournament.ID, owner, first.Add(time.Hour)))
	})

	count, err := store.CountParticipants(ctx, tournament.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	participants, err := store.GetParticipants(ctx, tournament.ID.String())
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "Owner", participants[0].Username)
	assert.True(t, first.Equal(participants[0].RegisteredAt))

	registered, err := store.IsRegistered(ctx, tournament.ID.String(), owner)
	require.NoError(t, err)
	assert.True(t, registered)

	registered, err = store.IsRegistered(ctx, tournament.ID.String(), uuid.New())
	require.NoError(t, err)
	assert.False(t, registered)
}
