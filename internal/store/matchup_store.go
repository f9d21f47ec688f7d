package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const upsertVoteQuery = `
	INSERT INTO votes (id, user_id, matchup_id, song_id, voted_at, updated_at, is_vote_changed)
	VALUES (:id, :user_id, :matchup_id, :song_id, :voted_at, :updated_at, 0)
	ON CONFLICT (user_id, matchup_id) DO UPDATE SET
		is_vote_changed = votes.is_vote_changed OR votes.song_id <> excluded.song_id,
		song_id = excluded.song_id,
		updated_at = excluded.updated_at
`

func (s *TournamentStore) CreateMatchups(ctx context.Context, tx *sqlx.Tx, matchups []bracket.Matchup) error {
	if len(matchups) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matchups (id, tournament_id, round_id, position, song_1_id, song_2_id, winner_song_id, is_bye, created_at)
		VALUES (:id, :tournament_id, :round_id, :position, :song_1_id, :song_2_id, :winner_song_id, :is_bye, :created_at)`, matchups)
	return err
}

func (s *TournamentStore) GetMatchup(ctx context.Context, id string) (*bracket.Matchup, error) {
	return getMatchup(ctx, s.db, id)
}

func (s *TournamentStore) GetMatchupTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Matchup, error) {
	return getMatchup(ctx, tx, id)
}

func getMatchup(ctx context.Context, q sqlx.QueryerContext, id string) (*bracket.Matchup, error) {
	var matchup bracket.Matchup
	if err := sqlx.GetContext(ctx, q, &matchup, "SELECT * FROM matchups WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &matchup, nil
}

func (s *TournamentStore) GetMatchups(ctx context.Context, tournamentID string) ([]bracket.Matchup, error) {
	var matchups []bracket.Matchup
	err := s.db.SelectContext(ctx, &matchups, `SELECT m.* FROM matchups m
		JOIN rounds r ON r.id = m.round_id
		WHERE m.tournament_id = ?
		ORDER BY r.round_number ASC, m.position ASC`, tournamentID)
	return matchups, err
}

func (s *TournamentStore) GetRoundMatchupsTx(ctx context.Context, tx *sqlx.Tx, roundID uuid.UUID) ([]bracket.Matchup, error) {
	var matchups []bracket.Matchup
	err := tx.SelectContext(ctx, &matchups, "SELECT * FROM matchups WHERE round_id = ? ORDER BY position ASC", roundID)
	return matchups, err
}

// SetMatchupWinnerTx only fills an empty winner; a decided matchup keeps its winner.
func (s *TournamentStore) SetMatchupWinnerTx(ctx context.Context, tx *sqlx.Tx, matchupID uuid.UUID, winnerID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "UPDATE matchups SET winner_song_id = ? WHERE id = ? AND winner_song_id IS NULL", winnerID, matchupID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var existing *uuid.UUID
	if err := tx.GetContext(ctx, &existing, "SELECT winner_song_id FROM matchups WHERE id = ?", matchupID); err != nil {
		return err
	}
	if existing == nil || *existing != winnerID {
		return fmt.Errorf("matchup %s already has a different winner", matchupID)
	}
	return nil
}

// UpsertVoteTx keeps one vote per voter and matchup; a revote replaces the chosen song.
func (s *TournamentStore) UpsertVoteTx(ctx context.Context, tx *sqlx.Tx, vote *bracket.Vote) (*bracket.Vote, error) {
	if _, err := tx.NamedExecContext(ctx, upsertVoteQuery, vote); err != nil {
		return nil, err
	}

	var stored bracket.Vote
	err := tx.GetContext(ctx, &stored, "SELECT * FROM votes WHERE user_id = ? AND matchup_id = ?", vote.UserID, vote.MatchupID)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *TournamentStore) GetRoundVotesTx(ctx context.Context, tx *sqlx.Tx, roundID uuid.UUID) ([]bracket.Vote, error) {
	var votes []bracket.Vote
	err := tx.SelectContext(ctx, &votes, `SELECT v.* FROM votes v
		JOIN matchups m ON m.id = v.matchup_id
		WHERE m.round_id = ?`, roundID)
	return votes, err
}

func (s *TournamentStore) GetVotes(ctx context.Context, tournamentID string) ([]bracket.Vote, error) {
	var votes []bracket.Vote
	err := s.db.SelectContext(ctx, &votes, `SELECT v.* FROM votes v
		JOIN matchups m ON m.id = v.matchup_id
		WHERE m.tournament_id = ?`, tournamentID)
	return votes, err
}

func (s *TournamentStore) GetUserVotes(ctx context.Context, tournamentID string, userID uuid.UUID) ([]bracket.Vote, error) {
	var votes []bracket.Vote
	err := s.db.SelectContext(ctx, &votes, `SELECT v.* FROM votes v
		JOIN matchups m ON m.id = v.matchup_id
		WHERE m.tournament_id = ? AND v.user_id = ?`, tournamentID, userID)
	return votes, err
}
