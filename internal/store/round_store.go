package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (s *TournamentStore) CreateRound(ctx context.Context, tx *sqlx.Tx, round *bracket.Round) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO rounds (id, tournament_id, round_number, name, status, voting_deadline, created_at)
		VALUES (:id, :tournament_id, :round_number, :name, :status, :voting_deadline, :created_at)`, round)
	return err
}

func (s *TournamentStore) GetRound(ctx context.Context, id string) (*bracket.Round, error) {
	return getRound(ctx, s.db, id)
}

func (s *TournamentStore) GetRoundTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Round, error) {
	return getRound(ctx, tx, id)
}

func getRound(ctx context.Context, q sqlx.QueryerContext, id string) (*bracket.Round, error) {
	var round bracket.Round
	if err := sqlx.GetContext(ctx, q, &round, "SELECT * FROM rounds WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &round, nil
}

func (s *TournamentStore) GetRounds(ctx context.Context, tournamentID string) ([]bracket.Round, error) {
	return getRounds(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetRoundsTx(ctx context.Context, tx *sqlx.Tx, tournamentID string) ([]bracket.Round, error) {
	return getRounds(ctx, tx, tournamentID)
}

func getRounds(ctx context.Context, q sqlx.QueryerContext, tournamentID string) ([]bracket.Round, error) {
	var rounds []bracket.Round
	err := sqlx.SelectContext(ctx, q, &rounds, "SELECT * FROM rounds WHERE tournament_id = ? ORDER BY round_number ASC", tournamentID)
	return rounds, err
}

func (s *TournamentStore) ListOpenRounds(ctx context.Context) ([]bracket.Round, error) {
	var rounds []bracket.Round
	err := s.db.SelectContext(ctx, &rounds, "SELECT * FROM rounds WHERE status = ? ORDER BY tournament_id, round_number", bracket.RoundOpen)
	return rounds, err
}

// CloseRoundTx flips a round from open to closed. It reports false when the round was not open,
// which is how concurrent closes of the same round are told apart.
func (s *TournamentStore) CloseRoundTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, "UPDATE rounds SET status = ?, closed_at = ? WHERE id = ? AND status = ?",
		bracket.RoundClosed, at, id, bracket.RoundOpen)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
