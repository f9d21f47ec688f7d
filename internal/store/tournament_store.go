package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, code, owner_id, name, description, year, registration_deadline, voting_start, voting_end, max_submissions_per_user, created_at)
        VALUES (:id, :code, :owner_id, :name, :description, :year, :registration_deadline, :voting_start, :voting_end, :max_submissions_per_user, :created_at)`, tournament)
	return err
}

func (s *TournamentStore) CodeExistsTx(ctx context.Context, tx *sqlx.Tx, code string) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM tournaments WHERE code = ?)", code)
	return exists, err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	return getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Tournament, error) {
	return getTournament(ctx, tx, id)
}

func getTournament(ctx context.Context, q sqlx.QueryerContext, id string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := sqlx.GetContext(ctx, q, &tournament, "SELECT * FROM tournaments WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentByCode(ctx context.Context, code string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE code = ?", code); err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments ORDER BY year DESC, name ASC")
	return tournaments, err
}

func (s *TournamentStore) GetTournamentsByUserID(ctx context.Context, userID uuid.UUID) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments WHERE owner_id = ? ORDER BY year DESC, name ASC", userID)
	return tournaments, err
}

// CompleteTournamentTx records the champion. A tournament completes once; a second call fails.
func (s *TournamentStore) CompleteTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, championID uuid.UUID, at time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE tournaments SET champion_song_id = ?, completed_at = ?
		WHERE id = ? AND champion_song_id IS NULL`, championID, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("tournament %s is already complete", id)
	}
	return nil
}
