package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const registerParticipantQuery = `
	INSERT INTO registrations (id, tournament_id, user_id, registered_at)
	VALUES (:id, :tournament_id, :user_id, :registered_at)
	ON CONFLICT(tournament_id, user_id) DO NOTHING
`

// RegisterParticipant records userID as a participant. Registering twice keeps the first row.
func (s *TournamentStore) RegisterParticipant(ctx context.Context, tx *sqlx.Tx, tournamentID, userID uuid.UUID, at time.Time) error {
	_, err := tx.NamedExecContext(ctx, registerParticipantQuery, &bracket.Registration{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		UserID:       userID,
		RegisteredAt: at,
	})
	return err
}

func (s *TournamentStore) GetParticipants(ctx context.Context, tournamentID string) ([]bracket.Participant, error) {
	var participants []bracket.Participant
	err := s.db.SelectContext(ctx, &participants, `
		SELECT r.user_id, u.username, r.registered_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.tournament_id = ?
		ORDER BY r.registered_at ASC, u.username ASC`, tournamentID)
	return participants, err
}

func (s *TournamentStore) CountParticipants(ctx context.Context, tournamentID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM registrations WHERE tournament_id = ?", tournamentID)
	return count, err
}

func (s *TournamentStore) IsRegistered(ctx context.Context, tournamentID string, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM registrations WHERE tournament_id = ? AND user_id = ?)", tournamentID, userID)
	return exists, err
}
