package bracket

import (
	"time"

	"github.com/google/uuid"
)

// Registration marks a user as a participant of a tournament. There is at most one per pair.
type Registration struct {
	ID           uuid.UUID `db:"id"`
	TournamentID uuid.UUID `db:"tournament_id"`
	UserID       uuid.UUID `db:"user_id"`
	RegisteredAt time.Time `db:"registered_at"`
}

// Participant is a registration joined with the user's display name.
type Participant struct {
	UserID       uuid.UUID `db:"user_id"`
	Username     string    `db:"username"`
	RegisteredAt time.Time `db:"registered_at"`
}
