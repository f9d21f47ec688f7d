package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DefaultMaxSubmissionsPerUser = 4

type Tournament struct {
	ID                    uuid.UUID  `db:"id"`
	Code                  string     `db:"code"`
	OwnerID               uuid.UUID  `db:"owner_id"`
	Name                  string     `db:"name" json:"name"`
	Description           string     `db:"description"`
	Year                  int        `db:"year"`
	RegistrationDeadline  time.Time  `db:"registration_deadline"`
	VotingStart           time.Time  `db:"voting_start"`
	VotingEnd             time.Time  `db:"voting_end"`
	MaxSubmissionsPerUser int        `db:"max_submissions_per_user"`
	ChampionSongID        *uuid.UUID `db:"champion_song_id"`
	CompletedAt           *time.Time `db:"completed_at"`
	CreatedAt             time.Time  `db:"created_at"`
}

func (t *Tournament) IsComplete() bool {
	return t.ChampionSongID != nil
}

func (t *Tournament) FormattedCode() string {
	return "#" + t.Code
}

// ValidateSchedule enforces registration_deadline < voting_start < voting_end.
func ValidateSchedule(registrationDeadline, votingStart, votingEnd time.Time) error {
	if !registrationDeadline.Before(votingStart) {
		return fmt.Errorf("%w: voting must start after the registration deadline", ErrInvalidSchedule)
	}
	if !votingStart.Before(votingEnd) {
		return fmt.Errorf("%w: voting must end after it starts", ErrInvalidSchedule)
	}
	return nil
}
