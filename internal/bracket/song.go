package bracket

import (
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/metadata"
	"github.com/google/uuid"
)

type Song struct {
	ID              uuid.UUID       `db:"id"`
	TournamentID    uuid.UUID       `db:"tournament_id"`
	SubmitterID     uuid.UUID       `db:"submitter_id"`
	Title           string          `db:"title"`
	Artist          string          `db:"artist"`
	Album           *string         `db:"album"`
	Source          metadata.Source `db:"source"`
	ExternalID      *string         `db:"external_id"`
	ExternalURL     *string         `db:"external_url"`
	ThumbnailURL    *string         `db:"thumbnail_url"`
	DurationSeconds *int            `db:"duration_seconds"`
	CreatedAt       time.Time       `db:"created_at"`
}

// SubmittedBefore orders songs by submission time, falling back to id so the order is total.
func (s *Song) SubmittedBefore(other *Song) bool {
	if !s.CreatedAt.Equal(other.CreatedAt) {
		return s.CreatedAt.Before(other.CreatedAt)
	}
	return s.ID.String() < other.ID.String()
}

func (s *Song) DisplayDuration() string {
	if s.DurationSeconds == nil || *s.DurationSeconds <= 0 {
		return ""
	}
	d := *s.DurationSeconds
	return formatMinutes(d/60, d%60)
}
