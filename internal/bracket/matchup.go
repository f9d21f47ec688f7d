package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Matchup struct {
	ID           uuid.UUID  `db:"id"`
	TournamentID uuid.UUID  `db:"tournament_id"`
	RoundID      uuid.UUID  `db:"round_id"`
	Position     int        `db:"position"`
	Song1ID      *uuid.UUID `db:"song_1_id"`
	Song2ID      *uuid.UUID `db:"song_2_id"`
	WinnerSongID *uuid.UUID `db:"winner_song_id"`
	IsBye        bool       `db:"is_bye"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (m *Matchup) IsResolved() bool {
	return m.WinnerSongID != nil
}

func (m *Matchup) Contains(songID uuid.UUID) bool {
	return (m.Song1ID != nil && *m.Song1ID == songID) || (m.Song2ID != nil && *m.Song2ID == songID)
}

func (m *Matchup) IsWinner(songID *uuid.UUID) bool {
	return songID != nil && m.WinnerSongID != nil && *m.WinnerSongID == *songID
}

type Vote struct {
	ID            uuid.UUID `db:"id"`
	UserID        uuid.UUID `db:"user_id"`
	MatchupID     uuid.UUID `db:"matchup_id"`
	SongID        uuid.UUID `db:"song_id"`
	VotedAt       time.Time `db:"voted_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	IsVoteChanged bool      `db:"is_vote_changed"`
}
