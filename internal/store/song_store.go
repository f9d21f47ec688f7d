package store

import (
	"context"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (s *TournamentStore) CreateSong(ctx context.Context, tx *sqlx.Tx, song *bracket.Song) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO songs (id, tournament_id, submitter_id, title, artist, album, source, external_id, external_url, thumbnail_url, duration_seconds, created_at)
		VALUES (:id, :tournament_id, :submitter_id, :title, :artist, :album, :source, :external_id, :external_url, :thumbnail_url, :duration_seconds, :created_at)`, song)
	return err
}

func (s *TournamentStore) GetSongs(ctx context.Context, tournamentID string) ([]bracket.Song, error) {
	return getSongs(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetSongsTx(ctx context.Context, tx *sqlx.Tx, tournamentID string) ([]bracket.Song, error) {
	return getSongs(ctx, tx, tournamentID)
}

func getSongs(ctx context.Context, q sqlx.QueryerContext, tournamentID string) ([]bracket.Song, error) {
	var songs []bracket.Song
	err := sqlx.SelectContext(ctx, q, &songs, "SELECT * FROM songs WHERE tournament_id = ? ORDER BY created_at ASC, id ASC", tournamentID)
	return songs, err
}

func (s *TournamentStore) GetSongsBySubmitter(ctx context.Context, tournamentID string, submitterID uuid.UUID) ([]bracket.Song, error) {
	var songs []bracket.Song
	err := s.db.SelectContext(ctx, &songs, "SELECT * FROM songs WHERE tournament_id = ? AND submitter_id = ? ORDER BY created_at ASC", tournamentID, submitterID)
	return songs, err
}

func (s *TournamentStore) CountSongsBySubmitterTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, submitterID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM songs WHERE tournament_id = ? AND submitter_id = ?", tournamentID, submitterID)
	return count, err
}
