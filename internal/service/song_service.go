package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/metadata"
	"github.com/AdamBeresnev/aux-analytics/internal/store"
	"github.com/AdamBeresnev/aux-analytics/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxSongFieldLength = 200

type MetadataResolver interface {
	Resolve(ctx context.Context, source metadata.Source, rawURL string) (*metadata.Metadata, error)
}

type SongService struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	resolver MetadataResolver
	now      func() time.Time
}

func NewSongService(db *sqlx.DB, store *store.TournamentStore, resolver MetadataResolver) *SongService {
	return &SongService{db: db, store: store, resolver: resolver, now: time.Now}
}

// SongInput is a submission form. Title and Artist are required for manual entries and act as
// the fallback when a Spotify or YouTube lookup fails.
type SongInput struct {
	Source metadata.Source
	Title  string
	Artist string
	Album  string
	URL    string
}

func (in SongInput) hasManualDetails() bool {
	return strings.TrimSpace(in.Title) != "" && strings.TrimSpace(in.Artist) != ""
}

func (in SongInput) validate() error {
	switch in.Source {
	case metadata.SourceManual:
		if !in.hasManualDetails() {
			return fmt.Errorf("%w: title and artist are required for manual entry", ErrInvalidSong)
		}
	case metadata.SourceSpotify, metadata.SourceYouTube:
		if strings.TrimSpace(in.URL) == "" {
			return fmt.Errorf("%w: a %s url is required", ErrInvalidSong, in.Source)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidSong, in.Source)
	}

	return nil
}

func (s *SongService) songFromInput(ctx context.Context, input SongInput) (*bracket.Song, error) {
	song := &bracket.Song{
		Title:  strings.TrimSpace(input.Title),
		Artist: strings.TrimSpace(input.Artist),
		Album:  utils.NilIfBlank(input.Album),
		Source: metadata.SourceManual,
	}
	if input.Source == metadata.SourceManual {
		return song, nil
	}

	md, err := s.lookup(ctx, input)
	if err != nil {
		if !input.hasManualDetails() {
			return nil, fmt.Errorf("%s lookup: %w", input.Source, err)
		}
		slog.Warn("metadata lookup failed, storing manual entry", "source", input.Source, "url", input.URL, "error", err)
		song.ExternalURL = utils.NilIfBlank(input.URL)
		return song, nil
	}

	song.Title = md.Title
	song.Artist = md.Artist
	song.Album = md.Album
	song.Source = input.Source
	song.ExternalID = utils.NilIfBlank(md.ExternalID)
	song.ExternalURL = utils.NilIfBlank(md.URL)
	song.ThumbnailURL = md.ThumbnailURL
	song.DurationSeconds = md.DurationSeconds
	return song, nil
}

// lookup resolves a link. A result without both title and artist counts as a failed lookup.
func (s *SongService) lookup(ctx context.Context, input SongInput) (*metadata.Metadata, error) {
	md, err := s.resolver.Resolve(ctx, input.Source, strings.TrimSpace(input.URL))
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, fmt.Errorf("%w: %s returned nothing", metadata.ErrLookupFailed, input.Source)
	}
	md.Title = strings.TrimSpace(md.Title)
	md.Artist = strings.TrimSpace(md.Artist)
	if md.Title == "" || md.Artist == "" {
		return nil, fmt.Errorf("%w: %s returned no title or artist", metadata.ErrLookupFailed, input.Source)
	}
	return md, nil
}

func checkSongLengths(song *bracket.Song) error {
	fields := map[string]string{"title": song.Title, "artist": song.Artist, "album": utils.Deref(song.Album)}
	for name, value := range fields {
		if utils.ExceedsRunes(value, maxSongFieldLength) {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidSong, name, maxSongFieldLength)
		}
	}
	return nil
}

// submissionPhase loads the tournament and rejects the call unless registration is open. A nil tx
// reads outside any transaction.
func (s *SongService) submissionPhase(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (*bracket.Tournament, error) {
	var tournament *bracket.Tournament
	var rounds []bracket.Round
	var err error

	if tx == nil {
		tournament, err = s.store.GetTournament(ctx, tournamentID.String())
	} else {
		tournament, err = s.store.GetTournamentTx(ctx, tx, tournamentID.String())
	}
	if err != nil {
		return nil, notFound("tournament", err)
	}

	if tx == nil {
		rounds, err = s.store.GetRounds(ctx, tournamentID.String())
	} else {
		rounds, err = s.store.GetRoundsTx(ctx, tx, tournamentID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rounds: %w", err)
	}

	if phase := bracket.CurrentPhase(tournament, rounds, s.now().UTC()); !phase.AllowsSubmission() {
		return nil, &bracket.PhaseError{Op: "song submission", Phase: phase}
	}
	return tournament, nil
}

// SubmitSong adds a song to a tournament while registration is open. The phase is checked before
// the metadata lookup and again inside the transaction, and no network call holds the database.
func (s *SongService) SubmitSong(ctx context.Context, tournamentID uuid.UUID, submitterID uuid.UUID, input SongInput) (*bracket.Song, error) {
	if _, err := s.submissionPhase(ctx, nil, tournamentID); err != nil {
		return nil, err
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	song, err := s.songFromInput(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := checkSongLengths(song); err != nil {
		return nil, err
	}
	song.ID = uuid.New()
	song.TournamentID = tournamentID
	song.SubmitterID = submitterID

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.submissionPhase(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountSongsBySubmitterTx(ctx, tx, tournamentID, submitterID)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	if count >= tournament.MaxSubmissionsPerUser {
		return nil, fmt.Errorf("%w (%d)", ErrSubmissionLimit, tournament.MaxSubmissionsPerUser)
	}

	now := s.now().UTC()
	song.CreatedAt = now
	if err := s.store.CreateSong(ctx, tx, song); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%q by %s: %w", song.Title, song.Artist, ErrDuplicateSong)
		}
		return nil, fmt.Errorf("failed to create song: %w", err)
	}

	if err := s.store.RegisterParticipant(ctx, tx, tournamentID, submitterID, now); err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("song submitted", "tournament_id", tournamentID, "song_id", song.ID, "source", song.Source)
	return song, nil
}

// IsLookupFailure reports whether a submission failed only because metadata could not be
// fetched, in which case the form should offer manual entry.
func IsLookupFailure(err error) bool {
	return errors.Is(err, metadata.ErrLookupFailed) ||
		errors.Is(err, metadata.ErrInvalidURL) ||
		errors.Is(err, metadata.ErrNoResolver)
}
