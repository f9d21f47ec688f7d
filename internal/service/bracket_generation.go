package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SeedOrder string

const (
	SeedSubmission SeedOrder = "submission"
	SeedRandom     SeedOrder = "random"
)

func ParseSeedOrder(s string) (SeedOrder, error) {
	switch SeedOrder(s) {
	case SeedSubmission, SeedRandom:
		return SeedOrder(s), nil
	case "":
		return SeedSubmission, nil
	}
	return "", fmt.Errorf("unknown seed order %q", s)
}

type BracketGeneration struct {
	db    *sqlx.DB
	store *store.TournamentStore
	now   func() time.Time
}

func NewBracketService(db *sqlx.DB, store *store.TournamentStore) *BracketGeneration {
	return &BracketGeneration{db: db, store: store, now: time.Now}
}

type RoundData struct {
	Round    *bracket.Round
	Matchups []bracket.Matchup
}

// SeedSongs orders the pool for pairing. Submission order is oldest first; random order is a
// shuffle driven by seed so the same seed always yields the same bracket.
func SeedSongs(songs []bracket.Song, order SeedOrder, seed uint64) []uuid.UUID {
	sorted := make([]bracket.Song, len(songs))
	copy(sorted, songs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedBefore(&sorted[j])
	})

	ids := make([]uuid.UUID, len(sorted))
	for i, s := range sorted {
		ids[i] = s.ID
	}

	if order == SeedRandom {
		r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		r.Shuffle(len(ids), func(i, j int) {
			ids[i], ids[j] = ids[j], ids[i]
		})
	}
	return ids
}

// GenerateFirstRound builds round 1 from every song submitted to the tournament. It runs once,
// after registration has closed.
func (s *BracketGeneration) GenerateFirstRound(ctx context.Context, tournamentID uuid.UUID, order SeedOrder, seed uint64) (*RoundData, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID.String())
	if err != nil {
		return nil, notFound("tournament", err)
	}

	rounds, err := s.store.GetRoundsTx(ctx, tx, tournamentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get rounds: %w", err)
	}
	if len(rounds) > 0 {
		return nil, bracket.ErrBracketExists
	}

	now := s.now().UTC()
	if phase := bracket.CurrentPhase(tournament, rounds, now); phase.Kind == bracket.PhaseRegistration {
		return nil, &bracket.PhaseError{Op: "bracket generation", Phase: phase}
	}

	songs, err := s.store.GetSongsTx(ctx, tx, tournamentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get songs: %w", err)
	}

	data, err := s.createRound(ctx, tx, tournament, 1, SeedSongs(songs, order, seed), now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("bracket generated", "tournament_id", tournamentID, "songs", len(songs), "matchups", len(data.Matchups), "order", order)
	return data, nil
}

// createRound persists round `number` built from songIDs inside the caller's transaction.
func (s *BracketGeneration) createRound(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament, number int, songIDs []uuid.UUID, now time.Time) (*RoundData, error) {
	round, matchups, err := bracket.NewRound(tournament.ID, number, songIDs, now)
	if err != nil {
		return nil, err
	}
	round.VotingDeadline = bracket.RoundDeadline(tournament, len(songIDs), now)

	if err := s.store.CreateRound(ctx, tx, round); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("round %d: %w", number, bracket.ErrBracketExists)
		}
		return nil, fmt.Errorf("failed to create round: %w", err)
	}
	if err := s.store.CreateMatchups(ctx, tx, matchups); err != nil {
		return nil, fmt.Errorf("failed to create matchups: %w", err)
	}

	return &RoundData{Round: round, Matchups: matchups}, nil
}
