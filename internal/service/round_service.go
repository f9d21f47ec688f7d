package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RoundService struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	brackets *BracketGeneration
	now      func() time.Time
}

func NewRoundService(db *sqlx.DB, store *store.TournamentStore) *RoundService {
	return &RoundService{
		db:       db,
		store:    store,
		brackets: NewBracketService(db, store),
		now:      time.Now,
	}
}

// Progression is the result of closing a round: either the next round or a champion.
type Progression struct {
	Closed   *bracket.Round
	Winners  []uuid.UUID
	Next     *RoundData
	Champion *bracket.Song
}

func (p *Progression) TournamentComplete() bool {
	return p.Champion != nil
}

// CloseRound decides every matchup of an open round and advances the bracket. Nothing is written
// unless the whole round can be decided. Closing an already closed round fails with
// bracket.ErrAlreadyClosed and has no effect.
func (s *RoundService) CloseRound(ctx context.Context, roundID uuid.UUID) (*Progression, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	round, err := s.store.GetRoundTx(ctx, tx, roundID.String())
	if err != nil {
		return nil, notFound("round", err)
	}

	now := s.now().UTC()
	closed, err := s.store.CloseRoundTx(ctx, tx, round.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to close round: %w", err)
	}
	if !closed {
		return nil, fmt.Errorf("round %d: %w", round.Number, bracket.ErrAlreadyClosed)
	}
	round.Status = bracket.RoundClosed
	round.ClosedAt = &now

	tournament, err := s.store.GetTournamentTx(ctx, tx, round.TournamentID.String())
	if err != nil {
		return nil, notFound("tournament", err)
	}

	matchups, err := s.store.GetRoundMatchupsTx(ctx, tx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matchups: %w", err)
	}
	votes, err := s.store.GetRoundVotesTx(ctx, tx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	songs, err := s.store.GetSongsTx(ctx, tx, tournament.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get songs: %w", err)
	}
	songMap := make(map[uuid.UUID]bracket.Song, len(songs))
	for _, song := range songs {
		songMap[song.ID] = song
	}

	outcome, err := bracket.ResolveRound(matchups, votes, songMap)
	if err != nil {
		return nil, err
	}

	for _, m := range matchups {
		if m.IsResolved() {
			continue
		}
		if err := s.store.SetMatchupWinnerTx(ctx, tx, m.ID, outcome.ByMatchup[m.ID]); err != nil {
			return nil, fmt.Errorf("failed to set winner: %w", err)
		}
	}

	progression := &Progression{Closed: round, Winners: outcome.Winners}

	if len(outcome.Winners) == 1 {
		championID := outcome.Winners[0]
		if err := s.store.CompleteTournamentTx(ctx, tx, tournament.ID, championID, now); err != nil {
			return nil, fmt.Errorf("failed to complete tournament: %w", err)
		}
		champion := songMap[championID]
		progression.Champion = &champion
	} else {
		next, err := s.brackets.createRound(ctx, tx, tournament, round.Number+1, outcome.Winners, now)
		if err != nil {
			return nil, err
		}
		progression.Next = next
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if progression.TournamentComplete() {
		slog.Info("tournament complete", "tournament_id", tournament.ID, "champion_song_id", progression.Champion.ID)
	} else {
		slog.Info("round closed", "tournament_id", tournament.ID, "round", round.Number, "next_round", progression.Next.Round.Number, "winners", len(outcome.Winners))
	}
	return progression, nil
}

// CloseDueRounds closes every open round whose voting deadline has passed. Rounds that cannot be
// decided yet stay open and are reported in the returned error.
func (s *RoundService) CloseDueRounds(ctx context.Context) ([]*Progression, error) {
	rounds, err := s.store.ListOpenRounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open rounds: %w", err)
	}

	now := s.now().UTC()
	var progressions []*Progression
	var errs []error
	for _, round := range rounds {
		if now.Before(round.VotingDeadline) {
			continue
		}

		progression, err := s.CloseRound(ctx, round.ID)
		switch {
		case err == nil:
			progressions = append(progressions, progression)
		case errors.Is(err, bracket.ErrAlreadyClosed):
			slog.Info("round closed concurrently", "round_id", round.ID)
		default:
			slog.Warn("failed to close due round", "round_id", round.ID, "error", err)
			errs = append(errs, fmt.Errorf("round %s: %w", round.ID, err))
		}
	}
	return progressions, errors.Join(errs...)
}
