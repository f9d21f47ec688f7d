package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type VoteService struct {
	db    *sqlx.DB
	store *store.TournamentStore
	now   func() time.Time
}

func NewVoteService(db *sqlx.DB, store *store.TournamentStore) *VoteService {
	return &VoteService{db: db, store: store, now: time.Now}
}

// CastVote records voterID's choice in a matchup. Voting again replaces the earlier choice.
func (s *VoteService) CastVote(ctx context.Context, voterID uuid.UUID, matchupID uuid.UUID, chosenSongID uuid.UUID) (*bracket.Vote, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	matchup, err := s.store.GetMatchupTx(ctx, tx, matchupID.String())
	if err != nil {
		return nil, notFound("matchup", err)
	}

	round, err := s.store.GetRoundTx(ctx, tx, matchup.RoundID.String())
	if err != nil {
		return nil, notFound("round", err)
	}

	tournament, err := s.store.GetTournamentTx(ctx, tx, matchup.TournamentID.String())
	if err != nil {
		return nil, notFound("tournament", err)
	}

	rounds, err := s.store.GetRoundsTx(ctx, tx, tournament.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get rounds: %w", err)
	}

	now := s.now().UTC()
	if phase := bracket.CurrentPhase(tournament, rounds, now); !phase.AllowsVoteIn(round.Number) {
		return nil, &bracket.PhaseError{Op: fmt.Sprintf("voting in round %d", round.Number), Phase: phase}
	}

	if matchup.IsBye {
		return nil, fmt.Errorf("bye matchups take no votes: %w", bracket.ErrInvalidChoice)
	}
	if !matchup.Contains(chosenSongID) {
		return nil, fmt.Errorf("song %s: %w", chosenSongID, bracket.ErrInvalidChoice)
	}

	vote, err := s.store.UpsertVoteTx(ctx, tx, &bracket.Vote{
		ID:        uuid.New(),
		UserID:    voterID,
		MatchupID: matchup.ID,
		SongID:    chosenSongID,
		VotedAt:   now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("vote cast", "matchup_id", matchup.ID, "user_id", voterID, "changed", vote.IsVoteChanged)
	return vote, nil
}
