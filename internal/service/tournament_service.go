package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Codes skip 0, O, I and 1, which are easy to confuse when read aloud.
const (
	codeAlphabet    = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	codeLength      = 4
	maxCodeAttempts = 100
	maxNameLength   = 200
)

type TournamentService struct {
	db    *sqlx.DB
	store *store.TournamentStore
	now   func() time.Time
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore) *TournamentService {
	return &TournamentService{db: db, store: store, now: time.Now}
}

type TournamentInput struct {
	Name                  string
	Description           string
	RegistrationDeadline  time.Time
	VotingStart           time.Time
	VotingEnd             time.Time
	MaxSubmissionsPerUser int
}

type TournamentData struct {
	Tournament   *bracket.Tournament
	Phase        bracket.Phase
	Songs        []bracket.Song
	SongMap      map[uuid.UUID]bracket.Song
	Rounds       []bracket.Round
	Matchups     []bracket.Matchup
	Tallies      map[uuid.UUID]bracket.Tally
	ActiveRound  *bracket.Round
	Champion     *bracket.Song
	Participants []bracket.Participant
}

func (s *TournamentService) GetTournamentData(ctx context.Context, id string) (*TournamentData, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, notFound("tournament", err)
	}

	songs, err := s.store.GetSongs(ctx, id)
	if err != nil {
		return nil, err
	}

	rounds, err := s.store.GetRounds(ctx, id)
	if err != nil {
		return nil, err
	}

	matchups, err := s.store.GetMatchups(ctx, id)
	if err != nil {
		return nil, err
	}

	votes, err := s.store.GetVotes(ctx, id)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.GetParticipants(ctx, id)
	if err != nil {
		return nil, err
	}

	songMap := make(map[uuid.UUID]bracket.Song, len(songs))
	for _, song := range songs {
		songMap[song.ID] = song
	}

	data := &TournamentData{
		Participants: participants,
		Tournament:   tournament,
		Phase:        bracket.CurrentPhase(tournament, rounds, s.now().UTC()),
		Songs:        songs,
		SongMap:      songMap,
		Rounds:       rounds,
		Matchups:     matchups,
		Tallies:      bracket.CountVotes(votes),
		ActiveRound:  bracket.ActiveRound(rounds),
	}
	if tournament.ChampionSongID != nil {
		if champion, ok := songMap[*tournament.ChampionSongID]; ok {
			data.Champion = &champion
		}
	}
	return data, nil
}

func (s *TournamentService) GetTournamentByCode(ctx context.Context, code string) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournamentByCode(ctx, strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(code), "#")))
	if err != nil {
		return nil, notFound("tournament", err)
	}
	return tournament, nil
}

// JoinTournament looks a tournament up by its join code and registers userID as a participant.
// Joining again is a no-op.
func (s *TournamentService) JoinTournament(ctx context.Context, code string, userID uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := s.GetTournamentByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.RegisterParticipant(ctx, tx, tournament.ID, userID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("participant joined", "tournament_id", tournament.ID, "user_id", userID)
	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

func (s *TournamentService) GetTournamentsForUser(ctx context.Context, userID uuid.UUID) ([]bracket.Tournament, error) {
	return s.store.GetTournamentsByUserID(ctx, userID)
}

func (s *TournamentService) CreateTournament(ctx context.Context, ownerID uuid.UUID, input TournamentInput) (*bracket.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, fmt.Errorf("tournament name must be 1-%d characters", maxNameLength)
	}
	if err := bracket.ValidateSchedule(input.RegistrationDeadline, input.VotingStart, input.VotingEnd); err != nil {
		return nil, err
	}

	maxSubmissions := input.MaxSubmissionsPerUser
	if maxSubmissions <= 0 {
		maxSubmissions = bracket.DefaultMaxSubmissionsPerUser
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	code, err := s.uniqueCode(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	tournament := &bracket.Tournament{
		ID:                    uuid.New(),
		Code:                  code,
		OwnerID:               ownerID,
		Name:                  name,
		Description:           strings.TrimSpace(input.Description),
		Year:                  now.Year(),
		RegistrationDeadline:  input.RegistrationDeadline.UTC(),
		VotingStart:           input.VotingStart.UTC(),
		VotingEnd:             input.VotingEnd.UTC(),
		MaxSubmissionsPerUser: maxSubmissions,
		CreatedAt:             now,
	}

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("tournament created", "tournament_id", tournament.ID, "code", tournament.Code)
	return tournament, nil
}

func (s *TournamentService) uniqueCode(ctx context.Context, tx *sqlx.Tx) (string, error) {
	for range maxCodeAttempts {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		exists, err := s.store.CodeExistsTx(ctx, tx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check tournament code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("unable to generate unique tournament code")
}

func randomCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(codeAlphabet)))
	for range codeLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
