package bracket

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testTournament() *Tournament {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Tournament{
		ID:                   uuid.New(),
		RegistrationDeadline: base,
		VotingStart:          base.Add(time.Hour),
		VotingEnd:            base.Add(7 * 24 * time.Hour),
	}
}

func TestCurrentPhase(t *testing.T) {
	tournament := testTournament()
	deadline := tournament.RegistrationDeadline

	closedRound := Round{Number: 1, Status: RoundClosed}
	openRound := Round{Number: 2, Status: RoundOpen}

	testCases := []struct {
		name     string
		now      time.Time
		rounds   []Round
		complete bool
		expected Phase
	}{
		{name: "before deadline", now: deadline.Add(-time.Second), expected: Phase{Kind: PhaseRegistration}},
		{name: "at deadline without bracket", now: deadline, expected: Phase{Kind: PhaseClosed}},
		{name: "first round open", now: deadline.Add(2 * time.Hour), rounds: []Round{{Number: 1, Status: RoundOpen}}, expected: Phase{Kind: PhaseVoting, Round: 1}},
		{name: "second round open", now: deadline.Add(3 * time.Hour), rounds: []Round{closedRound, openRound}, expected: Phase{Kind: PhaseVoting, Round: 2}},
		{name: "all rounds closed", now: deadline.Add(3 * time.Hour), rounds: []Round{closedRound}, expected: Phase{Kind: PhaseClosed}},
		{name: "past voting end", now: tournament.VotingEnd.Add(time.Hour), rounds: []Round{closedRound}, expected: Phase{Kind: PhaseClosed}},
		{name: "complete", now: deadline.Add(time.Hour), rounds: []Round{closedRound}, complete: true, expected: Phase{Kind: PhaseClosed}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := *tournament
			if tc.complete {
				champion := uuid.New()
				tr.ChampionSongID = &champion
			}
			assert.Equal(t, tc.expected, CurrentPhase(&tr, tc.rounds, tc.now))
		})
	}
}

func TestPhasePermissions(t *testing.T) {
	assert.True(t, Phase{Kind: PhaseRegistration}.AllowsSubmission())
	assert.False(t, Phase{Kind: PhaseVoting, Round: 1}.AllowsSubmission())

	assert.True(t, Phase{Kind: PhaseVoting, Round: 2}.AllowsVoteIn(2))
	assert.False(t, Phase{Kind: PhaseVoting, Round: 2}.AllowsVoteIn(1))
	assert.False(t, Phase{Kind: PhaseClosed}.AllowsVoteIn(1))
}

func TestPhaseError(t *testing.T) {
	err := error(&PhaseError{Op: "voting", Phase: Phase{Kind: PhaseRegistration}})
	assert.Equal(t, "voting is not allowed during registration", err.Error())

	var phaseErr *PhaseError
	assert.True(t, errors.As(err, &phaseErr))
}

func TestValidateSchedule(t *testing.T) {
	base := time.Now()

	assert.NoError(t, ValidateSchedule(base, base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.ErrorIs(t, ValidateSchedule(base, base, base.Add(time.Hour)), ErrInvalidSchedule)
	assert.ErrorIs(t, ValidateSchedule(base, base.Add(time.Hour), base.Add(time.Hour)), ErrInvalidSchedule)
	assert.ErrorIs(t, ValidateSchedule(base.Add(time.Hour), base, base.Add(2*time.Hour)), ErrInvalidSchedule)
}
