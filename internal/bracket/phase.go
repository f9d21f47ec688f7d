package bracket

import (
	"fmt"
	"time"
)

type PhaseKind int

const (
	PhaseRegistration PhaseKind = iota
	PhaseVoting
	PhaseClosed
)

// Phase is a tournament's current window. Round is only set for PhaseVoting.
type Phase struct {
	Kind  PhaseKind
	Round int
}

func (p Phase) String() string {
	switch p.Kind {
	case PhaseRegistration:
		return "registration"
	case PhaseVoting:
		return fmt.Sprintf("voting (round %d)", p.Round)
	default:
		return "closed"
	}
}

func (p Phase) AllowsSubmission() bool {
	return p.Kind == PhaseRegistration
}

func (p Phase) AllowsVoteIn(roundNumber int) bool {
	return p.Kind == PhaseVoting && p.Round == roundNumber
}

// CurrentPhase derives the phase from the tournament's instants and the stored round statuses.
// Between the registration deadline and bracket generation nothing is open, which reads as closed.
func CurrentPhase(t *Tournament, rounds []Round, now time.Time) Phase {
	if now.Before(t.RegistrationDeadline) {
		return Phase{Kind: PhaseRegistration}
	}
	if t.IsComplete() {
		return Phase{Kind: PhaseClosed}
	}
	if active := ActiveRound(rounds); active != nil {
		return Phase{Kind: PhaseVoting, Round: active.Number}
	}
	return Phase{Kind: PhaseClosed}
}

// ActiveRound returns the open round with the highest number, or nil.
func ActiveRound(rounds []Round) *Round {
	var active *Round
	for i := range rounds {
		if rounds[i].IsOpen() && (active == nil || rounds[i].Number > active.Number) {
			active = &rounds[i]
		}
	}
	return active
}
