package bracket

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type RoundStatus string

const (
	RoundOpen   RoundStatus = "open"
	RoundClosed RoundStatus = "closed"
)

type Round struct {
	ID           uuid.UUID   `db:"id"`
	TournamentID uuid.UUID   `db:"tournament_id"`
	Number       int         `db:"round_number"`
	Name         string      `db:"name"`
	Status       RoundStatus `db:"status"`
	// VotingDeadline is when the round is due to be closed by the scheduler.
	VotingDeadline time.Time  `db:"voting_deadline"`
	CreatedAt      time.Time  `db:"created_at"`
	ClosedAt       *time.Time `db:"closed_at"`
}

func (r *Round) IsOpen() bool {
	return r.Status == RoundOpen
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// RoundName labels a round by how many songs enter it.
func RoundName(songCount int) string {
	switch size := calcBracketSize(songCount); {
	case size <= 2:
		return "Finals"
	case size == 4:
		return "Semifinals"
	case size == 8:
		return "Quarterfinals"
	default:
		return fmt.Sprintf("Round of %d", size)
	}
}

func formatMinutes(minutes, seconds int) string {
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
