package bracket

import (
	"math/bits"
	"time"
)

// RoundsNeeded is how many rounds it takes to reduce songCount songs to a champion when
// pairing sequentially with byes.
func RoundsNeeded(songCount int) int {
	if songCount <= 2 {
		return 1
	}
	return bits.Len(uint(songCount - 1))
}

// RoundDeadline splits what is left of the voting window evenly across the remaining rounds.
// It only schedules closing; the phase gate follows round status.
func RoundDeadline(t *Tournament, songCount int, now time.Time) time.Time {
	start := t.VotingStart
	if now.After(start) {
		start = now
	}
	if !start.Before(t.VotingEnd) {
		return t.VotingEnd
	}
	slice := t.VotingEnd.Sub(start) / time.Duration(RoundsNeeded(songCount))
	return start.Add(slice).Truncate(time.Second)
}
