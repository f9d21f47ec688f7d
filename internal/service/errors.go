package service

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSubmissionLimit = errors.New("submission limit reached for this tournament")
	ErrDuplicateSong   = errors.New("song has already been submitted")
	ErrInvalidSong     = errors.New("invalid song details")
)

// notFound tags a missing row so callers can match either ErrNotFound or sql.ErrNoRows.
func notFound(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %w: %w", what, ErrNotFound, err)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
