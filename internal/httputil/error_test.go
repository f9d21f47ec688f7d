package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/metadata"
	"github.com/AdamBeresnev/aux-analytics/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestServiceError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", fmt.Errorf("round %w", service.ErrNotFound), http.StatusNotFound},
		{"phase", &bracket.PhaseError{Op: "song submission", Phase: bracket.Phase{Kind: bracket.PhaseClosed}}, http.StatusConflict},
		{"already closed", fmt.Errorf("round 1: %w", bracket.ErrAlreadyClosed), http.StatusConflict},
		{"bracket exists", bracket.ErrBracketExists, http.StatusConflict},
		{"incomplete", &bracket.IncompleteRoundError{MatchupIDs: []uuid.UUID{uuid.New()}}, http.StatusUnprocessableEntity},
		{"empty pool", bracket.ErrEmptyPool, http.StatusUnprocessableEntity},
		{"invalid choice", bracket.ErrInvalidChoice, http.StatusBadRequest},
		{"limit", service.ErrSubmissionLimit, http.StatusBadRequest},
		{"lookup", fmt.Errorf("spotify lookup: %w", metadata.ErrLookupFailed), http.StatusBadRequest},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ServiceError(rec, "Failed", tc.err)
			assert.Equal(t, tc.expected, rec.Code)
		})
	}
}
