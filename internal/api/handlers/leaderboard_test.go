package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/internal/results"
	"github.com/tidemark/challenge-judge/pkg/logger"
)

type stubRepo struct {
	lb  *contracts.Leaderboard
	err error

	gotDeadline time.Time
}

func (s *stubRepo) SaveRun(context.Context, *contracts.Leaderboard) error { return nil }

func (s *stubRepo) LatestLeaderboard(context.Context) (*contracts.Leaderboard, error) {
	return s.lb, s.err
}

func (s *stubRepo) LeaderboardByDeadline(_ context.Context, deadline time.Time) (*contracts.Leaderboard, error) {
	s.gotDeadline = deadline
	return s.lb, s.err
}

func sampleLeaderboard() *contracts.Leaderboard {
	return &contracts.Leaderboard{
		RunID:    "run-1",
		Deadline: time.Date(2023, 5, 3, 23, 59, 0, 0, time.UTC),
		JudgedAt: time.Date(2023, 5, 4, 1, 30, 0, 0, time.UTC),
		Entries: []contracts.RankedEntry{
			{Rank: 1, Contestant: "0xalice", AssetID: "0xnft1", Score: 0.02},
		},
	}
}

func TestGetLatest(t *testing.T) {
	h := NewLeaderboardHandler(&stubRepo{lb: sampleLeaderboard()}, nil, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetLatest(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.Leaderboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "0xalice", got.Entries[0].Contestant)
}

func TestGetLatestNoRuns(t *testing.T) {
	h := NewLeaderboardHandler(&stubRepo{err: results.ErrNoRuns}, nil, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetLatest(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard/latest", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestRepoFailure(t *testing.T) {
	h := NewLeaderboardHandler(&stubRepo{err: errors.New("connection refused")}, nil, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetLatest(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard/latest", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestGetByDeadline(t *testing.T) {
	repo := &stubRepo{lb: sampleLeaderboard()}
	h := NewLeaderboardHandler(repo, nil, logger.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?deadline=2023-05-03_23:59", nil)
	h.GetByDeadline(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2023, 5, 3, 23, 59, 0, 0, time.UTC), repo.gotDeadline)
}

func TestGetByDeadlineValidation(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing param", "/api/leaderboard"},
		{"wrong format", "/api/leaderboard?deadline=2023-05-03T23:59"},
		{"not a date", "/api/leaderboard?deadline=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLeaderboardHandler(&stubRepo{lb: sampleLeaderboard()}, nil, logger.Nop())

			rec := httptest.NewRecorder()
			h.GetByDeadline(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
