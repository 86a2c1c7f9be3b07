// Package handlers contains HTTP handlers for the judge API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tidemark/challenge-judge/internal/contracts"
	"github.com/tidemark/challenge-judge/internal/deadline"
	"github.com/tidemark/challenge-judge/internal/results"
	"github.com/tidemark/challenge-judge/pkg/logger"
	"github.com/tidemark/challenge-judge/pkg/redis"
)

// leaderboardTTL keeps cached leaderboards fresh across re-judging.
const leaderboardTTL = time.Minute

// LeaderboardHandler serves stored judging results.
type LeaderboardHandler struct {
	repo   contracts.ResultRepository
	cache  *redis.Cache
	logger *logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler. cache may be
// nil when Redis is disabled.
func NewLeaderboardHandler(repo contracts.ResultRepository, cache *redis.Cache, log *logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// GetLatest handles GET /api/leaderboard/latest
func (h *LeaderboardHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var lb contracts.Leaderboard
	if h.cached(ctx, "latest", &lb) {
		h.writeJSON(w, http.StatusOK, &lb)
		return
	}

	got, err := h.repo.LatestLeaderboard(ctx)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.store(ctx, "latest", got)
	h.writeJSON(w, http.StatusOK, got)
}

// GetByDeadline handles GET /api/leaderboard?deadline=YYYY-MM-DD_HH:MM
func (h *LeaderboardHandler) GetByDeadline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	spec := r.URL.Query().Get("deadline")
	if spec == "" {
		h.writeError(w, http.StatusBadRequest, "deadline query parameter is required")
		return
	}

	dl, err := time.ParseInLocation(deadline.Layout, spec, time.UTC)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "deadline must use format "+deadline.Layout)
		return
	}

	var lb contracts.Leaderboard
	if h.cached(ctx, spec, &lb) {
		h.writeJSON(w, http.StatusOK, &lb)
		return
	}

	got, err := h.repo.LeaderboardByDeadline(ctx, dl)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.store(ctx, spec, got)
	h.writeJSON(w, http.StatusOK, got)
}

func (h *LeaderboardHandler) cached(ctx context.Context, key string, dest *contracts.Leaderboard) bool {
	if h.cache == nil {
		return false
	}
	hit, err := h.cache.Get(ctx, "leaderboard:"+key, dest)
	if err != nil {
		h.logger.WithError(err).Warn("Leaderboard cache read failed")
		return false
	}
	return hit
}

func (h *LeaderboardHandler) store(ctx context.Context, key string, lb *contracts.Leaderboard) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, "leaderboard:"+key, lb, leaderboardTTL); err != nil {
		h.logger.WithError(err).Warn("Leaderboard cache write failed")
	}
}

func (h *LeaderboardHandler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, results.ErrNoRuns) {
		h.writeError(w, http.StatusNotFound, "no judging runs stored")
		return
	}
	h.logger.WithError(err).Error("Failed to load leaderboard")
	h.writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
}

func (h *LeaderboardHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *LeaderboardHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
