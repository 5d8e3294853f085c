package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/tutormatch/internal/domain/types"
	"github.com/okian/tutormatch/pkg/logger"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	Rank(ctx context.Context, id string, limit int) ([]types.Entry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps     RankDependencies
	maxLimit int
	logger   logger.Logger
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies, maxLimit int, l logger.Logger) *RankHandler {
	return &RankHandler{deps: deps, maxLimit: maxLimit, logger: l}
}

// HandleGetRank handles GET /rank/{id}?limit=N. Without limit the configured
// maximum applies.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	entries, err := h.deps.Rank(r.Context(), r.PathValue("id"), n)
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
