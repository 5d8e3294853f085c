package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/tutormatch/internal/domain/types"
	"github.com/okian/tutormatch/pkg/logger"
)

// MatchDependencies scores one pair and ranks a pool.
type MatchDependencies interface {
	RankDependencies
	Match(ctx context.Context, aID, bID string) (types.MatchView, error)
}

// MatchHandler handles pair scoring requests.
type MatchHandler struct {
	deps   MatchDependencies
	logger logger.Logger
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies, l logger.Logger) *MatchHandler {
	return &MatchHandler{deps: deps, logger: l}
}

// HandleGetMatch handles GET /match?a=&b=.
func (h *MatchHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_match"
	q := r.URL.Query()
	a, b := q.Get("a"), q.Get("b")
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("both a and b are required")))
		return
	}
	view, err := h.deps.Match(r.Context(), a, b)
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
