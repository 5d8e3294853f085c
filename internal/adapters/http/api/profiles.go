package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/tutormatch/internal/domain/model"
	"github.com/okian/tutormatch/internal/domain/types"
	"github.com/okian/tutormatch/pkg/logger"
)

const (
	maxBodyBytes      = 1 << 20
	idempotencyHeader = "Idempotency-Key"
)

// ProfileDependencies defines the profile write and read operations.
type ProfileDependencies interface {
	UpsertProfile(ctx context.Context, p model.Profile, requestID string) (types.RecomputeStatus, error)
	SubmitRecompute(ctx context.Context, profileID, requestID string) (types.RecomputeStatus, error)
	Profile(ctx context.Context, id string) (model.Profile, error)
}

// ProfileHandler handles profile requests.
type ProfileHandler struct {
	deps   ProfileDependencies
	logger logger.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies, l logger.Logger) *ProfileHandler {
	return &ProfileHandler{deps: deps, logger: l}
}

// HandlePutProfile handles POST /profiles. The body is validated against the
// profile schema, stored, and a suggestion rebuild is queued.
func (h *ProfileHandler) HandlePutProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_profile"
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateBody(profileSchema, body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var p model.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	status, err := h.deps.UpsertProfile(r.Context(), p, r.Header.Get(idempotencyHeader))
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, status)
}

// HandleGetProfile handles GET /profiles/{id}.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	p, err := h.deps.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleRecompute handles POST /profiles/{id}/recompute.
func (h *ProfileHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.recompute"
	id := r.PathValue("id")
	if _, err := h.deps.Profile(r.Context(), id); err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	status, err := h.deps.SubmitRecompute(r.Context(), id, r.Header.Get(idempotencyHeader))
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, status)
}
