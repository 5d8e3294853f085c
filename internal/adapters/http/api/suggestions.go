package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/okian/tutormatch/internal/domain/matching"
	"github.com/okian/tutormatch/internal/domain/types"
	"github.com/okian/tutormatch/pkg/logger"
)

// SuggestionDependencies reads stored suggestions and checks skill selections.
type SuggestionDependencies interface {
	Suggestions(ctx context.Context, id string, f matching.Filter) ([]types.Suggestion, error)
	ValidateSkills(offered, wanted []string) matching.SelectionReport
}

// SuggestionsHandler handles suggestion and skill selection requests.
type SuggestionsHandler struct {
	deps   SuggestionDependencies
	logger logger.Logger
}

// NewSuggestionsHandler creates a new suggestions handler.
func NewSuggestionsHandler(deps SuggestionDependencies, l logger.Logger) *SuggestionsHandler {
	return &SuggestionsHandler{deps: deps, logger: l}
}

// HandleGetSuggestions handles GET /suggestions/{id}?min_score=&topic=.
// topic may repeat; a suggestion is kept when it shares any of them.
func (h *SuggestionsHandler) HandleGetSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_suggestions"
	q := r.URL.Query()
	var f matching.Filter
	if s := q.Get("min_score"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("invalid min_score %q", s)))
			return
		}
		f.MinScore = v
	}
	f.Topics = q["topic"]

	out, err := h.deps.Suggestions(r.Context(), r.PathValue("id"), f)
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type skillSelectionRequest struct {
	SkillsOffered []string `json:"skills_offered"`
	SkillsWanted  []string `json:"skills_wanted"`
}

// HandleValidateSkills handles POST /skills/validate. An invalid selection
// is still a 200; the report lists the problems.
func (h *SuggestionsHandler) HandleValidateSkills(w http.ResponseWriter, r *http.Request) {
	const op = "api.validate_skills"
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateBody(skillSelectionSchema, body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var req skillSelectionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ValidateSkills(req.SkillsOffered, req.SkillsWanted))
}
