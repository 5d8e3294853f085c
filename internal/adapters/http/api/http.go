// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/okian/tutormatch/internal/adapters/repository"
	service "github.com/okian/tutormatch/internal/app"
	"github.com/okian/tutormatch/internal/domain/matching"
	"github.com/okian/tutormatch/pkg/logger"
)

const defaultMaxRankLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ProfileDependencies
	MatchDependencies
	SuggestionDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	profileHandler     *ProfileHandler
	matchHandler       *MatchHandler
	rankHandler        *RankHandler
	suggestionsHandler *SuggestionsHandler

	maxRankLimit int
	rateLimit    float64
	rateBurst    int
	limiter      *rate.Limiter
	logger       logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{maxRankLimit: defaultMaxRankLimit}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	if s.rateLimit > 0 {
		burst := s.rateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(s.rateLimit), burst)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.profileHandler = NewProfileHandler(deps, s.logger)
	s.matchHandler = NewMatchHandler(deps, s.logger)
	s.rankHandler = NewRankHandler(deps, s.maxRankLimit, s.logger)
	s.suggestionsHandler = NewSuggestionsHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(RateLimitMiddleware(h, s.limiter), endpoint))
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	handle("GET /stats", "stats", s.statsHandler.HandleStats)
	handle("POST /profiles", "profiles", s.profileHandler.HandlePutProfile)
	handle("GET /profiles/{id}", "profile", s.profileHandler.HandleGetProfile)
	handle("POST /profiles/{id}/recompute", "recompute", s.profileHandler.HandleRecompute)
	handle("GET /match", "match", s.matchHandler.HandleGetMatch)
	handle("GET /rank/{id}", "rank", s.rankHandler.HandleGetRank)
	handle("GET /suggestions/{id}", "suggestions", s.suggestionsHandler.HandleGetSuggestions)
	handle("POST /skills/validate", "skills_validate", s.suggestionsHandler.HandleValidateSkills)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes err with the status selected by its kind. Server-side
// failures are logged.
func fail(ctx context.Context, w http.ResponseWriter, l logger.Logger, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.Error(err), logger.Int("status", status))
	}
	writeError(w, status, code, err)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// classify maps domain and storage sentinels to API kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, matching.ErrInvalidArgument),
		errors.Is(err, matching.ErrUnknownPolicy),
		errors.Is(err, repository.ErrInvalidProfile):
		return ErrBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, service.ErrBackpressure):
		return ErrBackpressure
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return ErrUnavailable
	default:
		return ErrInternal
	}
}
