package api

import (
	"github.com/okian/tutormatch/pkg/logger"
)

// Option configures a Server.
type Option func(*Server)

// WithMaxRankLimit caps the limit accepted by GET /rank/{id}.
func WithMaxRankLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxRankLimit = n
		}
	}
}

// WithRateLimit enables a token bucket shared by all API routes. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateLimit = rps
		s.rateBurst = burst
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
