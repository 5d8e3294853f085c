// Package repository holds the storage collaborators of the match engine:
// profiles to score against and previously computed suggestions.
package repository

import (
	"context"

	"github.com/okian/tutormatch/internal/domain/model"
)

// ProfileStore provides read/write access to profiles.
type ProfileStore interface {
	// Upsert inserts or replaces the profile with the same ID.
	Upsert(ctx context.Context, p model.Profile) error

	// Get returns the profile with id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Profile, error)

	// DiscoverablePool returns every public, non-banned profile except
	// excludeID, ordered by ID so ranking ties resolve the same way on
	// every call.
	DiscoverablePool(ctx context.Context, excludeID string) ([]model.Profile, error)

	// Count returns the number of stored profiles.
	Count(ctx context.Context) (int, error)
}

// SuggestionStore persists computed suggestions per owner.
type SuggestionStore interface {
	// Save replaces every suggestion stored for ownerID.
	Save(ctx context.Context, ownerID string, suggestions []model.MatchSuggestion) error

	// List returns the suggestions stored for ownerID in their saved order.
	// An owner with nothing stored yields an empty slice.
	List(ctx context.Context, ownerID string) ([]model.MatchSuggestion, error)
}

// Store is a backend that holds both profiles and suggestions.
type Store interface {
	ProfileStore
	SuggestionStore
}
