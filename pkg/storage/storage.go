package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/pkg/arena"
	"github.com/jwebster45206/arena-engine/pkg/assets"
	"github.com/jwebster45206/arena-engine/pkg/comp"
)

// ErrNotFound is returned when a session or data file does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines a unified interface for all storage operations
// This interface combines session persistence (Redis) with static data loading (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations (Redis-backed)
	SaveSession(ctx context.Context, s *arena.Session) error
	LoadSession(ctx context.Context, id uuid.UUID) (*arena.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Composition operations (filesystem-backed)
	// ListComps maps composition name to file name.
	ListComps(ctx context.Context) (map[string]string, error)
	GetComp(ctx context.Context, filename string) (*comp.Comp, error)

	// GetAssets loads the static champion and item data.
	GetAssets(ctx context.Context) (*assets.Assets, error)
}
