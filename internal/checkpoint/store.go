package checkpoint

import (
	"context"
	"errors"

	"loom/internal/session"
)

// ErrNotFound is returned by Load when no snapshot exists for a session id.
var ErrNotFound = errors.New("checkpoint: session not found")

// Store is the persistence contract the workflow engine checkpoints through.
type Store interface {
	// Save overwrites the snapshot for state.SessionID.
	Save(ctx context.Context, state *session.State) error
	// Load returns the latest snapshot for the session, or ErrNotFound.
	Load(ctx context.Context, sessionID string) (*session.State, error)
	// List returns the latest snapshot of every known session, newest first.
	List(ctx context.Context) ([]*session.State, error)
	// Close releases any underlying resources.
	Close() error
}
