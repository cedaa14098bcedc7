package authstate

import (
	"context"
	"errors"
)

// ErrNoState is returned by [Storage.Load] when no snapshot has been
// persisted yet. The store treats it the same as a cleared state.
var ErrNoState = errors.New("no persisted auth state")

// Storage is the durable key-value persistence boundary of the store. A
// snapshot is one opaque blob; implementations never interpret it. Load
// returns [ErrNoState] when nothing was saved; Clear is idempotent.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, snapshot []byte) error
	Clear(ctx context.Context) error
}
