package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when the lock could not be taken before the
// context expired.
var ErrNotAcquired = errors.New("lock not acquired")

// Release frees a held lock. Calling it more than once is a no-op.
type Release func()

// Locker grants exclusive ownership of a named key.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}
