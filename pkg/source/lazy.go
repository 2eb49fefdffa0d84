package source

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// loadTimeout bounds a shared load, which no longer follows any single
// caller's cancellation.
const loadTimeout = time.Minute

// Lazy holds a value computed on first use and kept for the life of the
// process. Concurrent first callers share a single load. A failed load is
// not cached; the next call tries again. The zero value is ready to use.
type Lazy[T any] struct {
	mu    sync.RWMutex
	done  bool
	val   T
	group singleflight.Group
}

// Get returns the cached value or runs load. load gets a context detached
// from the caller's cancellation, since concurrent callers share its result.
func (l *Lazy[T]) Get(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	if v, ok := l.cached(); ok {
		return v, nil
	}

	v, err, _ := l.group.Do("load", func() (any, error) {
		if v, ok := l.cached(); ok {
			return v, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		val, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.val, l.done = val, true
		l.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Loaded reports whether a value has been cached.
func (l *Lazy[T]) Loaded() bool {
	_, ok := l.cached()
	return ok
}

func (l *Lazy[T]) cached() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.val, l.done
}
