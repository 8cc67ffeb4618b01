package client

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned to a load that was overtaken by a newer one.
var ErrStale = errors.New("client: response superseded by a newer request")

// Loader holds the last accepted result of a fetch. Every Load takes a new generation; a
// response is only stored when no later Load has started since, so slow responses can never
// overwrite newer data.
type Loader[T any] struct {
	mu     sync.Mutex
	gen    uint64
	value  T
	err    error
	loaded bool
}

func (l *Loader[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	value, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		var zero T
		return zero, ErrStale
	}
	l.value, l.err, l.loaded = value, err, true
	return value, err
}

// Value returns the last accepted result.
func (l *Loader[T]) Value() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.err
}

// Loaded reports whether any load has been accepted yet.
func (l *Loader[T]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}
