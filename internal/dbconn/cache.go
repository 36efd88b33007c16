// Package dbconn memoizes the process-wide database handle.
//
// A Cache dials lazily on the first Acquire and keeps the handle for the life
// of the process. Concurrent callers that arrive while a dial is pending join
// that dial instead of starting another one. A failed dial is never cached, so
// the next Acquire retries.
package dbconn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"devevent/internal/domain"
)

// DialFunc establishes a new handle for uri.
type DialFunc[T any] func(ctx context.Context, uri string) (T, error)

// CloseFunc releases a handle obtained from a DialFunc.
type CloseFunc[T any] func(ctx context.Context, conn T) error

// Connector hands out a ready database handle.
type Connector[T any] interface {
	Acquire(ctx context.Context) (T, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc[T any] func(ctx context.Context) (T, error)

func (f ConnectorFunc[T]) Acquire(ctx context.Context) (T, error) { return f(ctx) }

// Static returns a Connector that always yields conn.
func Static[T any](conn T) Connector[T] {
	return ConnectorFunc[T](func(context.Context) (T, error) { return conn, nil })
}

// Cache is a lazily dialed, memoized database handle.
type Cache[T any] struct {
	uri     string
	dial    DialFunc[T]
	close   CloseFunc[T]
	timeout time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	conn      T
	connected bool
	// gen is bumped by Close so a dial started before it cannot store its handle.
	gen uint64
}

// errClosedDuringDial is returned to callers of a dial that Close overtook.
var errClosedDuringDial = errors.New("connection cache closed while dialing")

// New returns a Cache for uri. Nothing is dialed until the first Acquire.
// timeout bounds a single dial attempt; zero means no bound.
func New[T any](uri string, dial DialFunc[T], closeFn CloseFunc[T], timeout time.Duration) *Cache[T] {
	return &Cache[T]{
		uri:     uri,
		dial:    dial,
		close:   closeFn,
		timeout: timeout,
	}
}

// Acquire returns the cached handle, joins a pending dial, or starts a new one.
//
// The dial runs detached from ctx so one impatient caller cannot fail the
// attempt shared with others; ctx only bounds how long this caller waits.
func (c *Cache[T]) Acquire(ctx context.Context) (T, error) {
	var zero T
	if c.uri == "" {
		return zero, fmt.Errorf("%w: DATABASE_URL is not set", domain.ErrConfiguration)
	}
	if conn, ok := c.cached(); ok {
		return conn, nil
	}

	ch := c.group.DoChan("dial", func() (any, error) {
		c.mu.RLock()
		if c.connected {
			conn := c.conn
			c.mu.RUnlock()
			return conn, nil
		}
		gen := c.gen
		c.mu.RUnlock()

		dialCtx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(dialCtx, c.timeout)
			defer cancel()
		}
		conn, err := c.dial(dialCtx, c.uri)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			if c.close != nil {
				_ = c.close(dialCtx, conn)
			}
			return nil, errClosedDuringDial
		}
		c.conn = conn
		c.connected = true
		c.mu.Unlock()
		return conn, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, domain.ErrConnection) {
				return zero, res.Err
			}
			return zero, fmt.Errorf("%w: %w", domain.ErrConnection, res.Err)
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close releases the cached handle, if any. A dial still in flight is
// abandoned: its handle is closed on arrival and never cached. The cache may
// be reused afterwards.
func (c *Cache[T]) Close(ctx context.Context) error {
	c.mu.Lock()
	conn, ok := c.conn, c.connected
	var zero T
	c.conn, c.connected = zero, false
	c.gen++
	c.mu.Unlock()

	if !ok || c.close == nil {
		return nil
	}
	return c.close(ctx, conn)
}

func (c *Cache[T]) cached() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn, c.connected
}
