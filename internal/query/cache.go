// Package query is the client-side read cache shared by every view. It is
// built once at startup and closed at shutdown.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key names one logical resource in the cache.
type Key string

// KeyFoodsList is the food collection as returned by the list endpoint.
const KeyFoodsList Key = "foods-list"

// Fetcher loads the value cached under a key.
type Fetcher func(ctx context.Context) (any, error)

// Status is the lifecycle state of a cache entry.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Snapshot is a point-in-time copy of an entry handed to subscribers.
type Snapshot struct {
	Key       Key
	Status    Status
	Data      any
	Err       error
	Stale     bool
	Fetching  bool
	UpdatedAt time.Time
}

type entry struct {
	data      any
	err       error
	hasResult bool
	stale     bool
	inflight  int
	gen       uint64
	updatedAt time.Time
	fetcher   Fetcher
	subs      map[int]func(Snapshot)
	nextSub   int
}

// Cache de-duplicates concurrent reads per key, serves stale data while a
// background refresh runs, and refetches subscribed keys on invalidation.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group
	logger  *zap.Logger
	now     func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
}

// New creates an empty cache.
func New(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		entries: make(map[Key]*entry),
		logger:  logger,
		now:     time.Now,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Get returns the value under key, calling fetch when nothing usable is
// cached. A stale value is returned immediately and refreshed in the
// background.
func (c *Cache) Get(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if fetch != nil {
		e.fetcher = fetch
	}

	if e.hasResult && e.err == nil {
		data, stale := e.data, e.stale
		c.mu.Unlock()
		if stale {
			c.refreshAsync(key)
		}
		return data, nil
	}
	c.mu.Unlock()

	return c.fetch(ctx, key)
}

// Invalidate marks key stale. When a view is subscribed to the key it is
// refetched once in the background and subscribers receive the result.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	e.stale = true
	e.gen++
	refetch := len(e.subs) > 0 && e.fetcher != nil
	c.mu.Unlock()

	// A fetch already running may predate the mutation; the next one must
	// not join it.
	c.group.Forget(string(key))

	c.logger.Debug("query invalidated", zap.String("key", string(key)), zap.Bool("refetch", refetch))
	if refetch {
		c.refreshAsync(key)
	}
}

// Subscribe registers fn for every state change of key. The returned func
// removes the subscription.
func (c *Cache) Subscribe(key Key, fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(e.subs, id)
	}
}

// Snapshot returns the current state of key.
func (c *Cache) Snapshot(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{Key: key, Status: StatusIdle}
	}
	return snapshotLocked(key, e)
}

// Wait blocks until every background refresh started so far has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close stops new background refreshes and waits for running ones.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	c.cancel()
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{subs: make(map[int]func(Snapshot))}
		c.entries[key] = e
	}
	return e
}

// fetch de-duplicates concurrent fetches of key until an Invalidate starts a
// new generation. The shared call is
// detached from the caller's cancellation so a waiter giving up never fails
// the others; the waiter itself still returns on ctx.Done.
func (c *Cache) fetch(ctx context.Context, key Key) (any, error) {
	ch := c.group.DoChan(string(key), func() (any, error) {
		c.mu.Lock()
		e := c.entryLocked(key)
		if e.hasResult && e.err == nil && !e.stale {
			// A fetch finished between the caller's lookup and this call.
			data := e.data
			c.mu.Unlock()
			return data, nil
		}
		fetcher := e.fetcher
		gen := e.gen
		e.inflight++
		c.mu.Unlock()
		c.notify(key)

		if fetcher == nil {
			err := fmt.Errorf("no fetcher registered for %q", key)
			c.store(key, gen, nil, err)
			return nil, err
		}

		data, err := fetcher(context.WithoutCancel(ctx))
		c.store(key, gen, data, err)
		return data, err
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) refreshAsync(key Key) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if _, err := c.fetch(c.baseCtx, key); err != nil {
			c.logger.Debug("background refresh failed", zap.String("key", string(key)), zap.Error(err))
		}
	}()
}

// store records a fetch result started at generation gen. A result that an
// Invalidate overtook never replaces an existing one and stays stale.
func (c *Cache) store(key Key, gen uint64, data any, err error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.inflight--
	if gen != e.gen && e.hasResult {
		c.mu.Unlock()
		c.notify(key)
		return
	}
	if err == nil {
		e.data = data
	}
	e.err = err
	e.hasResult = true
	e.stale = gen != e.gen
	e.updatedAt = c.now()
	c.mu.Unlock()

	c.notify(key)
}

func (c *Cache) notify(key Key) {
	c.mu.Lock()
	e := c.entries[key]
	snap := snapshotLocked(key, e)
	subs := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func snapshotLocked(key Key, e *entry) Snapshot {
	snap := Snapshot{
		Key:       key,
		Data:      e.data,
		Err:       e.err,
		Stale:     e.stale,
		Fetching:  e.inflight > 0,
		UpdatedAt: e.updatedAt,
	}

	switch {
	case e.hasResult && e.err != nil:
		snap.Status = StatusError
	case e.hasResult:
		snap.Status = StatusSuccess
	case e.inflight > 0:
		snap.Status = StatusLoading
	default:
		snap.Status = StatusIdle
	}
	return snap
}

// Get is the typed form of Cache.Get.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	value, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("query %q holds %T, not %T", key, value, zero)
	}
	return typed, nil
}
