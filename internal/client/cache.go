package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/infrastructure/logger"
)

// Key identifies a cached list query
type Key struct {
	Search string
	Day    string
}

// normalized maps an empty day to "all" so both spellings share one entry
func (k Key) normalized() Key {
	if k.Day == "" {
		k.Day = entities.FilterAll
	}
	return k
}

func (k Key) String() string {
	k = k.normalized()
	return "search=" + k.Search + "\x00day=" + k.Day
}

// Fetcher loads the task list for a key
type Fetcher interface {
	ListTasks(ctx context.Context, key Key) ([]entities.Task, error)
}

// Snapshot is the last known state of a key. Tasks survive a failed
// refresh; Err reports the most recent failure and clears on success.
type Snapshot struct {
	Key       Key
	Tasks     []entities.Task
	Err       error
	FetchedAt time.Time
	Loaded    bool
}

// Loading reports whether no fetch for the key has finished yet
func (s Snapshot) Loading() bool {
	return !s.Loaded && s.Err == nil
}

type entry struct {
	snapshot Snapshot
	stale    bool
}

// Cache keeps one snapshot per key and coalesces concurrent fetches of the
// same key into a single request. Results of fetches that started before
// the latest Invalidate are discarded.
type Cache struct {
	fetcher Fetcher
	timeout time.Duration
	logger  *logger.Logger
	now     func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	entries map[Key]*entry
	gen     uint64
}

// NewCache creates a cache in front of fetcher. A non-positive timeout
// leaves fetches bounded only by the caller's context.
func NewCache(fetcher Fetcher, timeout time.Duration, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.NewNop()
	}
	return &Cache{
		fetcher: fetcher,
		timeout: timeout,
		logger:  log.WithComponent("task_cache"),
		now:     time.Now,
		entries: make(map[Key]*entry),
	}
}

// Peek returns the cached snapshot without fetching
func (c *Cache) Peek(key Key) (Snapshot, bool) {
	key = key.normalized()

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{Key: key}, false
	}
	return e.snapshot, true
}

// Get returns a fresh cached snapshot, fetching only when the key has never
// loaded or was invalidated.
func (c *Cache) Get(ctx context.Context, key Key) Snapshot {
	key = key.normalized()

	c.mu.RLock()
	e, ok := c.entries[key]
	fresh := ok && e.snapshot.Loaded && !e.stale
	c.mu.RUnlock()

	if fresh {
		return e.snapshot
	}
	return c.Revalidate(ctx, key)
}

// Revalidate fetches key now. Callers arriving while a fetch for the same
// key is in flight share its result.
func (c *Cache) Revalidate(ctx context.Context, key Key) Snapshot {
	key = key.normalized()

	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		// The shared fetch must outlive any single waiter.
		fetchCtx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, c.timeout)
			defer cancel()
		}

		tasks, err := c.fetcher.ListTasks(fetchCtx, key)
		c.record(key, gen, tasks, err)
		return nil, err
	})

	select {
	case <-ctx.Done():
		snap, _ := c.Peek(key)
		if snap.Err == nil {
			snap.Err = ctx.Err()
		}
		return snap
	case res := <-ch:
		if res.Shared {
			c.logger.Debugw("Joined in-flight fetch", "key", key.String())
		}
		snap, _ := c.Peek(key)
		return snap
	}
}

// Invalidate marks every key stale and refetches key. Fetches already in
// flight are not joined; their results are dropped when they land.
func (c *Cache) Invalidate(ctx context.Context, key Key) Snapshot {
	key = key.normalized()

	c.mu.Lock()
	c.gen++
	for k, e := range c.entries {
		e.stale = true
		c.group.Forget(k.String())
	}
	c.mu.Unlock()
	c.group.Forget(key.String())

	return c.Revalidate(ctx, key)
}

func (c *Cache) record(key Key, gen uint64, tasks []entities.Task, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen < c.gen {
		c.logger.Debugw("Dropped result of fetch started before invalidation", "key", key.String())
		return
	}

	e, ok := c.entries[key]
	if !ok {
		e = &entry{snapshot: Snapshot{Key: key}}
		c.entries[key] = e
	}

	if err != nil {
		e.snapshot.Err = err
		c.logger.Warnw("Task list refresh failed", "key", key.String(), "error", err,
			"kept_tasks", len(e.snapshot.Tasks))
		return
	}

	if tasks == nil {
		tasks = []entities.Task{}
	}
	e.snapshot.Tasks = tasks
	e.snapshot.Err = nil
	e.snapshot.FetchedAt = c.now()
	e.snapshot.Loaded = true
	e.stale = false
}
