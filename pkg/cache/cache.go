package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/internal/metrics"
)

// ErrFetchPanicked is returned by reads whose refresh panicked.
var ErrFetchPanicked = errors.New("snapshot fetch panicked")

// Fetcher retrieves a complete vehicle snapshot from upstream.
type Fetcher func(ctx context.Context) (map[string]interface{}, error)

// State describes a Cache relative to its Policy.
type State int

const (
	StateEmpty State = iota // No snapshot yet; a read must refresh and has nothing to fall back on.
	StateFresh              // Reads are served from the snapshot.
	StateStale              // The next read refreshes.
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	}
	return "unknown"
}

// entry pairs a snapshot with the time it was fetched. Entries are replaced, never modified.
type entry struct {
	snapshot  Snapshot
	fetchedAt time.Time
}

// Cache holds at most one vehicle snapshot and refreshes it through a Fetcher according to a
// Policy.
type Cache struct {
	// ServeStaleOnError makes reads return the previous snapshot when a refresh fails. By default
	// the refresh error is returned and the previous snapshot is kept for later reads.
	ServeStaleOnError bool

	policy Policy
	fetch  Fetcher
	now    func() time.Time
	logger *log.Logger

	lock    sync.Mutex
	current *entry
}

// New returns an empty Cache.
func New(fetch Fetcher, policy Policy) *Cache {
	return &Cache{
		policy: policy,
		fetch:  fetch,
		now:    time.Now,
		logger: log.With("component", "cache"),
	}
}

// SetClock replaces the wall clock used for staleness decisions.
func (c *Cache) SetClock(now func() time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = now
}

// Policy returns the refresh policy.
func (c *Cache) Policy() Policy {
	return c.policy
}

// State returns the current state of the cache.
func (c *Cache) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.current == nil {
		return StateEmpty
	}
	if c.policy.Stale(c.current.fetchedAt, c.now()) {
		return StateStale
	}
	return StateFresh
}

// Invalidate drops the snapshot so that the next read refreshes.
func (c *Cache) Invalidate() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.current = nil
}

// Get returns a snapshot that satisfies the policy, refreshing it first if necessary.
//
// The refresh runs under the cache lock, so concurrent readers wait for it and then observe the
// same snapshot, and at most one upstream fetch is in flight. If the refresh fails, the previous
// snapshot (if any) is kept and the error is returned unless ServeStaleOnError is set.
func (c *Cache) Get(ctx context.Context) (Snapshot, time.Time, error) {
	e, previous, err := c.resolve(ctx)
	if err != nil {
		metrics.CacheRefreshFailures.Inc()
		if previous != nil && c.ServeStaleOnError {
			c.logger.Warning("Refresh failed, serving snapshot from %s: %s", previous.fetchedAt.Format(time.RFC3339), err)
			return previous.snapshot, previous.fetchedAt, nil
		}
		return nil, time.Time{}, fmt.Errorf("refreshing vehicle snapshot: %w", err)
	}
	return e.snapshot, e.fetchedAt, nil
}

// resolve returns the entry to serve, refreshing it under the lock when the policy requires.
// On failure it returns the entry that was current before the attempt.
func (c *Cache) resolve(ctx context.Context) (e, previous *entry, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.current != nil && !c.policy.Stale(c.current.fetchedAt, c.now()) {
		metrics.CacheReads.WithLabelValues("hit").Inc()
		metrics.SnapshotAge.Set(c.now().Sub(c.current.fetchedAt).Seconds())
		return c.current, nil, nil
	}

	metrics.CacheReads.WithLabelValues("miss").Inc()
	c.logger.Debug("Refreshing vehicle snapshot (policy %s)", c.policy)
	state, err := c.safeFetch(ctx)
	if err != nil {
		return nil, c.current, err
	}
	c.current = &entry{snapshot: Snapshot(state), fetchedAt: c.now()}
	metrics.SnapshotAge.Set(0)
	return c.current, nil, nil
}

// safeFetch converts a panicking Fetcher into an error so that the cache stays usable.
func (c *Cache) safeFetch(ctx context.Context) (state map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Snapshot fetch panicked: %v", r)
			state, err = nil, fmt.Errorf("%w: %v", ErrFetchPanicked, r)
		}
	}()
	return c.fetch(ctx)
}

// Field returns the value at path in a fresh snapshot, or def if the path does not resolve. The
// error is non-nil only if a required refresh failed.
func (c *Cache) Field(ctx context.Context, def interface{}, path ...string) (interface{}, error) {
	snapshot, _, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Lookup(def, path...), nil
}

// Age returns the age of the current snapshot and false if the cache is empty.
func (c *Cache) Age() (time.Duration, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.current == nil {
		return 0, false
	}
	return c.now().Sub(c.current.fetchedAt), true
}

type export struct {
	Policy    string    `json:"policy"`
	State     string    `json:"state"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	Snapshot  Snapshot  `json:"snapshot,omitempty"`
}

// Export writes the current snapshot and its metadata to w as JSON without refreshing.
func (c *Cache) Export(w io.Writer) error {
	state := c.State()
	c.lock.Lock()
	out := export{Policy: c.policy.String(), State: state.String()}
	if c.current != nil {
		out.FetchedAt = c.current.fetchedAt
		out.Snapshot = c.current.snapshot
	}
	c.lock.Unlock()

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
