// Package sync drives the push-then-pull cycle between the local store and
// the bookmark service. One coordinator owns the cycle: captures request a
// sync and carry on, the coordinator runs cycles one at a time, and a failed
// cycle leaves every record where it was so the next cycle can try again.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Yigal/bookmarkable/internal/core/db"
	"github.com/Yigal/bookmarkable/internal/core/remote"
)

// DefaultInterval is the gap between automatic cycles.
const DefaultInterval = 5 * time.Minute

// Remote is the service surface the coordinator pushes to and pulls from.
// *remote.Client implements it.
type Remote interface {
	Create(ctx context.Context, b *db.Bookmark) (int64, error)
	Update(ctx context.Context, canonicalID int64, b *db.Bookmark) error
	List(ctx context.Context, since *time.Time) (*remote.Snapshot, error)
}

// State is the coordinator's lifecycle position.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
)

// Outcome classifies a finished cycle.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Result describes one finished cycle.
type Result struct {
	Outcome    Outcome
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
	// Pushed counts records uploaded, Pulled counts remote records merged in,
	// Skipped counts merges refused because the local record had unpushed
	// edits, Failures counts records that errored and stayed pending.
	Pushed   int
	Pulled   int
	Skipped  int
	Failures int
}

// Status is a point-in-time view of the coordinator.
type Status struct {
	State      State
	LastResult *Result
}

// Options configures a Coordinator.
type Options struct {
	// Interval between automatic cycles. Zero means DefaultInterval.
	Interval time.Duration
	// BackoffMin and BackoffMax bound the retry delay after failed cycles.
	// Zero values mean the package defaults.
	BackoffMin time.Duration
	BackoffMax time.Duration
}

// Coordinator runs sync cycles against the service. Create one per store.
type Coordinator struct {
	store    *db.DB
	remote   Remote
	interval time.Duration
	backoff  *Backoff

	mu    gosync.Mutex
	state State
	rerun bool
	last  *Result

	kick chan struct{}
}

// NewCoordinator creates a coordinator for store and service.
func NewCoordinator(store *db.DB, svc Remote, opts Options) *Coordinator {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coordinator{
		store:    store,
		remote:   svc,
		interval: interval,
		backoff:  NewBackoff(opts.BackoffMin, opts.BackoffMax),
		state:    StateIdle,
		kick:     make(chan struct{}, 1),
	}
}

// SyncNow requests a cycle and returns immediately. A request made while a
// cycle is running is coalesced into exactly one follow-up cycle; requests
// made while idle wake the run loop. It never blocks, so capture paths can
// call it freely.
func (c *Coordinator) SyncNow() {
	c.mu.Lock()
	if c.state == StateSyncing {
		c.rerun = true
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Status reports the coordinator's current state and the last finished cycle.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{State: c.state}
	if c.last != nil {
		r := *c.last
		st.LastResult = &r
	}
	return st
}

// Run drives automatic cycles until ctx is done: one every interval, sooner
// after a failure (doubling backoff), and immediately when SyncNow fires.
func (c *Coordinator) Run(ctx context.Context) error {
	failed := false
	for {
		wait := c.interval
		if failed {
			wait = c.backoff.Next()
		} else {
			c.backoff.Reset()
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-c.kick:
			timer.Stop()
		}

		res := c.RunOnce(ctx)
		failed = res != nil && res.Outcome == OutcomeFailure
	}
}

// RunOnce runs one cycle, plus one follow-up cycle if a SyncNow request
// arrived mid-flight. When another cycle is already running it records the
// request for that cycle's follow-up and returns the last known result.
func (c *Coordinator) RunOnce(ctx context.Context) *Result {
	var res *Result
	for {
		r, ran := c.runCycle(ctx)
		res = r
		if !ran {
			return res
		}

		c.mu.Lock()
		again := c.rerun && ctx.Err() == nil
		c.rerun = false
		c.mu.Unlock()
		if !again {
			return res
		}
	}
}

// runCycle takes the syncing slot, runs one cycle, and releases the slot.
// The bool reports whether this call ran the cycle itself.
func (c *Coordinator) runCycle(ctx context.Context) (*Result, bool) {
	c.mu.Lock()
	if c.state == StateSyncing {
		c.rerun = true
		last := c.last
		c.mu.Unlock()
		return last, false
	}
	c.state = StateSyncing
	c.rerun = false
	c.mu.Unlock()

	inFlight.Set(1)
	res := c.sync(ctx)
	inFlight.Set(0)

	observeCycle(res)

	c.mu.Lock()
	c.state = StateIdle
	c.last = res
	c.mu.Unlock()
	return res, true
}

// sync is one push-then-pull cycle. Per-record errors are counted and
// skipped; errors that invalidate the whole cycle (listing pending work,
// reaching the service, persisting the cursor) finish it as a failure.
func (c *Coordinator) sync(ctx context.Context) *Result {
	res := &Result{StartedAt: time.Now()}
	log.Debug().Msg("sync cycle started")

	pending, err := c.store.ListPendingUpload()
	if err != nil {
		return c.fail(res, fmt.Errorf("failed to list pending bookmarks: %w", err))
	}
	for i := range pending {
		if ctx.Err() != nil {
			return c.fail(res, ctx.Err())
		}
		b := pending[i]
		if err := c.pushOne(ctx, &b); err != nil {
			res.Failures++
			log.Warn().Err(err).Str("url", b.URL).Msg("push failed, record stays pending")
			continue
		}
		res.Pushed++
	}

	cursor, err := c.store.GetSyncCursor()
	if err != nil {
		return c.fail(res, fmt.Errorf("failed to read sync cursor: %w", err))
	}
	snap, err := c.remote.List(ctx, cursor.LastSuccessfulSyncAt)
	if err != nil {
		return c.fail(res, fmt.Errorf("failed to pull from remote: %w", err))
	}

	for _, tag := range snap.Tags {
		if _, err := c.store.UpsertTag(tag.Name, tag.Color); err != nil {
			log.Warn().Err(err).Str("tag", tag.Name).Msg("failed to apply remote tag")
		}
	}
	for _, rb := range snap.Bookmarks {
		applied, _, err := c.store.ApplyRemote(rb)
		if err != nil {
			res.Failures++
			log.Warn().Err(err).Str("url", rb.URL).Msg("pull merge failed")
			continue
		}
		if applied {
			res.Pulled++
		} else {
			res.Skipped++
		}
	}

	// The watermark is the cycle's start: anything the service accepted while
	// we were pulling gets listed again next time.
	if err := c.store.SetLastSuccessfulSyncAt(res.StartedAt); err != nil {
		return c.fail(res, fmt.Errorf("failed to persist sync cursor: %w", err))
	}

	res.Outcome = OutcomeSuccess
	res.FinishedAt = time.Now()
	res.Message = fmt.Sprintf("pushed %d, pulled %d, skipped %d, failures %d",
		res.Pushed, res.Pulled, res.Skipped, res.Failures)
	log.Info().
		Int("pushed", res.Pushed).
		Int("pulled", res.Pulled).
		Int("skipped", res.Skipped).
		Int("failures", res.Failures).
		Dur("took", res.FinishedAt.Sub(res.StartedAt)).
		Msg("sync cycle finished")
	return res
}

func (c *Coordinator) fail(res *Result, err error) *Result {
	res.Outcome = OutcomeFailure
	res.Message = err.Error()
	res.FinishedAt = time.Now()
	log.Warn().Err(err).Msg("sync cycle failed")
	return res
}

// pushOne uploads a single record. Records with a canonical ID are updates;
// the rest are creates. A create the service answers with 409 means another
// client got there first: adopt the service's ID and convert to an update.
// The synced mark is conditional on the record not having changed since it
// was read; a mid-flight edit leaves it pending for the next cycle.
func (c *Coordinator) pushOne(ctx context.Context, b *db.Bookmark) error {
	if b.CanonicalID != nil {
		if err := c.remote.Update(ctx, *b.CanonicalID, b); err != nil {
			return err
		}
		_, err := c.store.MarkSynced(b.LocalID, *b.CanonicalID, b.UpdatedAt)
		return err
	}

	id, err := c.remote.Create(ctx, b)
	if err != nil {
		var dup *remote.DuplicateError
		if !errors.As(err, &dup) {
			return err
		}
		log.Debug().Str("url", b.URL).Int64("canonical_id", dup.ID).Msg("service already has URL, adopting")
		if err := c.remote.Update(ctx, dup.ID, b); err != nil {
			return err
		}
		_, err := c.store.MarkSynced(b.LocalID, dup.ID, b.UpdatedAt)
		return err
	}

	_, err = c.store.MarkSynced(b.LocalID, id, b.UpdatedAt)
	return err
}
