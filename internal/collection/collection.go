// Package collection implements the synchronized collection: one typed
// record set with CRUD operations whose success and failure semantics do
// not depend on whether the remote store is reachable.
//
// A collection decides once, at Open, whether it is backed by the remote
// SQLite adapter or the in-memory fallback store. The binding is carried
// as data and never re-evaluated mid-session; a later store error on a
// specific operation is handled by that operation (rollback plus a typed
// error), not by rebinding the collection.
//
// Mutations are commands processed by a single worker goroutine in
// submission order. Each mutation is applied to the snapshot
// optimistically, forwarded to the bound store, and reconciled or rolled
// back on the store's response, walking the state machine
// Idle -> Pending -> Reconciled | RolledBack. Subscribers observe the
// optimistic snapshot before the store has confirmed; callers of the
// public methods block until reconciliation and receive a typed result.
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentdash/agentdash/internal/metrics"
	"github.com/agentdash/agentdash/internal/storage"
	"github.com/agentdash/agentdash/internal/storage/memory"
)

// Record is the constraint for collection element types: a storable
// record that can also validate itself before reaching a store.
type Record[T any] interface {
	storage.Record[T]
	Validate() error
}

// Binding identifies which store a collection bound to at open time.
type Binding int

const (
	// BindingRemote means the collection is backed by the record store
	// adapter and scoped to the signed-in owner.
	BindingRemote Binding = iota
	// BindingLocal means the collection is backed by the seeded
	// in-memory fallback store under the anonymous owner.
	BindingLocal
)

// State is the reconciliation state of the most recent mutation.
type State int

const (
	// StateIdle means no mutation has been submitted yet.
	StateIdle State = iota
	// StatePending means a mutation is applied optimistically and
	// awaiting the store's response.
	StatePending
	// StateReconciled means the last mutation was confirmed by the store.
	StateReconciled
	// StateRolledBack means the last mutation was rejected and reverted.
	StateRolledBack
)

// Config carries everything Open needs to bind a collection.
type Config[T Record[T]] struct {
	// Table is the logical table name, used for logging and metrics.
	Table string

	// Remote is the record store adapter for this table. Nil when the
	// process has no remote backend configured at all.
	Remote storage.Table[T]

	// Seed pre-populates the fallback store when the collection cannot
	// bind remotely. Ignored on a successful remote binding.
	Seed []T

	// Less orders the snapshot after every mutation. Records comparing
	// equal keep their insertion order. Nil preserves insertion order.
	Less func(a, b T) bool

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *metrics.Collections

	// Clock defaults to time.Now. Tests override it.
	Clock func() time.Time
}

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opRemove
	opRefresh
)

func (k opKind) String() string {
	switch k {
	case opInsert:
		return "insert"
	case opUpdate:
		return "update"
	case opRemove:
		return "remove"
	case opRefresh:
		return "refresh"
	}
	return "unknown"
}

type result[T any] struct {
	rec T
	err error
}

type command[T Record[T]] struct {
	kind  opKind
	ctx   context.Context
	rec   T
	id    string
	patch func(T)
	reply chan result[T]
}

// Collection owns one typed record set bound to exactly one store.
type Collection[T Record[T]] struct {
	table   string
	owner   string
	binding Binding
	store   storage.Table[T]
	less    func(a, b T) bool
	logger  *slog.Logger
	met     *metrics.Collections
	clock   func() time.Time

	mu       sync.RWMutex
	snapshot []T
	state    State
	subs     []func([]T)

	cmds      chan *command[T]
	stop      chan struct{}
	closeOnce sync.Once
}

// Open binds a collection for ownerID and emits the initial snapshot.
//
// The remote adapter is used only when an owner is signed in (non-empty
// ownerID), a remote table was supplied, and the initial probe fetch
// succeeds. Any other outcome binds the seeded fallback store under the
// anonymous owner. The decision is final for the collection's lifetime.
func Open[T Record[T]](ctx context.Context, ownerID string, cfg Config[T]) *Collection[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Collection[T]{
		table:  cfg.Table,
		less:   cfg.Less,
		logger: logger,
		met:    cfg.Metrics,
		clock:  cfg.Clock,
		state:  StateIdle,
		cmds:   make(chan *command[T]),
		stop:   make(chan struct{}),
	}
	if c.clock == nil {
		c.clock = time.Now
	}

	if ownerID != "" && cfg.Remote != nil {
		recs, err := cfg.Remote.List(ctx, ownerID)
		if err == nil {
			c.binding = BindingRemote
			c.owner = ownerID
			c.store = cfg.Remote
			c.snapshot = c.ordered(recs)
			c.logger.Debug("collection bound to remote store",
				"table", c.table, "owner", ownerID, "records", len(recs))
		} else {
			// Binding unavailable: recovered locally, surfaced to the
			// user only as an offline indicator, never as an error.
			c.logger.Info("remote store unavailable, binding local fallback",
				"table", c.table, "owner", ownerID, "error", err)
		}
	}

	if c.store == nil {
		local := memory.NewTable(cfg.Seed)
		c.binding = BindingLocal
		c.owner = storage.AnonymousOwner
		c.store = local
		recs, _ := local.List(ctx, c.owner) // in-memory list cannot fail
		c.snapshot = c.ordered(recs)
		c.met.ObserveFallbackBinding(c.table)
		c.logger.Debug("collection bound to local fallback",
			"table", c.table, "seed", len(recs))
	}

	go c.run()
	return c
}

// List returns the current snapshot. The returned slice is replaced, not
// mutated, on every change; callers must treat it and its records as
// immutable.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// UsingFallback reports whether the collection bound to the local
// fallback store at open time. Surfaced so the UI can show a
// "working offline" indicator.
func (c *Collection[T]) UsingFallback() bool {
	return c.binding == BindingLocal
}

// State returns the reconciliation state of the most recent mutation.
func (c *Collection[T]) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers fn to receive every snapshot change, including the
// optimistic application before the store confirms. fn runs on the
// collection's worker goroutine and must not call back into mutating
// methods of the same collection.
func (c *Collection[T]) Subscribe(fn func([]T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Insert validates rec, assigns ID and creation timestamp if absent,
// applies it to the snapshot optimistically and forwards it to the bound
// store. On rejection the record is removed again and the error wraps
// ErrMutationRejected.
func (c *Collection[T]) Insert(ctx context.Context, rec T) (T, error) {
	res := c.submit(&command[T]{kind: opInsert, ctx: ctx, rec: rec})
	return res.rec, res.err
}

// Update merges patch into the record with the given ID, optimistically
// first, then against the bound store. On rejection the previous value
// is restored. The patch must not change identity or creation time;
// both are preserved regardless of what it does.
func (c *Collection[T]) Update(ctx context.Context, id string, patch func(T)) (T, error) {
	res := c.submit(&command[T]{kind: opUpdate, ctx: ctx, id: id, patch: patch})
	return res.rec, res.err
}

// Remove deletes the record with the given ID, optimistically first. On
// rejection the record is restored at its previous position.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	res := c.submit(&command[T]{kind: opRemove, ctx: ctx, id: id})
	return res.err
}

// Refresh re-fetches from the bound store and replaces the snapshot
// wholesale. Used after operations whose side effects span collections
// and might not be reflected by optimistic patching alone.
func (c *Collection[T]) Refresh(ctx context.Context) error {
	res := c.submit(&command[T]{kind: opRefresh, ctx: ctx})
	return res.err
}

// Close stops the worker. Pending callers receive ErrClosed.
func (c *Collection[T]) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

func (c *Collection[T]) submit(cmd *command[T]) result[T] {
	cmd.reply = make(chan result[T], 1)
	var zero T
	select {
	case c.cmds <- cmd:
	case <-c.stop:
		return result[T]{zero, ErrClosed}
	case <-cmd.ctx.Done():
		return result[T]{zero, cmd.ctx.Err()}
	}
	select {
	case res := <-cmd.reply:
		return res
	case <-c.stop:
		return result[T]{zero, ErrClosed}
	}
}

// run processes commands strictly in submission order.
func (c *Collection[T]) run() {
	for {
		select {
		case <-c.stop:
			return
		case cmd := <-c.cmds:
			cmd.reply <- c.handle(cmd)
		}
	}
}

func (c *Collection[T]) handle(cmd *command[T]) result[T] {
	switch cmd.kind {
	case opInsert:
		return c.handleInsert(cmd)
	case opUpdate:
		return c.handleUpdate(cmd)
	case opRemove:
		return c.handleRemove(cmd)
	case opRefresh:
		return c.handleRefresh(cmd)
	}
	var zero T
	return result[T]{zero, fmt.Errorf("unknown operation %d", cmd.kind)}
}

func (c *Collection[T]) handleInsert(cmd *command[T]) result[T] {
	var zero T

	rec := cmd.rec.Clone()
	if err := rec.Validate(); err != nil {
		c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeRejected)
		return result[T]{zero, fmt.Errorf("%w: %v", ErrValidationRejected, err)}
	}
	if rec.RecordID() == "" {
		rec.SetRecordID(uuid.New().String())
	}
	if rec.RecordCreatedAt() == 0 {
		rec.StampCreatedAt(c.clock().Unix())
	}

	// Optimistic application: subscribers see the record before the
	// store has confirmed it.
	c.setState(StatePending)
	c.publish(append(c.copySnapshot(), rec))

	stored, err := c.store.Insert(cmd.ctx, c.owner, rec)
	if err != nil {
		c.publish(c.withoutRecord(rec.RecordID()))
		c.setState(StateRolledBack)
		c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeRolledBack)
		c.logger.Warn("insert rejected by store, rolled back",
			"table", c.table, "id", rec.RecordID(), "error", err)
		return result[T]{zero, fmt.Errorf("%w: %v", ErrMutationRejected, err)}
	}

	// Adopt the stored record; covers store-assigned fields.
	c.publish(c.withReplaced(rec.RecordID(), stored))
	c.setState(StateReconciled)
	c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeOK)
	return result[T]{stored, nil}
}

func (c *Collection[T]) handleUpdate(cmd *command[T]) result[T] {
	var zero T

	prev, idx := c.find(cmd.id)
	if idx < 0 {
		c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeRejected)
		return result[T]{zero, fmt.Errorf("%w: %s", ErrNotFound, cmd.id)}
	}

	next := prev.Clone()
	cmd.patch(next)
	// Identity and creation time are immutable no matter what the patch did.
	next.SetRecordID(prev.RecordID())
	next.StampCreatedAt(prev.RecordCreatedAt())
	if err := next.Validate(); err != nil {
		c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeRejected)
		return result[T]{zero, fmt.Errorf("%w: %v", ErrValidationRejected, err)}
	}

	c.setState(StatePending)
	c.publish(c.withReplaced(cmd.id, next))

	stored, err := c.store.Update(cmd.ctx, c.owner, cmd.id, next)
	if err != nil {
		c.publish(c.withReplaced(cmd.id, prev))
		c.setState(StateRolledBack)
		c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeRolledBack)
		c.logger.Warn("update rejected by store, rolled back",
			"table", c.table, "id", cmd.id, "error", err)
		return result[T]{zero, fmt.Errorf("%w: %v", ErrMutationRejected, err)}
	}

	c.publish(c.withReplaced(cmd.id, stored))
	c.setState(StateReconciled)
	c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeOK)
	return result[T]{stored, nil}
}

func (c *Collection[T]) handleRemove(cmd *command[T]) result[T] {
	var zero T

	prev, idx := c.find(cmd.id)
	if idx < 0 {
		c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeRejected)
		return result[T]{zero, fmt.Errorf("%w: %s", ErrNotFound, cmd.id)}
	}

	c.setState(StatePending)
	c.publish(c.withoutRecord(cmd.id))

	if err := c.store.Remove(cmd.ctx, c.owner, cmd.id); err != nil {
		c.publish(c.withInserted(idx, prev))
		c.setState(StateRolledBack)
		c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeRolledBack)
		c.logger.Warn("remove rejected by store, rolled back",
			"table", c.table, "id", cmd.id, "error", err)
		return result[T]{zero, fmt.Errorf("%w: %v", ErrMutationRejected, err)}
	}

	c.setState(StateReconciled)
	c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeOK)
	return result[T]{zero, nil}
}

func (c *Collection[T]) handleRefresh(cmd *command[T]) result[T] {
	var zero T

	recs, err := c.store.List(cmd.ctx, c.owner)
	if err != nil {
		c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeRejected)
		return result[T]{zero, fmt.Errorf("%w: %v", ErrMutationRejected, err)}
	}

	c.publish(c.ordered(recs))
	c.met.ObserveOp(c.table, cmd.kind.String(), metrics.OutcomeOK)
	return result[T]{zero, nil}
}

// --- snapshot helpers, worker goroutine only ---

func (c *Collection[T]) copySnapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.snapshot...)
}

func (c *Collection[T]) find(id string) (T, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, rec := range c.snapshot {
		if rec.RecordID() == id {
			return rec, i
		}
	}
	var zero T
	return zero, -1
}

func (c *Collection[T]) withoutRecord(id string) []T {
	cur := c.copySnapshot()
	for i, rec := range cur {
		if rec.RecordID() == id {
			return append(cur[:i], cur[i+1:]...)
		}
	}
	return cur
}

func (c *Collection[T]) withReplaced(id string, rec T) []T {
	cur := c.copySnapshot()
	for i, r := range cur {
		if r.RecordID() == id {
			cur[i] = rec
			break
		}
	}
	return cur
}

func (c *Collection[T]) withInserted(idx int, rec T) []T {
	cur := c.copySnapshot()
	if idx < 0 || idx > len(cur) {
		idx = len(cur)
	}
	cur = append(cur, rec)
	copy(cur[idx+1:], cur[idx:])
	cur[idx] = rec
	return cur
}

// ordered sorts recs by the configured comparator, keeping insertion
// order for records that compare equal.
func (c *Collection[T]) ordered(recs []T) []T {
	if c.less != nil {
		sort.SliceStable(recs, func(i, j int) bool { return c.less(recs[i], recs[j]) })
	}
	return recs
}

// publish installs next as the current snapshot and notifies subscribers.
// Ordering is applied on every publish, not only at initial load.
func (c *Collection[T]) publish(next []T) {
	next = c.ordered(next)
	c.mu.Lock()
	c.snapshot = next
	subs := c.subs
	c.mu.Unlock()
	for _, fn := range subs {
		fn(next)
	}
}

func (c *Collection[T]) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
