package toast

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Observer receives lifecycle events for every toast a manager shows and
// dismisses. Observers are registered at construction time and called
// outside the manager lock. Implementations live in pkg/middleware
// (Prometheus, OpenTelemetry) but any type can observe.
type Observer interface {
	// ToastShown is called after the record has been inserted into the queue.
	ToastShown(rec Record)

	// ToastDismissed is called after the record has been removed, its timer
	// cancelled, and its OnDismiss callback run.
	ToastDismissed(rec Record, reason Reason)
}

// ManagerConfig holds configuration for a Manager.
type ManagerConfig struct {
	// DefaultDuration is applied when Show is called without a duration
	// option. Default: DefaultDuration (4 seconds).
	DefaultDuration time.Duration

	// DefaultPosition is applied when Show is called without a position
	// option. Default: PositionTop.
	DefaultPosition Position

	// DefaultType is applied when Show is called without a type option.
	// Default: TypeInfo.
	DefaultType Type

	// Logger is the structured logger for lifecycle events.
	// Default: slog.Default().
	Logger *slog.Logger

	// Observers receive shown/dismissed events for every toast.
	Observers []Observer
}

// DefaultManagerConfig returns a ManagerConfig with sensible defaults.
func DefaultManagerConfig() *ManagerConfig {
	return &ManagerConfig{
		DefaultDuration: DefaultDuration,
		DefaultPosition: PositionTop,
		DefaultType:     TypeInfo,
	}
}

// Clone returns a copy of the ManagerConfig.
func (c *ManagerConfig) Clone() *ManagerConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Observers != nil {
		clone.Observers = make([]Observer, len(c.Observers))
		copy(clone.Observers, c.Observers)
	}
	return &clone
}

// Manager owns the toast queue and is its single writer. All insertion goes
// through Show and all removal through one internal dismissal path, which
// is what makes the timer/gesture/explicit-hide race safe: the first path
// to remove a record wins and every later attempt no-ops.
//
// A Manager is an explicit handle, not an implicit singleton: create one at
// application start, pass it to the screens and the renderer bridge, and
// Close it at shutdown.
type Manager struct {
	mu     sync.Mutex
	queue  *Queue
	timers map[string]*lifecycleTimer
	seq    uint64 // id counter, never reset or reused
	ver    uint64 // queue mutation counter for Snapshot.Seq

	closed atomic.Bool

	config    *ManagerConfig
	logger    *slog.Logger
	observers []Observer

	subMu  sync.RWMutex
	subs   map[uint64]func(Snapshot)
	subSeq uint64
}

// NewManager creates a Manager with the given configuration. A nil config
// uses DefaultManagerConfig.
func NewManager(config *ManagerConfig) *Manager {
	if config == nil {
		config = DefaultManagerConfig()
	} else {
		config = config.Clone()
		defaults := DefaultManagerConfig()
		if config.DefaultDuration == 0 {
			config.DefaultDuration = defaults.DefaultDuration
		}
		if config.DefaultPosition == "" {
			config.DefaultPosition = defaults.DefaultPosition
		}
		if config.DefaultType == "" {
			config.DefaultType = defaults.DefaultType
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		queue:     NewQueue(),
		timers:    make(map[string]*lifecycleTimer),
		config:    config,
		logger:    logger.With("component", "toast"),
		observers: config.Observers,
		subs:      make(map[uint64]func(Snapshot)),
	}
}

// Show merges the options over the manager defaults, assigns a fresh id,
// appends the record to the partition for its position, arms a lifecycle
// timer when the duration is positive, and returns the id. The record is in
// the queue before Show returns, so an immediate Hide(id) takes effect.
//
// An empty message is a caller contract violation: Show logs a warning and
// returns "" without inserting anything. Show on a closed manager behaves
// the same way.
func (m *Manager) Show(message string, opts ...Option) string {
	if message == "" {
		m.logger.Warn("show called with empty message")
		return ""
	}

	rec := Record{
		Message:   message,
		Type:      m.config.DefaultType,
		Duration:  m.config.DefaultDuration,
		Position:  m.config.DefaultPosition,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&rec)
	}

	m.mu.Lock()
	// Checked under the lock so a Show racing Close can never insert after
	// Close's sweep has emptied the queue: either the record is in before
	// the sweep takes the lock, or the record is rejected.
	if m.closed.Load() {
		m.mu.Unlock()
		m.logger.Warn("show called on closed manager")
		return ""
	}
	m.seq++
	rec.ID = fmt.Sprintf("toast-%d", m.seq)
	m.queue.Append(rec)
	if rec.Duration > 0 {
		m.timers[rec.ID] = armTimer(rec.ID, rec.Duration, func(id string) {
			m.dismiss(id, ReasonTimeout)
		})
	}
	m.ver++
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("toast shown",
		"id", rec.ID,
		"type", string(rec.Type),
		"position", string(rec.Position),
		"duration", rec.Duration)

	for _, o := range m.observers {
		o.ToastShown(rec)
	}
	m.notify(snap)

	return rec.ID
}

// Success shows a success toast.
//
//	m.Success("Changes saved")
func (m *Manager) Success(message string, opts ...Option) string {
	return m.Show(message, append([]Option{WithType(TypeSuccess)}, opts...)...)
}

// Error shows an error toast.
//
//	m.Error("Failed to delete item")
func (m *Manager) Error(message string, opts ...Option) string {
	return m.Show(message, append([]Option{WithType(TypeError)}, opts...)...)
}

// Warning shows a warning toast.
//
//	m.Warning("This action cannot be undone")
func (m *Manager) Warning(message string, opts ...Option) string {
	return m.Show(message, append([]Option{WithType(TypeWarning)}, opts...)...)
}

// Info shows an info toast.
//
//	m.Info("New features available")
func (m *Manager) Info(message string, opts ...Option) string {
	return m.Show(message, append([]Option{WithType(TypeInfo)}, opts...)...)
}

// Hide removes the toast with the given id, cancels its timer, and runs its
// OnDismiss callback. When no such record exists — already removed or never
// shown — Hide is a silent no-op, never an error. Calling Hide twice on the
// same id is idempotent.
func (m *Manager) Hide(id string) {
	m.dismiss(id, ReasonHide)
}

// HideAll removes every live record across both partitions, cancelling all
// timers, and runs each record's OnDismiss exactly once. The sweep is
// atomic from the caller's perspective: the queue is emptied under the lock
// before any callback runs.
func (m *Manager) HideAll() {
	m.mu.Lock()
	removed := m.queue.Clear()
	for _, lt := range m.timers {
		lt.Stop()
	}
	clear(m.timers)
	m.ver++
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if len(removed) == 0 {
		return
	}

	for _, rec := range removed {
		m.finish(rec, ReasonHideAll)
	}
	m.notify(snap)
}

// PressAction invokes the record's action callback and then dismisses the
// toast. Dismissal is unconditional: it happens even if the callback
// panics, in which case the panic propagates to the caller afterwards.
// Unknown ids are silent no-ops.
func (m *Manager) PressAction(id string) {
	m.mu.Lock()
	rec, ok := m.queue.Get(id)
	m.mu.Unlock()
	if !ok {
		return
	}

	defer m.dismiss(id, ReasonAction)
	if rec.onPress != nil {
		rec.onPress()
	}
}

// CancelTimer stops the lifecycle timer for the given id without removing
// the record. Used when the visual host for a toast is torn down
// independently of a dismissal (the surrounding screen unmounts); the
// record then behaves as persistent until an explicit removal path fires.
func (m *Manager) CancelTimer(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lt, ok := m.timers[id]; ok {
		lt.Stop()
		delete(m.timers, id)
	}
}

// Visible reports whether a record with the given id is currently in the
// queue. Existence in the queue is the definition of "visible."
func (m *Manager) Visible(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.queue.Get(id)
	return ok
}

// Len returns the number of live records across both partitions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

// Snapshot returns the current queue state: both partitions in insertion
// order, plus a sequence number that increases with every mutation.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn to receive a Snapshot after every queue mutation.
// The returned cancel function removes the subscription; it is safe to call
// more than once.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.subMu.Lock()
	m.subSeq++
	id := m.subSeq
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// Close dismisses every live toast (running OnDismiss callbacks exactly
// once), drops all subscribers, and rejects further Show calls. Call at
// application shutdown.
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.HideAll()

	m.subMu.Lock()
	clear(m.subs)
	m.subMu.Unlock()
}

// dismiss is the single removal path every termination funnels through:
// timer expiry, gesture commit, action press, explicit hide, and the
// renderer bridge. Removal from the queue under the lock is the
// linearization point; the first caller for an id wins and every later
// caller finds nothing to do.
func (m *Manager) dismiss(id string, reason Reason) bool {
	m.mu.Lock()
	rec, ok := m.queue.Remove(id)
	if !ok {
		m.mu.Unlock()
		return false
	}
	if lt, exists := m.timers[id]; exists {
		lt.Stop()
		delete(m.timers, id)
	}
	m.ver++
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.finish(rec, reason)
	m.notify(snap)
	return true
}

// finish runs the record's OnDismiss callback and informs observers. Called
// exactly once per record, after it has left the queue and its timer is
// stopped.
func (m *Manager) finish(rec Record, reason Reason) {
	if rec.onDismiss != nil {
		rec.onDismiss()
	}
	m.logger.Debug("toast dismissed", "id", rec.ID, "reason", string(reason))
	for _, o := range m.observers {
		o.ToastDismissed(rec, reason)
	}
}

// snapshotLocked builds a Snapshot of the current queue state. Caller must
// hold m.mu. Mutation sites bump ver first so subscribers can order
// snapshots; plain reads reuse the current value.
func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Seq:    m.ver,
		Top:    m.queue.Partition(PositionTop),
		Bottom: m.queue.Partition(PositionBottom),
	}
}

// notify delivers a snapshot to all subscribers. Subscribers are copied
// out first so no lock is held during delivery.
func (m *Manager) notify(snap Snapshot) {
	m.subMu.RLock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}
