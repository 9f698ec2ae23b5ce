package toast

import (
	"math"
	"sync"
)

// CommitThreshold is the fraction of the viewport width a horizontal drag
// must cross for a release to commit the dismissal instead of reverting.
const CommitThreshold = 0.30

// Tracker follows a single horizontal drag on one visible toast. While
// dragging, Move mirrors the drag delta as a rendering offset. On Release
// the tracker either commits (the record is removed through the manager's
// central dismissal path, exactly as if Hide had been called) or reverts to
// rest with no queue change.
//
// The tracker races the lifecycle timer and explicit hides: whichever path
// reaches the manager first wins, and a commit for an already-removed id is
// a silent no-op. A tracker is single-use: after a commit it is detached
// and ignores further events.
type Tracker struct {
	m     *Manager
	id    string
	width float64

	mu     sync.Mutex
	offset float64
	done   bool
}

// Tracker creates a gesture tracker bound to the toast with the given id.
// viewportWidth is the width the commit threshold is measured against.
func (m *Manager) Tracker(id string, viewportWidth float64) *Tracker {
	return &Tracker{
		m:     m,
		id:    id,
		width: viewportWidth,
	}
}

// Move records an in-progress drag delta and returns the offset the
// renderer should apply. After a commit, Move reports zero.
func (t *Tracker) Move(dx float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return 0
	}
	t.offset = dx
	return t.offset
}

// Release ends the drag with the final delta. It returns true when the
// gesture committed: |dx| exceeded CommitThreshold of the viewport width
// and dismissal was requested. Otherwise the toast reverts to rest and
// Release returns false.
func (t *Tracker) Release(dx float64) bool {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return false
	}
	commit := t.width > 0 && math.Abs(dx) > CommitThreshold*t.width
	t.offset = 0
	t.done = commit
	t.mu.Unlock()

	if commit {
		t.m.dismiss(t.id, ReasonGesture)
	}
	return commit
}

// Offset returns the current rendering offset.
func (t *Tracker) Offset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offset
}

// Done reports whether the tracker has committed and detached.
func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
