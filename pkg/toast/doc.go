// Package toast implements the in-app transient notification subsystem:
// a process-wide manager that queues short-lived banners, arms per-toast
// auto-dismiss timers, and supports gesture-driven interruption that races
// the timer.
//
// The package decides when a toast exists and why it was removed. Rendering
// is an external concern: a renderer subscribes to queue snapshots and feeds
// close-press, action-press, and gesture-release events back into the
// manager.
//
// # Lifecycle
//
// Show inserts a Record into the queue partition for its position, arms a
// lifecycle timer when the duration is positive, and returns the assigned
// id synchronously. The toast is then removed by exactly one of:
//
//   - timer expiry
//   - gesture commit (drag past the commit threshold)
//   - action press
//   - explicit Hide(id)
//   - HideAll()
//
// Every removal funnels through a single internal path keyed by id. Removal
// from the queue is the linearization point, so the record's OnDismiss
// callback runs exactly once and any later removal attempt for the same id
// is a silent no-op. Hide on an unknown id is never an error.
//
// # Usage
//
//	m := toast.NewManager(nil)
//	defer m.Close()
//
//	cancel := m.Subscribe(func(snap toast.Snapshot) {
//	    render(snap)
//	})
//	defer cancel()
//
//	id := m.Success("Changes saved")
//	m.Error("Upload failed", toast.Persistent(), toast.WithAction("Retry", retry))
//	m.Hide(id)
package toast
