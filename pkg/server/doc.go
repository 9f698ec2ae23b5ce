// Package server bridges a toast.Manager to remote renderers over HTTP and
// WebSocket.
//
// The bridge exposes two surfaces:
//
//   - REST endpoints for showing, hiding, and listing toasts, mounted on a
//     chi router: POST /toasts, GET /toasts, DELETE /toasts/{id},
//     DELETE /toasts, plus /healthz and /metrics.
//   - A WebSocket feed at /ws that pushes a JSON queue snapshot on connect
//     and after every queue mutation, and accepts renderer events back:
//     close presses, action presses, and gesture releases.
//
// The manager remains the single writer of queue state. Renderers never
// mutate the queue directly; they request mutations by id, and a request
// for an id that is already gone is a silent no-op. Snapshots are complete
// state, so a slow consumer can safely miss intermediate frames: the feed
// coalesces to the latest snapshot instead of buffering a backlog.
package server
