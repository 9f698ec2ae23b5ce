package server

import (
	"time"

	"github.com/toastkit/toastkit/pkg/toast"
)

// wireRecord is the JSON shape of one toast as seen by renderers. Durations
// cross the wire in milliseconds.
type wireRecord struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Title       string    `json:"title,omitempty"`
	DurationMS  int64     `json:"durationMs"`
	Position    string    `json:"position"`
	ActionLabel string    `json:"actionLabel,omitempty"`
	HasAction   bool      `json:"hasAction"`
	CreatedAt   time.Time `json:"createdAt"`
}

// wireSnapshot is the JSON shape of a full queue snapshot.
type wireSnapshot struct {
	Seq    uint64       `json:"seq"`
	Top    []wireRecord `json:"top"`
	Bottom []wireRecord `json:"bottom"`
}

// showRequest is the body of POST /toasts.
type showRequest struct {
	Message     string `json:"message"`
	Type        string `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	DurationMS  *int64 `json:"durationMs,omitempty"`
	Position    string `json:"position,omitempty"`
	ActionLabel string `json:"actionLabel,omitempty"`
}

// showResponse is the body returned by POST /toasts.
type showResponse struct {
	ID string `json:"id"`
}

// Renderer event operations accepted on the WebSocket feed.
const (
	opHide    = "hide"
	opAction  = "action"
	opGesture = "gesture"
)

// rendererEvent is one inbound message from a renderer: a close press, an
// action press, or a gesture release with the final drag delta and the
// viewport width it was measured against.
type rendererEvent struct {
	Op    string  `json:"op"`
	ID    string  `json:"id"`
	DX    float64 `json:"dx,omitempty"`
	Width float64 `json:"width,omitempty"`
}

func toWireRecord(rec toast.Record) wireRecord {
	return wireRecord{
		ID:          rec.ID,
		Message:     rec.Message,
		Type:        string(rec.Type),
		Title:       rec.Title,
		DurationMS:  rec.Duration.Milliseconds(),
		Position:    string(rec.Position),
		ActionLabel: rec.ActionLabel,
		HasAction:   rec.HasAction(),
		CreatedAt:   rec.CreatedAt,
	}
}

func toWireSnapshot(snap toast.Snapshot) wireSnapshot {
	ws := wireSnapshot{
		Seq:    snap.Seq,
		Top:    make([]wireRecord, 0, len(snap.Top)),
		Bottom: make([]wireRecord, 0, len(snap.Bottom)),
	}
	for _, rec := range snap.Top {
		ws.Top = append(ws.Top, toWireRecord(rec))
	}
	for _, rec := range snap.Bottom {
		ws.Bottom = append(ws.Bottom, toWireRecord(rec))
	}
	return ws
}
