package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/toastkit/toastkit/pkg/toast"
)

// client is one connected renderer. It receives queue snapshots and sends
// back renderer events (close press, action press, gesture release).
type client struct {
	conn    *websocket.Conn
	manager *toast.Manager
	config  *Config
	logger  *slog.Logger

	// snapshots is a highest-sequence-wins mailbox: each snapshot is
	// complete state, so a slow renderer only ever needs the newest one.
	snapshots chan toast.Snapshot

	done      chan struct{}
	closeOnce sync.Once
}

// handleWS upgrades the connection and runs the feed until either side
// closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:      conn,
		manager:   s.manager,
		config:    s.config,
		logger:    s.logger.With("remote", conn.RemoteAddr().String()),
		snapshots: make(chan toast.Snapshot, 1),
		done:      make(chan struct{}),
	}

	cancel := s.manager.Subscribe(c.enqueue)
	defer cancel()

	// Initial state so the renderer can mount what is already visible.
	c.enqueue(s.manager.Snapshot())

	go c.writeLoop()
	c.readLoop()
}

// enqueue delivers a snapshot to the write loop, keeping the
// highest-sequence one when the mailbox is contended. Manager notifications
// run outside the manager lock, so snapshots can arrive out of order; an
// older snapshot must never displace a newer undelivered one.
func (c *client) enqueue(snap toast.Snapshot) {
	for {
		select {
		case c.snapshots <- snap:
			return
		case <-c.done:
			return
		default:
		}
		// Mailbox full: take the pending snapshot and retry with whichever
		// of the two is newer.
		select {
		case pending := <-c.snapshots:
			if pending.Seq > snap.Seq {
				snap = pending
			}
		default:
		}
	}
}

// readLoop reads renderer events until the connection closes. It blocks;
// handleWS runs it on the request goroutine.
func (c *client) readLoop() {
	defer c.close()

	c.conn.SetReadLimit(c.config.MaxMessageSize)

	for {
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}

		var ev rendererEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.logger.Error("event decode error", "error", err)
			continue
		}

		c.dispatch(ev)
	}
}

// dispatch routes one renderer event into the manager. Every operation
// targets an id, and operations on missing ids are no-ops, so a stale event
// from the renderer (e.g. a gesture on a toast the timer already removed)
// is harmless.
func (c *client) dispatch(ev rendererEvent) {
	switch ev.Op {
	case opHide:
		c.manager.Hide(ev.ID)

	case opAction:
		c.manager.PressAction(ev.ID)

	case opGesture:
		tracker := c.manager.Tracker(ev.ID, ev.Width)
		committed := tracker.Release(ev.DX)
		c.logger.Debug("gesture release",
			"id", ev.ID,
			"dx", ev.DX,
			"width", ev.Width,
			"committed", committed)

	default:
		c.logger.Warn("unknown renderer op", "op", ev.Op)
	}
}

// writeLoop pushes snapshots and heartbeat pings until the client is done.
// It never sends a snapshot older than one it has already sent.
func (c *client) writeLoop() {
	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	var lastSent uint64
	for {
		select {
		case snap := <-c.snapshots:
			if snap.Seq < lastSent {
				continue
			}
			if err := c.writeSnapshot(snap); err != nil {
				c.logger.Error("write error", "error", err)
				c.close()
				return
			}
			lastSent = snap.Seq

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *client) writeSnapshot(snap toast.Snapshot) error {
	payload, err := json.Marshal(toWireSnapshot(snap))
	if err != nil {
		return err
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
