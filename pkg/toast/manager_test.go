package toast_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/toastkit/toastkit/pkg/toast"
)

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestShowAssignsSequentialIDs(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	seen := make(map[string]bool)
	for i := 1; i <= 5; i++ {
		id := m.Show("msg", toast.Persistent())
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true

		expected := fmt.Sprintf("toast-%d", i)
		if id != expected {
			t.Errorf("expected id %q, got %q", expected, id)
		}
	}
}

func TestShowAppliesDefaults(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	id := m.Show("Saved", toast.WithType(toast.TypeSuccess))
	if id != "toast-1" {
		t.Errorf("expected id toast-1, got %q", id)
	}

	snap := m.Snapshot()
	if len(snap.Top) != 1 {
		t.Fatalf("expected 1 record in top partition, got %d", len(snap.Top))
	}
	if len(snap.Bottom) != 0 {
		t.Errorf("expected empty bottom partition, got %d records", len(snap.Bottom))
	}

	rec := snap.Top[0]
	if rec.Type != toast.TypeSuccess {
		t.Errorf("expected type success, got %q", rec.Type)
	}
	if rec.Duration != 4*time.Second {
		t.Errorf("expected duration 4s, got %v", rec.Duration)
	}
	if rec.Position != toast.PositionTop {
		t.Errorf("expected position top, got %q", rec.Position)
	}
}

func TestShowEmptyMessageIsRejected(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	id := m.Show("")
	if id != "" {
		t.Errorf("expected empty id for empty message, got %q", id)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty queue, got %d records", m.Len())
	}
}

func TestHideRemovesAndFiresOnDismissOnce(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	var dismissed int
	id := m.Show("bye", toast.Persistent(), toast.WithOnDismiss(func() {
		dismissed++
	}))

	m.Hide(id)

	if m.Visible(id) {
		t.Error("expected record to be removed")
	}
	if dismissed != 1 {
		t.Errorf("expected onDismiss to fire once, fired %d times", dismissed)
	}
}

func TestHideImmediatelyAfterShow(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	id := m.Show("gone already")
	m.Hide(id)

	if m.Len() != 0 {
		t.Errorf("expected empty queue, got %d records", m.Len())
	}
}

func TestHideUnknownIDIsNoOp(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	m.Show("keep", toast.Persistent())

	m.Hide("nonexistent")

	if m.Len() != 1 {
		t.Errorf("expected queue unchanged, got %d records", m.Len())
	}
}

func TestHideIsIdempotent(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	var dismissed int
	id := m.Show("once", toast.Persistent(), toast.WithOnDismiss(func() {
		dismissed++
	}))

	m.Hide(id)
	m.Hide(id)

	if dismissed != 1 {
		t.Errorf("expected onDismiss to fire once, fired %d times", dismissed)
	}
}

func TestHideAllEmptiesBothPartitions(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	var dismissed atomic.Int32
	onDismiss := toast.WithOnDismiss(func() {
		dismissed.Add(1)
	})

	for i := 0; i < 3; i++ {
		m.Show("top", toast.Persistent(), onDismiss)
	}
	for i := 0; i < 2; i++ {
		m.Show("bottom", toast.Persistent(), toast.WithPosition(toast.PositionBottom), onDismiss)
	}

	m.HideAll()

	if m.Len() != 0 {
		t.Errorf("expected empty queue, got %d records", m.Len())
	}
	if got := dismissed.Load(); got != 5 {
		t.Errorf("expected 5 onDismiss calls, got %d", got)
	}

	// A second sweep finds nothing to do.
	m.HideAll()
	if got := dismissed.Load(); got != 5 {
		t.Errorf("expected no further onDismiss calls, got %d", got)
	}
}

func TestPartitionIsolation(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	topIDs := []string{
		m.Show("t1", toast.Persistent()),
		m.Show("t2", toast.Persistent()),
	}
	bottomID := m.Show("b1", toast.Persistent(), toast.WithPosition(toast.PositionBottom))

	for _, id := range topIDs {
		m.Hide(id)
	}

	snap := m.Snapshot()
	if len(snap.Top) != 0 {
		t.Errorf("expected empty top partition, got %d records", len(snap.Top))
	}
	if len(snap.Bottom) != 1 || snap.Bottom[0].ID != bottomID {
		t.Errorf("expected bottom partition untouched, got %v", snap.Bottom)
	}
}

func TestInsertionOrderSurvivesSiblingRemoval(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	first := m.Show("first", toast.Persistent(), toast.WithPosition(toast.PositionBottom))
	second := m.Show("second", toast.Persistent(), toast.WithPosition(toast.PositionBottom))
	third := m.Show("third", toast.Persistent(), toast.WithPosition(toast.PositionBottom))

	snap := m.Snapshot()
	if len(snap.Bottom) != 3 {
		t.Fatalf("expected 3 records, got %d", len(snap.Bottom))
	}
	for i, want := range []string{first, second, third} {
		if snap.Bottom[i].ID != want {
			t.Errorf("position %d: expected %q, got %q", i, want, snap.Bottom[i].ID)
		}
	}

	m.Hide(first)

	snap = m.Snapshot()
	if len(snap.Bottom) != 2 {
		t.Fatalf("expected 2 records after hide, got %d", len(snap.Bottom))
	}
	if snap.Bottom[0].ID != second || snap.Bottom[1].ID != third {
		t.Errorf("expected order [%s %s], got [%s %s]",
			second, third, snap.Bottom[0].ID, snap.Bottom[1].ID)
	}
}

func TestTimerExpiryDismisses(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	var dismissed atomic.Int32
	id := m.Show("fading", toast.WithDuration(30*time.Millisecond), toast.WithOnDismiss(func() {
		dismissed.Add(1)
	}))

	waitFor(t, time.Second, func() bool { return !m.Visible(id) })

	if got := dismissed.Load(); got != 1 {
		t.Errorf("expected onDismiss to fire once, fired %d times", got)
	}
}

func TestPersistentToastNeverTimesOut(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	var dismissed int
	id := m.Show("sticky", toast.WithDuration(0), toast.WithOnDismiss(func() {
		dismissed++
	}))

	time.Sleep(150 * time.Millisecond)

	if !m.Visible(id) {
		t.Fatal("expected persistent toast to remain visible")
	}

	m.Hide(id)
	if m.Visible(id) {
		t.Error("expected explicit hide to remove persistent toast")
	}
	if dismissed != 1 {
		t.Errorf("expected onDismiss to fire once, fired %d times", dismissed)
	}
}

func TestNegativeDurationMeansPersistent(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	id := m.Show("clamped", toast.WithDuration(-1*time.Second))

	time.Sleep(50 * time.Millisecond)
	if !m.Visible(id) {
		t.Error("expected negative duration to be treated as persistent")
	}
}

func TestNearZeroDurationIsWellDefined(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	var dismissed atomic.Int32
	id := m.Show("blink", toast.WithDuration(time.Nanosecond), toast.WithOnDismiss(func() {
		dismissed.Add(1)
	}))
	if id == "" {
		t.Fatal("expected Show to return an id")
	}

	waitFor(t, time.Second, func() bool { return dismissed.Load() == 1 })
}

func TestTimerRacesExplicitHideExactlyOnce(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	var dismissed atomic.Int32
	const rounds = 50

	for i := 0; i < rounds; i++ {
		id := m.Show("contended", toast.WithDuration(time.Millisecond), toast.WithOnDismiss(func() {
			dismissed.Add(1)
		}))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Hide(id)
		}()
		go func() {
			defer wg.Done()
			m.Hide(id)
		}()
		wg.Wait()
	}

	waitFor(t, time.Second, func() bool { return m.Len() == 0 })

	if got := dismissed.Load(); got != rounds {
		t.Errorf("expected %d onDismiss calls, got %d", rounds, got)
	}
}

func TestCancelTimerLeavesToastVisible(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	id := m.Show("orphaned host", toast.WithDuration(30*time.Millisecond))
	m.CancelTimer(id)

	time.Sleep(150 * time.Millisecond)

	if !m.Visible(id) {
		t.Error("expected toast to remain visible after timer cancellation")
	}
}

func TestPressActionInvokesThenDismisses(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	var order []string
	id := m.Show("undo?",
		toast.Persistent(),
		toast.WithAction("Undo", func() { order = append(order, "press") }),
		toast.WithOnDismiss(func() { order = append(order, "dismiss") }),
	)

	m.PressAction(id)

	if m.Visible(id) {
		t.Error("expected toast to be dismissed after action press")
	}
	if len(order) != 2 || order[0] != "press" || order[1] != "dismiss" {
		t.Errorf("expected [press dismiss], got %v", order)
	}
}

func TestPressActionPanicStillDismisses(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	var dismissed int
	id := m.Show("explosive",
		toast.Persistent(),
		toast.WithAction("Boom", func() { panic("action failed") }),
		toast.WithOnDismiss(func() { dismissed++ }),
	)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected action panic to propagate")
			}
		}()
		m.PressAction(id)
	}()

	if m.Visible(id) {
		t.Error("expected toast to be dismissed despite action panic")
	}
	if dismissed != 1 {
		t.Errorf("expected onDismiss to fire once, fired %d times", dismissed)
	}
}

func TestPressActionUnknownIDIsNoOp(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	m.PressAction("nonexistent")
}

func TestSeverityHelpers(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	tests := []struct {
		name string
		show func(string, ...toast.Option) string
		want toast.Type
	}{
		{"success", m.Success, toast.TypeSuccess},
		{"error", m.Error, toast.TypeError},
		{"warning", m.Warning, toast.TypeWarning},
		{"info", m.Info, toast.TypeInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.show("hello", toast.Persistent())
			snap := m.Snapshot()
			var found *toast.Record
			for i := range snap.Top {
				if snap.Top[i].ID == id {
					found = &snap.Top[i]
				}
			}
			if found == nil {
				t.Fatalf("record %q not in queue", id)
			}
			if found.Type != tt.want {
				t.Errorf("expected type %q, got %q", tt.want, found.Type)
			}
		})
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	var mu sync.Mutex
	var snaps []toast.Snapshot
	cancel := m.Subscribe(func(snap toast.Snapshot) {
		mu.Lock()
		snaps = append(snaps, snap)
		mu.Unlock()
	})

	id := m.Show("observed", toast.Persistent())
	m.Hide(id)

	mu.Lock()
	got := len(snaps)
	last := snaps[len(snaps)-1]
	mu.Unlock()

	if got != 2 {
		t.Fatalf("expected 2 snapshots, got %d", got)
	}
	if last.Len() != 0 {
		t.Errorf("expected final snapshot empty, got %d records", last.Len())
	}

	cancel()
	m.Show("unobserved", toast.Persistent())

	mu.Lock()
	after := len(snaps)
	mu.Unlock()
	if after != got {
		t.Errorf("expected no snapshots after cancel, got %d more", after-got)
	}

	// Cancelling twice is safe.
	cancel()
}

func TestSnapshotSeqIncreasesPerMutation(t *testing.T) {
	m := toast.NewManager(nil)
	defer m.Close()

	id := m.Show("one", toast.Persistent())
	first := m.Snapshot().Seq

	m.Hide(id)
	second := m.Snapshot().Seq

	if second <= first {
		t.Errorf("expected seq to increase, got %d then %d", first, second)
	}

	// Reads alone do not advance the sequence.
	if again := m.Snapshot().Seq; again != second {
		t.Errorf("expected seq stable across reads, got %d then %d", second, again)
	}
}

func TestCloseDismissesAndRejectsShow(t *testing.T) {
	m := toast.NewManager(nil)

	var dismissed int
	m.Show("doomed", toast.Persistent(), toast.WithOnDismiss(func() { dismissed++ }))

	m.Close()

	if dismissed != 1 {
		t.Errorf("expected onDismiss to fire once on close, fired %d times", dismissed)
	}
	if id := m.Show("too late"); id != "" {
		t.Errorf("expected Show on closed manager to return empty id, got %q", id)
	}

	// Closing twice is safe.
	m.Close()
}

func TestShowRacingCloseNeverLeaksRecord(t *testing.T) {
	// A Show that is admitted must be swept by Close's HideAll; a Show that
	// loses the race must insert nothing. Either way onDismiss fires exactly
	// as many times as records were admitted.
	for i := 0; i < 200; i++ {
		m := toast.NewManager(nil)

		var dismissed atomic.Int32
		var id string
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			id = m.Show("racing",
				toast.Persistent(),
				toast.WithOnDismiss(func() { dismissed.Add(1) }))
		}()
		go func() {
			defer wg.Done()
			m.Close()
		}()
		wg.Wait()

		if id != "" {
			if got := dismissed.Load(); got != 1 {
				t.Fatalf("round %d: admitted record dismissed %d times, expected 1", i, got)
			}
			if m.Visible(id) {
				t.Fatalf("round %d: expected %q to be swept by Close", i, id)
			}
		} else if got := dismissed.Load(); got != 0 {
			t.Fatalf("round %d: rejected Show fired onDismiss %d times", i, got)
		}
	}
}

func TestConfigDefaultsApply(t *testing.T) {
	m := toast.NewManager(&toast.ManagerConfig{
		DefaultPosition: toast.PositionBottom,
		DefaultType:     toast.TypeWarning,
		DefaultDuration: 10 * time.Second,
	})
	defer m.Close()

	m.Show("configured")

	snap := m.Snapshot()
	if len(snap.Bottom) != 1 {
		t.Fatalf("expected record in bottom partition, got top=%d bottom=%d",
			len(snap.Top), len(snap.Bottom))
	}
	rec := snap.Bottom[0]
	if rec.Type != toast.TypeWarning {
		t.Errorf("expected type warning, got %q", rec.Type)
	}
	if rec.Duration != 10*time.Second {
		t.Errorf("expected duration 10s, got %v", rec.Duration)
	}
}

// recordingObserver counts lifecycle events for observer tests.
type recordingObserver struct {
	mu        sync.Mutex
	shown     []toast.Record
	dismissed map[string]toast.Reason
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{dismissed: make(map[string]toast.Reason)}
}

func (o *recordingObserver) ToastShown(rec toast.Record) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.shown = append(o.shown, rec)
}

func (o *recordingObserver) ToastDismissed(rec toast.Record, reason toast.Reason) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dismissed[rec.ID] = reason
}

func TestObserverSeesReasons(t *testing.T) {
	obs := newRecordingObserver()
	m := toast.NewManager(&toast.ManagerConfig{
		Observers: []toast.Observer{obs},
	})
	defer m.Close()

	hidden := m.Show("h", toast.Persistent())
	m.Hide(hidden)

	expired := m.Show("e", toast.WithDuration(10*time.Millisecond))
	waitFor(t, time.Second, func() bool { return !m.Visible(expired) })

	acted := m.Show("a", toast.Persistent(), toast.WithAction("Go", nil))
	m.PressAction(acted)

	swept := m.Show("s", toast.Persistent())
	m.HideAll()

	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.shown) != 4 {
		t.Fatalf("expected 4 shown events, got %d", len(obs.shown))
	}
	want := map[string]toast.Reason{
		hidden:  toast.ReasonHide,
		expired: toast.ReasonTimeout,
		acted:   toast.ReasonAction,
		swept:   toast.ReasonHideAll,
	}
	for id, reason := range want {
		if got := obs.dismissed[id]; got != reason {
			t.Errorf("toast %s: expected reason %q, got %q", id, reason, got)
		}
	}
}
