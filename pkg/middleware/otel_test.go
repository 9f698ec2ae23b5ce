package middleware

import (
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/toastkit/toastkit/pkg/toast"
)

func TestOTelObserver_SpanPerToastLifetime(t *testing.T) {
	obs := OpenTelemetry()

	rec := testRecord("toast-1")
	obs.ToastShown(rec)

	obs.mu.Lock()
	if _, ok := obs.spans[rec.ID]; !ok {
		t.Error("expected an open span for the shown toast")
	}
	obs.mu.Unlock()

	obs.ToastDismissed(rec, toast.ReasonHide)

	obs.mu.Lock()
	if len(obs.spans) != 0 {
		t.Errorf("expected no open spans after dismissal, got %d", len(obs.spans))
	}
	obs.mu.Unlock()
}

func TestOTelObserver_DismissWithoutShowIsNoOp(t *testing.T) {
	obs := OpenTelemetry()

	// Never shown through this observer; must not panic.
	obs.ToastDismissed(testRecord("toast-9"), toast.ReasonTimeout)
}

func TestOTelObserver_FilterSkipsToasts(t *testing.T) {
	obs := OpenTelemetry(WithToastFilter(func(rec toast.Record) bool {
		return rec.Type == toast.TypeError
	}))

	info := testRecord("toast-1")
	info.Type = toast.TypeInfo
	obs.ToastShown(info)

	obs.mu.Lock()
	if len(obs.spans) != 0 {
		t.Errorf("expected filtered toast to open no span, got %d", len(obs.spans))
	}
	obs.mu.Unlock()

	errRec := testRecord("toast-2")
	errRec.Type = toast.TypeError
	obs.ToastShown(errRec)

	obs.mu.Lock()
	if len(obs.spans) != 1 {
		t.Errorf("expected matching toast to open a span, got %d", len(obs.spans))
	}
	obs.mu.Unlock()

	obs.ToastDismissed(errRec, toast.ReasonHide)
}

func TestOTelObserver_Options(t *testing.T) {
	config := defaultOTelConfig()
	for _, opt := range []OTelOption{
		WithTracerName("custom"),
		WithIncludeMessage(true),
		WithAttributeExtractor(func(rec toast.Record) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("screen", "settings")}
		}),
	} {
		opt(&config)
	}

	if config.TracerName != "custom" {
		t.Errorf("expected tracer name custom, got %q", config.TracerName)
	}
	if !config.IncludeMessage {
		t.Error("expected IncludeMessage to be enabled")
	}
	if config.AttributeExtractor == nil {
		t.Error("expected attribute extractor to be set")
	}
}

func TestOTelObserver_WiredIntoManager(t *testing.T) {
	obs := OpenTelemetry()
	m := toast.NewManager(&toast.ManagerConfig{
		Observers: []toast.Observer{obs},
	})
	defer m.Close()

	id := m.Show("traced", toast.WithDuration(10*time.Millisecond))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		obs.mu.Lock()
		open := len(obs.spans)
		obs.mu.Unlock()
		if open == 0 && !m.Visible(id) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected span to close after timer expiry")
}
