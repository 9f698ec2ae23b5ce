package middleware

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/toastkit/toastkit/pkg/toast"
)

// Default tracer name for toastkit applications.
const defaultTracerName = "toastkit"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "toastkit").
	TracerName string

	// IncludeMessage includes the toast message text in span attributes.
	// Messages may contain user data - disabled by default.
	IncludeMessage bool

	// Filter determines which toasts to trace.
	// Return true to trace the toast, false to skip.
	// If nil, all toasts are traced.
	Filter func(rec toast.Record) bool

	// AttributeExtractor extracts custom attributes from the record.
	// Called once per traced toast, at show time.
	AttributeExtractor func(rec toast.Record) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeMessage enables including the message text in spans.
func WithIncludeMessage(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeMessage = include
	}
}

// WithToastFilter sets a filter function for toasts.
func WithToastFilter(filter func(rec toast.Record) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(rec toast.Record) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:     defaultTracerName,
		IncludeMessage: false,
		Filter:         nil,
	}
}

// OTelObserver traces toast lifetimes. One span is opened per shown toast
// and ended when the toast is dismissed, with the removal reason recorded
// as an attribute. It implements toast.Observer.
type OTelObserver struct {
	config OTelConfig

	mu    sync.Mutex
	spans map[string]trace.Span
}

// OpenTelemetry creates an observer that traces every toast lifetime.
//
// Each span carries:
//   - toast.id, toast.type, toast.position, toast.persistent at show time
//   - toast.reason at dismissal
//   - toast.message when WithIncludeMessage(true) is set
//
// The tracer is resolved from the global tracer provider, so configure the
// provider before toasts are shown.
func OpenTelemetry(opts ...OTelOption) *OTelObserver {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return &OTelObserver{
		config: config,
		spans:  make(map[string]trace.Span),
	}
}

// ToastShown implements toast.Observer.
func (o *OTelObserver) ToastShown(rec toast.Record) {
	if o.config.Filter != nil && !o.config.Filter(rec) {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("toast.id", rec.ID),
		attribute.String("toast.type", string(rec.Type)),
		attribute.String("toast.position", string(rec.Position)),
		attribute.Bool("toast.persistent", rec.Persistent()),
	}
	if o.config.IncludeMessage {
		attrs = append(attrs, attribute.String("toast.message", rec.Message))
	}
	if o.config.AttributeExtractor != nil {
		attrs = append(attrs, o.config.AttributeExtractor(rec)...)
	}

	_, span := o.config.tracer.Start(context.Background(), "toast",
		trace.WithAttributes(attrs...))

	o.mu.Lock()
	o.spans[rec.ID] = span
	o.mu.Unlock()
}

// ToastDismissed implements toast.Observer.
func (o *OTelObserver) ToastDismissed(rec toast.Record, reason toast.Reason) {
	o.mu.Lock()
	span, ok := o.spans[rec.ID]
	if ok {
		delete(o.spans, rec.ID)
	}
	o.mu.Unlock()

	if !ok {
		return
	}

	span.SetAttributes(attribute.String("toast.reason", string(reason)))
	span.End()
}
