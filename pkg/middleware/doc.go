// Package middleware provides observability hooks for the toast manager.
//
// Observers implement the toast.Observer interface and are registered on a
// manager at construction time:
//
//	m := toast.NewManager(&toast.ManagerConfig{
//	    Observers: []toast.Observer{
//	        middleware.Prometheus(middleware.WithNamespace("myapp")),
//	        middleware.OpenTelemetry(),
//	    },
//	})
//
// The Prometheus observer exports counters, a gauge, and a histogram for
// toast lifecycle events. Expose them with:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// The OpenTelemetry observer opens a span per toast lifetime, from Show to
// dismissal, with severity, position, and dismissal reason as attributes.
package middleware
