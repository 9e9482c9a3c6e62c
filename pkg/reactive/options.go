package reactive

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for debug records about effect runs,
// triggers and disposals. The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors created by NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(rt *Runtime) {
		rt.metrics = m
	}
}

// WithTracer sets the tracer used to open one span per dispatched trigger.
// The default resolves a tracer from the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(rt *Runtime) {
		if tracer != nil {
			rt.tracer = tracer
		}
	}
}

// WithContext sets the parent context for trigger spans.
func WithContext(ctx context.Context) Option {
	return func(rt *Runtime) {
		if ctx != nil {
			rt.ctx = ctx
		}
	}
}

// WithGoroutineCheck confines the runtime to the goroutine that calls New.
// Every operation from any other goroutine panics with ErrWrongGoroutine.
// Finding the goroutine costs a stack read per operation, so this is meant
// for development and tests.
func WithGoroutineCheck() Option {
	return func(rt *Runtime) {
		rt.confined = true
	}
}
