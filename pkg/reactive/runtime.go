package reactive

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// defaultTracerName is the instrumentation name used when no tracer is given.
const defaultTracerName = "reactor"

// Runtime holds the reactive state for one single-threaded host: the
// dependency bucket and the active-effect stack.
//
// Several runtimes may coexist; effects and views of one runtime never
// observe another.
type Runtime struct {
	bucket *Bucket

	// active is the effect whose reads are currently tracked.
	// It is always the top of stack, or nil when the stack is empty.
	active *Effect
	stack  []*Effect

	lastID uint64

	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	// ctx parents trigger spans. While a trigger dispatches it holds that
	// trigger's span context so nested triggers become child spans.
	ctx context.Context

	confined  bool
	goroutine uint64
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		bucket: NewBucket(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.tracer == nil {
		rt.tracer = otel.Tracer(defaultTracerName)
	}
	if rt.confined {
		rt.goroutine = goroutineID()
	}
	return rt
}

// Effect registers fn as a new effect and runs it once.
// A panic in fn propagates to the caller after the active-effect stack has
// been restored.
func (rt *Runtime) Effect(fn func()) *Effect {
	e, _ := rt.register(func() error {
		fn()
		return nil
	})
	return e
}

// EffectE registers fn as a new effect and runs it once. The returned
// effect is live even when the first run fails; the error is an
// *EffectError wrapping what fn returned.
func (rt *Runtime) EffectE(fn func() error) (*Effect, error) {
	return rt.register(fn)
}

func (rt *Runtime) register(fn func() error) (*Effect, error) {
	rt.checkGoroutine()

	rt.lastID++
	e := &Effect{
		id: rt.lastID,
		rt: rt,
		fn: fn,
	}
	if parent := rt.active; parent != nil && !parent.disposed {
		e.parent = parent
		parent.children = append(parent.children, e)
	}
	rt.metrics.effectCreated()
	rt.logger.Debug("reactive: effect registered", "effect", e.id, "depth", len(rt.stack))

	return e, e.run()
}

// Active returns the effect whose reads are currently tracked, or nil.
func (rt *Runtime) Active() *Effect {
	return rt.active
}

// Depth returns the number of effects on the active-effect stack.
func (rt *Runtime) Depth() int {
	return len(rt.stack)
}

// Wrap returns a View over t. Views over the same target (or over adapters
// sharing an identity) share dependencies.
func (rt *Runtime) Wrap(t Target) (*View, error) {
	if t == nil {
		return nil, ErrUncomparableTarget
	}
	id := identityOf(t)
	if !comparableIdentity(id) {
		return nil, ErrUncomparableTarget
	}
	return &View{rt: rt, target: t, id: id}, nil
}

// Observe wraps a new Record holding a copy of fields.
func (rt *Runtime) Observe(fields map[Key]any) *View {
	r := NewRecord(fields)
	return &View{rt: rt, target: r, id: r}
}

// Forget removes every dependency recorded for t. Owners of a target call
// it when the target is discarded; effects that read t stop being
// re-run by writes to it until they read it again.
func (rt *Runtime) Forget(t Target) {
	rt.checkGoroutine()
	if t == nil {
		return
	}
	id := identityOf(t)
	if !comparableIdentity(id) {
		return
	}
	keys := rt.bucket.keys(id)
	rt.bucket.forget(id)
	rt.logger.Debug("reactive: target forgotten", "keys", keys)
}

// Subscribers returns the number of effects currently subscribed to
// (t, key).
func (rt *Runtime) Subscribers(t Target, key Key) int {
	id := identityOf(t)
	if !comparableIdentity(id) {
		return 0
	}
	return rt.bucket.subscribers(id, key)
}

// TrackedTargets returns the number of targets that currently have at
// least one subscriber.
func (rt *Runtime) TrackedTargets() int {
	return rt.bucket.Targets()
}

// push makes e the active effect.
func (rt *Runtime) push(e *Effect) {
	rt.stack = append(rt.stack, e)
	rt.active = e
}

// pop removes e from the top of the stack and restores the effect below it.
func (rt *Runtime) pop(e *Effect) {
	n := len(rt.stack)
	if n == 0 || rt.stack[n-1] != e {
		panic("reactive: active-effect stack out of order")
	}
	rt.stack[n-1] = nil
	rt.stack = rt.stack[:n-1]
	if n > 1 {
		rt.active = rt.stack[n-2]
	} else {
		rt.active = nil
	}
}

// track records that the active effect read (id, key).
func (rt *Runtime) track(id any, key Key) {
	e := rt.active
	if e == nil || e.disposed {
		return
	}
	d := rt.bucket.ensure(id, key)
	if d.add(e) {
		e.deps = append(e.deps, d)
		rt.metrics.tracked()
	}
}
