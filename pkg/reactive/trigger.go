package reactive

import (
	"cmp"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// trigger re-runs every effect subscribed to (id, key).
//
// Effects run from a snapshot ordered by registration. An effect that is
// disposed before its turn is skipped, and so is an effect that is already
// running: the write came from its own body (or from something it called),
// and re-entering it would loop forever.
//
// The first failing effect stops the dispatch; its error is returned.
func (rt *Runtime) trigger(id any, key Key) error {
	d := rt.bucket.lookup(id, key)
	if d == nil {
		rt.metrics.triggered(false, 0)
		return nil
	}

	effects := d.snapshot()
	slices.SortFunc(effects, func(a, b *Effect) int {
		return cmp.Compare(a.id, b.id)
	})
	rt.metrics.triggered(true, len(effects))

	ctx, span := rt.tracer.Start(rt.ctx, "reactive.trigger",
		trace.WithAttributes(
			attribute.String("reactive.key", key.String()),
			attribute.Int("reactive.subscribers", len(effects)),
		),
	)
	parent := rt.ctx
	rt.ctx = ctx
	defer func() {
		rt.ctx = parent
		span.End()
	}()

	rt.logger.Debug("reactive: trigger", "key", key.String(), "subscribers", len(effects))

	for _, e := range effects {
		if e.disposed {
			continue
		}
		if e.running {
			rt.metrics.reentrySkipped()
			rt.logger.Debug("reactive: skipped running effect", "effect", e.id, "key", key.String())
			continue
		}
		if err := e.run(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return nil
}
