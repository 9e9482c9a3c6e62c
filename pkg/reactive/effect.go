package reactive

import "errors"

// Effect is a re-runnable computation whose dependencies are tracked by its
// Runtime. Effects are created by Runtime.Effect and Runtime.EffectE, run
// once immediately, and re-run whenever a (target, key) pair they read
// during their last run is written.
type Effect struct {
	id uint64
	rt *Runtime

	// fn is the effect body.
	fn func() error

	// deps are the dependency sets this effect is a member of.
	// Every set in deps contains the effect and vice versa.
	deps []*depSet

	// parent is the effect that was running when this one was created.
	// children are the effects created during this effect's last run; they
	// are disposed before it runs again.
	parent   *Effect
	children []*Effect

	running  bool
	disposed bool
	runs     int
}

// ID returns the effect's identifier. IDs increase in registration order
// within a Runtime.
func (e *Effect) ID() uint64 {
	return e.id
}

// Deps returns the number of dependency sets the effect is subscribed to.
func (e *Effect) Deps() int {
	return len(e.deps)
}

// Runs returns how many times the effect body has been entered.
func (e *Effect) Runs() int {
	return e.runs
}

// Running reports whether the effect is on the active-effect stack.
func (e *Effect) Running() bool {
	return e.running
}

// Disposed reports whether Dispose has been called.
func (e *Effect) Disposed() bool {
	return e.disposed
}

// Run re-runs the effect as a write to one of its dependencies would.
func (e *Effect) Run() error {
	e.rt.checkGoroutine()
	if e.disposed {
		return ErrDisposed
	}
	if e.running {
		return ErrRunning
	}
	return e.run()
}

// Dispose permanently unsubscribes the effect and disposes the effects it
// created. It is idempotent and may be called from inside the effect body,
// in which case the rest of that run tracks nothing.
func (e *Effect) Dispose() {
	e.rt.checkGoroutine()
	if e.disposed {
		return
	}
	e.disposed = true
	e.disposeChildren()
	e.cleanup()
	if e.parent != nil {
		e.parent.removeChild(e)
		e.parent = nil
	}
	e.rt.metrics.effectDisposed()
	e.rt.logger.Debug("reactive: effect disposed", "effect", e.id)
}

// run executes the body with the effect on top of the stack.
//
// Order matters: owned children go first, then cleanup, then the push. The
// pop is deferred so the previous active effect is restored when the body
// returns an error or panics.
func (e *Effect) run() (err error) {
	if e.disposed {
		return nil
	}
	rt := e.rt

	e.disposeChildren()
	e.cleanup()

	rt.push(e)
	e.running = true
	e.runs++
	rt.metrics.effectRun()

	completed := false
	defer func() {
		e.running = false
		rt.pop(e)
		if !completed {
			rt.metrics.effectFailed()
			rt.logger.Debug("reactive: effect failed", "effect", e.id, "deps", len(e.deps))
		}
	}()

	if err = e.fn(); err != nil {
		var ee *EffectError
		if !errors.As(err, &ee) {
			err = &EffectError{EffectID: e.id, Err: err}
		}
		return err
	}
	completed = true
	rt.logger.Debug("reactive: effect ran", "effect", e.id, "deps", len(e.deps))
	return nil
}

// cleanup removes the effect from every dependency set it is a member of
// and empties its list.
func (e *Effect) cleanup() {
	for i, d := range e.deps {
		d.remove(e)
		e.deps[i] = nil
	}
	e.deps = e.deps[:0]
}

func (e *Effect) disposeChildren() {
	children := e.children
	e.children = nil
	for _, c := range children {
		c.parent = nil
		c.Dispose()
	}
}

func (e *Effect) removeChild(c *Effect) {
	for i, child := range e.children {
		if child == c {
			e.children = append(e.children[:i], e.children[i+1:]...)
			return
		}
	}
}
