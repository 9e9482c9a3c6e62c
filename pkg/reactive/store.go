package reactive

import "context"

// View is the observable accessor over a Target. Every read through Get or
// Lookup is tracked against the active effect, and every write through Set
// re-runs the effects that read the written key.
//
// Accessing the Target directly bypasses tracking.
type View struct {
	rt     *Runtime
	target Target
	id     any
}

// Get returns the value stored under key, or nil when it is absent.
func (v *View) Get(key Key) any {
	val, _ := v.Lookup(key)
	return val
}

// Lookup returns the value stored under key and whether it is present.
// Reads of absent keys are tracked too, so an effect that found a key
// missing re-runs once it is set.
func (v *View) Lookup(key Key) (any, bool) {
	v.rt.checkGoroutine()
	val, ok := v.target.Field(key)
	v.rt.track(v.id, key)
	return val, ok
}

// Peek returns the value stored under key without tracking the read.
func (v *View) Peek(key Key) any {
	val, _ := v.target.Field(key)
	return val
}

// Set stores value under key and synchronously re-runs the subscribed
// effects. Writing a value equal to the current one still re-runs them.
// The returned error is the first effect failure, if any.
func (v *View) Set(key Key, value any) error {
	v.rt.checkGoroutine()
	v.target.SetField(key, value)
	return v.rt.trigger(v.id, key)
}

// SetContext is Set with ctx parenting the trigger span, so a write made
// while serving a request is traced under that request.
func (v *View) SetContext(ctx context.Context, key Key, value any) error {
	v.rt.checkGoroutine()
	rt := v.rt
	parent := rt.ctx
	if ctx != nil {
		rt.ctx = ctx
	}
	defer func() { rt.ctx = parent }()
	return v.Set(key, value)
}

// Target returns the wrapped target.
func (v *View) Target() Target {
	return v.target
}

// Runtime returns the runtime the view tracks into.
func (v *View) Runtime() *Runtime {
	return v.rt
}

// Release drops every dependency recorded for the view's target.
// See Runtime.Forget.
func (v *View) Release() {
	v.rt.checkGoroutine()
	v.rt.bucket.forget(v.id)
}

// Value is a typed, tracked read. It reports false when the key is absent
// or holds a value of another type.
func Value[T any](v *View, key Key) (T, bool) {
	raw, ok := v.Lookup(key)
	if !ok {
		var zero T
		return zero, false
	}
	val, ok := raw.(T)
	return val, ok
}
