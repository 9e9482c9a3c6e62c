package reactive

import (
	"errors"
	"fmt"
)

// ErrUncomparableTarget is returned by Wrap when a target's identity cannot
// be used as a map key (for example a map or slice value rather than a
// pointer).
var ErrUncomparableTarget = errors.New("reactive: target identity is not comparable")

// ErrWrongGoroutine is the panic value used by runtimes created with
// WithGoroutineCheck when they are used from a goroutine other than the one
// that created them.
var ErrWrongGoroutine = errors.New("reactive: runtime used outside its owning goroutine")

// ErrDisposed is returned by Effect.Run on a disposed effect.
var ErrDisposed = errors.New("reactive: effect disposed")

// ErrRunning is returned by Effect.Run when the effect is already on the
// active-effect stack.
var ErrRunning = errors.New("reactive: effect already running")

// EffectError reports a failed effect body.
// It is returned by Effect.Run, Runtime.EffectE and View.Set.
type EffectError struct {
	EffectID uint64
	Err      error
}

// Error implements the error interface.
func (e *EffectError) Error() string {
	return fmt.Sprintf("reactive: effect %d failed: %v", e.EffectID, e.Err)
}

// Unwrap returns the error returned by the effect body.
func (e *EffectError) Unwrap() error {
	return e.Err
}
