// Package reactive provides a fine-grained dependency-tracking engine.
//
// Effects are computations whose dependencies are discovered while they run.
// Every tracked read of a View registers the running effect against the
// (target, key) pair that was read, and every write to that pair re-runs the
// registered effects, which then track their dependencies again from scratch.
//
// # Core Types
//
// Runtime owns the active-effect stack and the dependency bucket:
//
//	rt := reactive.New()
//
// View wraps a Target and makes its fields observable:
//
//	state := rt.Observe(map[reactive.Key]any{
//	    reactive.Name("a"): 1,
//	    reactive.Name("b"): 2,
//	})
//
// Effect runs immediately and re-runs when something it read is written:
//
//	rt.Effect(func() {
//	    fmt.Println(state.Get(reactive.Name("a")).(int) + state.Get(reactive.Name("b")).(int))
//	})
//	state.Set(reactive.Name("a"), 5) // prints 7
//
// # Branch Switching
//
// An effect is removed from every dependency set before it re-runs, so its
// dependencies always reflect the reads of its most recent run only. An effect
// reading flag ? a : b stops depending on a once flag turns false.
//
// # Lifetimes
//
// Go has no ephemeron maps, so the bucket cannot drop a target on its own.
// Owners of a target call View.Release (or Runtime.Forget) when the target is
// discarded. Effects live until Dispose is called; effects created inside
// another effect are owned by it and are disposed when it re-runs or is
// disposed.
//
// # Thread Safety
//
// A Runtime is confined to a single goroutine. Nothing is locked. Use
// WithGoroutineCheck to turn accidental cross-goroutine use into a panic.
package reactive
