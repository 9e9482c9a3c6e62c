package reactive

import (
	"errors"
	"testing"
)

var (
	keyA    = Name("a")
	keyB    = Name("b")
	keyC    = Name("c")
	keyX    = Name("x")
	keyFlag = Name("flag")
	keyCnt  = Name("count")
)

func TestEffectRunsOnRegister(t *testing.T) {
	rt := New()

	ran := 0
	e := rt.Effect(func() { ran++ })

	if ran != 1 {
		t.Errorf("expected 1 run on register, got %d", ran)
	}
	if e.Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", e.Runs())
	}
	if rt.Active() != nil {
		t.Error("active effect should be restored to nil")
	}
}

func TestEffectReRunsOncePerSet(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1})

	runs := 0
	rt.Effect(func() {
		_ = state.Get(keyA)
		runs++
	})

	for i := 0; i < 3; i++ {
		if err := state.Set(keyA, i+10); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	if runs != 4 {
		t.Errorf("expected 4 runs (1 initial + 3 sets), got %d", runs)
	}
}

func TestEffectIgnoresUnreadKeys(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1, keyB: 2})

	runs := 0
	rt.Effect(func() {
		_ = state.Get(keyA)
		runs++
	})

	if err := state.Set(keyB, 3); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if runs != 1 {
		t.Errorf("writing an unread key should not re-run the effect, got %d runs", runs)
	}
}

func TestEffectBranchSwitching(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyFlag: true, keyA: "a", keyB: "b"})

	runs := 0
	var seen any
	e := rt.Effect(func() {
		runs++
		if state.Get(keyFlag).(bool) {
			seen = state.Get(keyA)
		} else {
			seen = state.Get(keyB)
		}
	})

	if seen != "a" || e.Deps() != 2 {
		t.Fatalf("initial run: seen=%v deps=%d, want a and 2", seen, e.Deps())
	}

	state.Set(keyFlag, false)
	if runs != 2 || seen != "b" {
		t.Fatalf("after flag=false: runs=%d seen=%v, want 2 and b", runs, seen)
	}

	state.Set(keyA, "a2")
	if runs != 2 {
		t.Errorf("stale dependency on a survived: runs=%d, want 2", runs)
	}
	if got := rt.Subscribers(state.Target(), keyA); got != 0 {
		t.Errorf("Subscribers(a) = %d, want 0", got)
	}

	state.Set(keyB, "b2")
	if runs != 3 || seen != "b2" {
		t.Errorf("after b=b2: runs=%d seen=%v, want 3 and b2", runs, seen)
	}
}

func TestEffectSelfWriteDoesNotLoop(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyCnt: 0})

	runs := 0
	rt.Effect(func() {
		runs++
		n := state.Get(keyCnt).(int)
		if err := state.Set(keyCnt, n+1); err != nil {
			t.Errorf("Set inside effect: %v", err)
		}
	})

	if runs != 1 {
		t.Fatalf("expected 1 run on register, got %d", runs)
	}
	if got := state.Peek(keyCnt); got != 1 {
		t.Fatalf("count = %v, want 1", got)
	}

	state.Set(keyCnt, 10)

	if runs != 2 {
		t.Errorf("expected exactly one re-run per external set, got %d runs", runs)
	}
	if got := state.Peek(keyCnt); got != 11 {
		t.Errorf("count = %v, want 11", got)
	}
}

func TestNestedEffectIsolation(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1, keyB: 2, keyX: 0})

	outerRuns, innerRuns := 0, 0
	var outer, inner *Effect
	outer = rt.Effect(func() {
		self := rt.Active()
		outerRuns++
		_ = state.Get(keyA)
		inner = rt.Effect(func() {
			innerRuns++
			_ = state.Get(keyX)
		})
		if rt.Active() != self {
			t.Error("active effect not restored to outer after nested register")
		}
		_ = state.Get(keyB)
	})

	if outer.Deps() != 2 {
		t.Errorf("outer Deps() = %d, want 2", outer.Deps())
	}
	if inner.Deps() != 1 {
		t.Errorf("inner Deps() = %d, want 1", inner.Deps())
	}

	state.Set(keyX, 1)
	if outerRuns != 1 || innerRuns != 2 {
		t.Errorf("after set x: outer=%d inner=%d, want 1 and 2", outerRuns, innerRuns)
	}

	state.Set(keyB, 3)
	if outerRuns != 2 {
		t.Errorf("outer dependency on b lost: outer=%d, want 2", outerRuns)
	}
}

func TestSetSameValueStillTriggers(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1})

	runs := 0
	rt.Effect(func() {
		_ = state.Get(keyA)
		runs++
	})

	state.Set(keyA, 1)

	if runs != 2 {
		t.Errorf("setting the same value should re-run, got %d runs", runs)
	}
}

func TestEndToEndSum(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1, keyB: 2})

	var logged []int
	rt.Effect(func() {
		a, _ := Value[int](state, keyA)
		b, _ := Value[int](state, keyB)
		logged = append(logged, a+b)
	})

	state.Set(keyA, 5)
	state.Set(keyC, 9)

	want := []int{3, 7}
	if len(logged) != len(want) {
		t.Fatalf("logged = %v, want %v", logged, want)
	}
	for i := range want {
		if logged[i] != want[i] {
			t.Errorf("logged[%d] = %d, want %d", i, logged[i], want[i])
		}
	}
}

func TestTriggerRunsInRegistrationOrder(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 0})

	var order []uint64
	var effects []*Effect
	for i := 0; i < 5; i++ {
		var e *Effect
		e = rt.Effect(func() {
			_ = state.Get(keyA)
			if e != nil {
				order = append(order, e.ID())
			}
		})
		effects = append(effects, e)
	}

	state.Set(keyA, 1)

	if len(order) != len(effects) {
		t.Fatalf("got %d runs, want %d", len(order), len(effects))
	}
	for i, e := range effects {
		if order[i] != e.ID() {
			t.Errorf("order[%d] = %d, want %d", i, order[i], e.ID())
		}
	}
}

func TestEffectPanicRestoresStack(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1})

	rt.Effect(func() {
		if state.Get(keyA).(int) == 2 {
			panic("boom")
		}
	})

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("recovered %v, want boom", r)
			}
		}()
		state.Set(keyA, 2)
	}()

	if rt.Active() != nil || rt.Depth() != 0 {
		t.Errorf("stack not restored after panic: active=%v depth=%d", rt.Active(), rt.Depth())
	}
}

func TestNestedPanicRestoresOuter(t *testing.T) {
	rt := New()

	rt.Effect(func() {
		self := rt.Active()
		func() {
			defer func() { _ = recover() }()
			rt.Effect(func() { panic("inner") })
		}()
		if rt.Active() != self {
			t.Error("active effect should be outer after inner panic")
		}
		if rt.Depth() != 1 {
			t.Errorf("Depth() = %d, want 1", rt.Depth())
		}
	})

	if rt.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", rt.Depth())
	}
}

func TestEffectErrorPropagatesToWriter(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1})
	errBad := errors.New("bad value")

	e, err := rt.EffectE(func() error {
		if state.Get(keyA).(int) < 0 {
			return errBad
		}
		return nil
	})
	if err != nil {
		t.Fatalf("EffectE: %v", err)
	}

	err = state.Set(keyA, -1)
	if !errors.Is(err, errBad) {
		t.Fatalf("Set error = %v, want %v", err, errBad)
	}
	var ee *EffectError
	if !errors.As(err, &ee) || ee.EffectID != e.ID() {
		t.Errorf("expected *EffectError for effect %d, got %v", e.ID(), err)
	}
	if rt.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", rt.Depth())
	}

	// The read happened before the failure, so the effect stays subscribed.
	if err := state.Set(keyA, 2); err != nil {
		t.Errorf("Set after recovery: %v", err)
	}
}

func TestFailureBeforeReadLeavesNoDeps(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1})
	fail := false

	runs := 0
	e, _ := rt.EffectE(func() error {
		runs++
		if fail {
			return errors.New("early")
		}
		_ = state.Get(keyA)
		return nil
	})

	fail = true
	if err := state.Set(keyA, 2); err == nil {
		t.Fatal("expected error from failing effect")
	}
	if e.Deps() != 0 {
		t.Errorf("Deps() = %d, want 0", e.Deps())
	}

	state.Set(keyA, 3)
	if runs != 2 {
		t.Errorf("effect with no deps re-ran: runs=%d, want 2", runs)
	}
}

func TestFirstFailureStopsDispatch(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 0})

	secondRuns := 0
	rt.EffectE(func() error {
		if state.Get(keyA).(int) > 0 {
			return errors.New("first failed")
		}
		return nil
	})
	rt.Effect(func() {
		_ = state.Get(keyA)
		secondRuns++
	})

	if err := state.Set(keyA, 1); err == nil {
		t.Fatal("expected error")
	}
	if secondRuns != 1 {
		t.Errorf("second effect ran after first failed: runs=%d, want 1", secondRuns)
	}
}

func TestDispose(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1})

	runs := 0
	e := rt.Effect(func() {
		_ = state.Get(keyA)
		runs++
	})

	e.Dispose()
	e.Dispose()

	state.Set(keyA, 2)
	if runs != 1 {
		t.Errorf("disposed effect re-ran: runs=%d", runs)
	}
	if !e.Disposed() {
		t.Error("Disposed() should be true")
	}
	if err := e.Run(); !errors.Is(err, ErrDisposed) {
		t.Errorf("Run() = %v, want ErrDisposed", err)
	}
	if rt.TrackedTargets() != 0 {
		t.Errorf("TrackedTargets() = %d, want 0", rt.TrackedTargets())
	}
}

func TestDisposeFromOwnBody(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1, keyB: 1})

	runs := 0
	var e *Effect
	e = rt.Effect(func() {
		runs++
		if state.Get(keyA).(int) == 2 && e != nil {
			e.Dispose()
		}
		_ = state.Get(keyB)
	})

	state.Set(keyA, 2)
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
	if e.Deps() != 0 {
		t.Errorf("Deps() = %d, want 0 after self-dispose", e.Deps())
	}

	state.Set(keyB, 2)
	if runs != 2 {
		t.Errorf("self-disposed effect re-ran: runs=%d", runs)
	}
}

func TestChildrenDisposedOnParentReRun(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 0, keyX: 0})

	innerRuns := 0
	var inners []*Effect
	parent := rt.Effect(func() {
		_ = state.Get(keyA)
		inners = append(inners, rt.Effect(func() {
			_ = state.Get(keyX)
			innerRuns++
		}))
	})

	state.Set(keyA, 1)
	if len(inners) != 2 {
		t.Fatalf("expected 2 inner effects, got %d", len(inners))
	}
	if !inners[0].Disposed() {
		t.Error("first inner effect should be disposed when the parent re-runs")
	}

	innerRuns = 0
	state.Set(keyX, 1)
	if innerRuns != 1 {
		t.Errorf("innerRuns = %d, want 1", innerRuns)
	}

	parent.Dispose()
	if !inners[1].Disposed() {
		t.Error("disposing the parent should dispose its children")
	}
}

func TestRunExplicitly(t *testing.T) {
	rt := New()

	runs := 0
	var e *Effect
	e = rt.Effect(func() {
		runs++
		if e == nil {
			return
		}
		if err := e.Run(); !errors.Is(err, ErrRunning) {
			t.Errorf("Run() inside body = %v, want ErrRunning", err)
		}
	})

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}
