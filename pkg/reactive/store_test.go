package reactive

import (
	"errors"
	"testing"
)

type point struct {
	X, Y  int
	Label string
	note  string
}

// mapTarget has a map identity, which cannot key the bucket.
type mapTarget map[Key]any

func (m mapTarget) Field(k Key) (any, bool) {
	v, ok := m[k]
	return v, ok
}

func (m mapTarget) SetField(k Key, v any) { m[k] = v }

func TestKeys(t *testing.T) {
	if Name("a") != Name("a") {
		t.Error("name keys with equal names should be equal")
	}
	s1, s2 := NewSymbol("s"), NewSymbol("s")
	if s1 == s2 {
		t.Error("symbols should be distinct")
	}
	if s1 == Name("s") {
		t.Error("symbol should differ from name key with the same text")
	}
	if got := s1.String(); got != "Symbol(s)" {
		t.Errorf("String() = %q, want %q", got, "Symbol(s)")
	}
	if !s1.IsSymbol() || Name("s").IsSymbol() {
		t.Error("IsSymbol mismatch")
	}
	if !(Key{}).IsZero() || Name("a").IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestSymbolKeysTrackSeparately(t *testing.T) {
	rt := New()
	s1, s2 := NewSymbol("id"), NewSymbol("id")
	state := rt.Observe(map[Key]any{s1: 1, s2: 2})

	runs := 0
	rt.Effect(func() {
		_ = state.Get(s1)
		runs++
	})

	state.Set(s2, 3)
	if runs != 1 {
		t.Errorf("write to other symbol re-ran effect: runs=%d", runs)
	}
	state.Set(s1, 3)
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestAbsentKeyIsTracked(t *testing.T) {
	rt := New()
	state := rt.Observe(nil)

	var seen []any
	rt.Effect(func() {
		v, ok := state.Lookup(keyA)
		if ok {
			seen = append(seen, v)
		} else {
			seen = append(seen, "missing")
		}
	})

	state.Set(keyA, 1)

	if len(seen) != 2 || seen[0] != "missing" || seen[1] != 1 {
		t.Errorf("seen = %v, want [missing 1]", seen)
	}
}

func TestPeekDoesNotTrack(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1})

	e := rt.Effect(func() {
		_ = state.Peek(keyA)
	})

	if e.Deps() != 0 {
		t.Errorf("Deps() = %d, want 0", e.Deps())
	}
}

func TestUntrackedReadAndWrite(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1})

	if got := state.Get(keyA); got != 1 {
		t.Errorf("Get() = %v, want 1", got)
	}
	if err := state.Set(keyA, 2); err != nil {
		t.Errorf("Set() = %v, want nil", err)
	}
	if rt.TrackedTargets() != 0 {
		t.Errorf("TrackedTargets() = %d, want 0", rt.TrackedTargets())
	}
}

func TestValue(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1, keyB: "two"})

	if v, ok := Value[int](state, keyA); !ok || v != 1 {
		t.Errorf("Value[int](a) = %v, %v", v, ok)
	}
	if _, ok := Value[int](state, keyB); ok {
		t.Error("Value[int](b) should report false for a string")
	}
	if _, ok := Value[int](state, keyC); ok {
		t.Error("Value[int](c) should report false for an absent key")
	}
}

func TestStructTarget(t *testing.T) {
	rt := New()
	p := &point{X: 1, Y: 2}

	t1, err := Struct(p)
	if err != nil {
		t.Fatalf("Struct: %v", err)
	}
	t2, _ := Struct(p)
	v1, _ := rt.Wrap(t1)
	v2, _ := rt.Wrap(t2)

	var xs []any
	rt.Effect(func() {
		xs = append(xs, v1.Get(Name("X")))
	})

	if err := v2.Set(Name("X"), 5); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if p.X != 5 {
		t.Errorf("p.X = %d, want 5", p.X)
	}
	if len(xs) != 2 || xs[1] != 5 {
		t.Errorf("xs = %v, want [1 5]", xs)
	}

	if _, ok := t1.Field(Name("note")); ok {
		t.Error("unexported field should not be visible")
	}
	if _, ok := t1.Field(NewSymbol("X")); ok {
		t.Error("symbol key should not match a struct field")
	}
}

func TestStructTargetErrors(t *testing.T) {
	if _, err := Struct(point{}); err == nil {
		t.Error("Struct(non-pointer) should fail")
	}
	if _, err := Struct((*point)(nil)); err == nil {
		t.Error("Struct(nil) should fail")
	}

	tgt, _ := Struct(&point{})
	defer func() {
		if recover() == nil {
			t.Error("assigning a string to an int field should panic")
		}
	}()
	tgt.SetField(Name("X"), "nope")
}

func TestWrapUncomparable(t *testing.T) {
	rt := New()
	if _, err := rt.Wrap(mapTarget{}); !errors.Is(err, ErrUncomparableTarget) {
		t.Errorf("Wrap(map) = %v, want ErrUncomparableTarget", err)
	}
	if _, err := rt.Wrap(nil); !errors.Is(err, ErrUncomparableTarget) {
		t.Errorf("Wrap(nil) = %v, want ErrUncomparableTarget", err)
	}
	// The static type is comparable; the value in the interface field is not.
	if _, err := rt.Wrap(taggedTarget{tag: []int{1}}); !errors.Is(err, ErrUncomparableTarget) {
		t.Errorf("Wrap(struct holding a slice) = %v, want ErrUncomparableTarget", err)
	}
	if _, err := rt.Wrap(taggedTarget{tag: "ok"}); err != nil {
		t.Errorf("Wrap(struct holding a string) = %v", err)
	}
}

type taggedTarget struct{ tag any }

func (taggedTarget) Field(Key) (any, bool) { return nil, false }
func (taggedTarget) SetField(Key, any)     {}

func TestDistinctTargetsWithEqualContent(t *testing.T) {
	rt := New()
	s1 := rt.Observe(map[Key]any{keyA: 1})
	s2 := rt.Observe(map[Key]any{keyA: 1})

	runs := 0
	rt.Effect(func() {
		_ = s1.Get(keyA)
		runs++
	})

	s2.Set(keyA, 2)
	if runs != 1 {
		t.Errorf("write to another target re-ran effect: runs=%d", runs)
	}
}

func TestReleaseDropsDependencies(t *testing.T) {
	rt := New()
	state := rt.Observe(map[Key]any{keyA: 1})

	runs := 0
	e := rt.Effect(func() {
		_ = state.Get(keyA)
		runs++
	})

	state.Release()
	if rt.TrackedTargets() != 0 {
		t.Fatalf("TrackedTargets() = %d, want 0", rt.TrackedTargets())
	}

	state.Set(keyA, 2)
	if runs != 1 {
		t.Errorf("released target still triggers: runs=%d", runs)
	}

	// Reading again subscribes again.
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	state.Set(keyA, 3)
	if runs != 3 {
		t.Errorf("runs = %d, want 3", runs)
	}
}

func TestRecordKeys(t *testing.T) {
	r := NewRecord(map[Key]any{Name("b"): 1, Name("a"): 2})
	keys := r.Keys()
	if len(keys) != 2 || keys[0] != Name("a") || keys[1] != Name("b") {
		t.Errorf("Keys() = %v", keys)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	var zero Record
	zero.SetField(keyA, 1)
	if v, ok := zero.Field(keyA); !ok || v != 1 {
		t.Errorf("zero Record Field(a) = %v, %v", v, ok)
	}
}
