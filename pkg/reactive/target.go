package reactive

import (
	"fmt"
	"reflect"
	"sort"
)

// Target is a mutable record whose fields can be observed through a View.
// Identity matters, not content: two targets holding equal fields are tracked
// separately.
type Target interface {
	// Field returns the value stored under key and whether it is present.
	Field(key Key) (any, bool)

	// SetField stores value under key.
	SetField(key Key, value any)
}

// Identifier is implemented by targets that are adapters over some other
// value. Identity returns the value the dependency bucket is keyed by, so
// that two adapters over the same underlying value share dependencies.
type Identifier interface {
	Identity() any
}

// identityOf returns the bucket key for t.
func identityOf(t Target) any {
	if id, ok := t.(Identifier); ok {
		return id.Identity()
	}
	return t
}

// comparableIdentity reports whether id can be used as a map key. Interface
// fields are checked by their dynamic values, so a struct holding a slice
// in an any field is rejected.
func comparableIdentity(id any) bool {
	if id == nil {
		return false
	}
	return reflect.ValueOf(id).Comparable()
}

// =============================================================================
// Record
// =============================================================================

// Record is a map-backed Target.
type Record struct {
	fields map[Key]any
}

// NewRecord returns a Record holding a copy of fields.
func NewRecord(fields map[Key]any) *Record {
	r := &Record{fields: make(map[Key]any, len(fields))}
	for k, v := range fields {
		r.fields[k] = v
	}
	return r
}

// Field implements Target.
func (r *Record) Field(key Key) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// SetField implements Target.
func (r *Record) SetField(key Key, value any) {
	if r.fields == nil {
		r.fields = make(map[Key]any)
	}
	r.fields[key] = value
}

// Keys returns the record's keys ordered by their string form.
func (r *Record) Keys() []Key {
	keys := make([]Key, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// Len returns the number of fields in the record.
func (r *Record) Len() int {
	return len(r.fields)
}

// =============================================================================
// Struct adapter
// =============================================================================

// structTarget exposes the exported fields of a struct through Target.
// Keys are matched against Go field names.
type structTarget struct {
	ptr  any
	elem reflect.Value
}

// Struct adapts a pointer to a struct as a Target without changing its
// layout. Only exported fields are visible. Reads of unknown fields report
// absence; writes to unknown fields or with values of the wrong type panic,
// as direct assignment would fail to compile.
func Struct(ptr any) (Target, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("reactive: Struct requires a non-nil pointer to a struct, got %T", ptr)
	}
	return &structTarget{ptr: ptr, elem: v.Elem()}, nil
}

// Identity returns the wrapped pointer.
func (s *structTarget) Identity() any {
	return s.ptr
}

func (s *structTarget) field(key Key) (reflect.Value, bool) {
	if key.IsSymbol() {
		return reflect.Value{}, false
	}
	sf, ok := s.elem.Type().FieldByName(key.Name())
	if !ok || !sf.IsExported() {
		return reflect.Value{}, false
	}
	return s.elem.FieldByIndex(sf.Index), true
}

// Field implements Target.
func (s *structTarget) Field(key Key) (any, bool) {
	f, ok := s.field(key)
	if !ok {
		return nil, false
	}
	return f.Interface(), true
}

// SetField implements Target.
func (s *structTarget) SetField(key Key, value any) {
	f, ok := s.field(key)
	if !ok {
		panic(fmt.Sprintf("reactive: %s has no exported field %s", s.elem.Type(), key))
	}
	if value == nil {
		f.Set(reflect.Zero(f.Type()))
		return
	}
	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(f.Type()) {
		panic(fmt.Sprintf("reactive: cannot assign %T to field %s of type %s", value, key, f.Type()))
	}
	f.Set(v)
}
