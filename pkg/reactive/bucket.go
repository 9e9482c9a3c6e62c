package reactive

// depSet is the set of effects subscribed to one (target, key) pair.
type depSet struct {
	// owner and key locate the set inside the bucket so it can be pruned
	// once it becomes empty.
	owner *targetDeps
	key   Key

	effects map[*Effect]struct{}
}

// add inserts e and reports whether it was not already a member.
func (d *depSet) add(e *Effect) bool {
	if _, ok := d.effects[e]; ok {
		return false
	}
	d.effects[e] = struct{}{}
	return true
}

// remove deletes e and prunes the set from the bucket when it becomes empty.
func (d *depSet) remove(e *Effect) {
	delete(d.effects, e)
	if len(d.effects) == 0 && d.owner != nil {
		d.owner.drop(d)
	}
}

// snapshot copies the current members into a fresh slice.
// Running an effect removes it from and re-adds it to live sets, so
// dispatch must never iterate the set itself.
func (d *depSet) snapshot() []*Effect {
	out := make([]*Effect, 0, len(d.effects))
	for e := range d.effects {
		out = append(out, e)
	}
	return out
}

// targetDeps maps the keys of one target to their dependency sets.
type targetDeps struct {
	bucket *Bucket
	id     any
	keys   map[Key]*depSet
}

// drop removes d if it is still the live set for its key.
func (t *targetDeps) drop(d *depSet) {
	if t.keys[d.key] != d {
		return
	}
	delete(t.keys, d.key)
	d.owner = nil
	if len(t.keys) == 0 && t.bucket != nil {
		t.bucket.drop(t)
	}
}

// Bucket is the dependency registry: target identity → key → effects.
//
// The bucket never needs a target to stay resident: entries are keyed by
// identity and removed either when their last subscriber leaves or when the
// target's owner calls Forget.
type Bucket struct {
	targets map[any]*targetDeps
}

// NewBucket returns an empty Bucket.
func NewBucket() *Bucket {
	return &Bucket{targets: make(map[any]*targetDeps)}
}

// lookup returns the set for (id, key), or nil.
func (b *Bucket) lookup(id any, key Key) *depSet {
	t := b.targets[id]
	if t == nil {
		return nil
	}
	return t.keys[key]
}

// ensure returns the set for (id, key), creating it and its target entry
// lazily.
func (b *Bucket) ensure(id any, key Key) *depSet {
	t := b.targets[id]
	if t == nil {
		t = &targetDeps{bucket: b, id: id, keys: make(map[Key]*depSet)}
		b.targets[id] = t
	}
	d := t.keys[key]
	if d == nil {
		d = &depSet{owner: t, key: key, effects: make(map[*Effect]struct{})}
		t.keys[key] = d
	}
	return d
}

func (b *Bucket) drop(t *targetDeps) {
	if b.targets[t.id] == t {
		delete(b.targets, t.id)
	}
	t.bucket = nil
}

// forget detaches every set belonging to id. Effects that still reference
// a detached set keep working: cleanup simply removes them from it.
func (b *Bucket) forget(id any) {
	t := b.targets[id]
	if t == nil {
		return
	}
	for _, d := range t.keys {
		d.owner = nil
	}
	delete(b.targets, id)
	t.bucket = nil
}

// Targets returns the number of targets with at least one subscriber.
func (b *Bucket) Targets() int {
	return len(b.targets)
}

// subscribers returns the number of effects subscribed to (id, key).
func (b *Bucket) subscribers(id any, key Key) int {
	d := b.lookup(id, key)
	if d == nil {
		return 0
	}
	return len(d.effects)
}

// keys returns the number of tracked keys for id.
func (b *Bucket) keys(id any) int {
	t := b.targets[id]
	if t == nil {
		return 0
	}
	return len(t.keys)
}
