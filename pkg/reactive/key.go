package reactive

// Key names one field of a Target.
// Keys are comparable and may be used as map keys. Two keys made by Name with
// the same string are equal; a key made by NewSymbol is equal only to itself.
type Key struct {
	name string
	sym  *symbol
}

// symbol gives NewSymbol keys their identity. It must not be zero-sized,
// otherwise distinct allocations may share an address.
type symbol struct {
	desc string
}

// Name returns the string key for name.
func Name(name string) Key {
	return Key{name: name}
}

// NewSymbol returns a fresh key that is distinct from every other key,
// including other symbols with the same description.
func NewSymbol(desc string) Key {
	return Key{name: desc, sym: &symbol{desc: desc}}
}

// String returns the key name, or Symbol(desc) for symbol keys.
func (k Key) String() string {
	if k.sym != nil {
		return "Symbol(" + k.sym.desc + ")"
	}
	return k.name
}

// Name returns the name of a string key, or the description of a symbol key.
func (k Key) Name() string {
	return k.name
}

// IsSymbol reports whether k was made by NewSymbol.
func (k Key) IsSymbol() bool {
	return k.sym != nil
}

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool {
	return k.name == "" && k.sym == nil
}
