package markup

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <input>, etc.
	KindText                 // Plain text node
	KindBinding              // Text read from a store key at render time
	KindFragment             // Grouping without wrapper
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindBinding:
		return "Binding"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Node is a markup tree node.
type Node struct {
	Kind     Kind           // Node type
	Tag      string         // Element tag name (e.g., "div")
	Props    map[string]any // Attributes
	Children []*Node        // Child nodes
	Text     string         // For KindText
	Key      string         // Store key, for KindBinding
}

// Bind is a prop value read from a store key at render time.
type Bind struct {
	Key string
}

// El creates an element node.
func El(tag string, props map[string]any, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Props: props, Children: children}
}

// Text creates a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Bound creates a text node whose content is the value of a store key.
func Bound(key string) *Node {
	return &Node{Kind: KindBinding, Key: key}
}

// Fragment groups nodes without a wrapper element.
func Fragment(children ...*Node) *Node {
	return &Node{Kind: KindFragment, Children: children}
}

// Bindings returns the store keys a node tree refers to, in document order
// and without duplicates.
func Bindings(n *Node) []string {
	var keys []string
	seen := make(map[string]bool)
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Kind == KindBinding {
			add(n.Key)
		}
		for _, name := range sortedKeys(n.Props) {
			if b, ok := n.Props[name].(Bind); ok {
				add(b.Key)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return keys
}
