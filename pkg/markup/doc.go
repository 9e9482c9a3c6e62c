// Package markup renders element trees to HTML strings and keeps renderings
// in sync with a reactive store.
//
// Rendering follows the usual server-side rules:
//
//   - Void elements (input, br, img, ...) have no closing tag
//   - Boolean attributes render as a bare name, or not at all when false
//   - An empty attribute value renders as a bare name
//   - key, ref and event props (onClick, on-click) are never rendered
//   - Attribute names containing unsafe characters are skipped with a warning
//   - Text and attribute values are escaped
//
// # Basic Usage
//
//	node := markup.El("div", map[string]any{"id": "app"},
//	    markup.El("span", nil, markup.Text("hello")),
//	)
//	html, err := markup.Render(node)
//
// # Documents
//
// Trees can be loaded from JSON with Parse or ParseFile. See Parse for the
// format.
//
// # Live Binding
//
// Bound nodes and Bind props read store keys at render time. Live renders
// a tree inside an effect, so writes to any key the tree read re-render it:
//
//	state := rt.Observe(map[reactive.Key]any{reactive.Name("name"): "Ada"})
//	node := markup.El("p", nil, markup.Text("Hello, "), markup.Bound("name"))
//	markup.Live(state, node, markup.Config{}, func(html string) error {
//	    fmt.Println(html)
//	    return nil
//	})
//	state.Set(reactive.Name("name"), "Grace") // prints again
package markup
