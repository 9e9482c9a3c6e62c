package markup

import "github.com/vango-dev/reactor/pkg/reactive"

// Live binds node to view: it renders once immediately and again whenever
// a store key the last rendering read is written. Each rendering is passed
// to sink; a sink error fails the effect run and reaches the writer.
//
// Only keys that the tree actually reads are tracked, so writes to other
// keys do not re-render. Dispose the returned effect to stop updates.
func Live(view *reactive.View, node *Node, config Config, sink func(html string) error) (*reactive.Effect, error) {
	config.Resolve = func(key string) (any, bool) {
		return view.Lookup(reactive.Name(key))
	}
	r := NewRenderer(config)

	return view.Runtime().EffectE(func() error {
		html, err := r.RenderToString(node)
		if err != nil {
			return err
		}
		return sink(html)
	})
}

// ViewResolver returns a Resolver that reads a view without tracking.
func ViewResolver(view *reactive.View) Resolver {
	return func(key string) (any, bool) {
		v := view.Peek(reactive.Name(key))
		return v, v != nil
	}
}
