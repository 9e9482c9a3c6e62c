package markup

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestRenderElement(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{
			name: "nested elements",
			node: El("div", map[string]any{"id": "app"},
				El("span", nil, Text("hi")),
			),
			want: `<div id="app"><span>hi</span></div>`,
		},
		{
			name: "void element",
			node: El("input", map[string]any{"required": true, "placeholder": "account"}),
			want: `<input placeholder="account" required>`,
		},
		{
			name: "void element ignores children",
			node: El("br", nil, Text("lost")),
			want: `<br>`,
		},
		{
			name: "boolean attr false",
			node: El("button", map[string]any{"disabled": false}, Text("Go")),
			want: `<button>Go</button>`,
		},
		{
			name: "boolean attr nil",
			node: El("button", map[string]any{"disabled": nil}),
			want: `<button></button>`,
		},
		{
			name: "boolean attr with string value",
			node: El("details", map[string]any{"open": "yes"}),
			want: `<details open></details>`,
		},
		{
			name: "empty value renders bare",
			node: El("div", map[string]any{"data-flag": ""}),
			want: `<div data-flag></div>`,
		},
		{
			name: "nil value omitted",
			node: El("div", map[string]any{"title": nil}),
			want: `<div></div>`,
		},
		{
			name: "key and ref skipped",
			node: El("li", map[string]any{"key": "1", "ref": "item"}),
			want: `<li></li>`,
		},
		{
			name: "event props skipped",
			node: El("a", map[string]any{"onClick": "x", "on-hover": "y", "href": "/"}),
			want: `<a href="/"></a>`,
		},
		{
			name: "lowercase on prefix kept",
			node: El("div", map[string]any{"one": "1"}),
			want: `<div one="1"></div>`,
		},
		{
			name: "function values skipped",
			node: El("button", map[string]any{"handler": func() {}}),
			want: `<button></button>`,
		},
		{
			name: "className and htmlFor",
			node: El("label", map[string]any{"className": "x", "htmlFor": "y"}),
			want: `<label class="x" for="y"></label>`,
		},
		{
			name: "numbers",
			node: El("meter", map[string]any{"value": 0.5, "max": 1, "min": int64(0)}),
			want: `<meter max="1" min="0" value="0.5"></meter>`,
		},
		{
			name: "attribute escaping",
			node: El("div", map[string]any{"title": "a \"b\" <c> & 'd'\n"}),
			want: `<div title="a &quot;b&quot; &lt;c&gt; &amp; &#39;d&#39;&#10;"></div>`,
		},
		{
			name: "text escaping",
			node: El("p", nil, Text("<script>alert('x') & \"y\"</script>")),
			want: `<p>&lt;script&gt;alert('x') &amp; "y"&lt;/script&gt;</p>`,
		},
		{
			name: "fragment",
			node: Fragment(El("b", nil), Text("t"), El("i", nil)),
			want: `<b></b>t<i></i>`,
		},
		{
			name: "nil node",
			node: nil,
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.node)
			if err != nil {
				t.Fatalf("Render error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderXHTML(t *testing.T) {
	r := NewRenderer(Config{XHTML: true})
	got, err := r.RenderToString(El("div", nil, El("br", nil), El("img", map[string]any{"src": "a.png"})))
	if err != nil {
		t.Fatal(err)
	}
	if want := `<div><br/><img src="a.png"/></div>`; got != want {
		t.Errorf("RenderToString() = %q, want %q", got, want)
	}
}

func TestRenderUnsafeAttrName(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := NewRenderer(Config{Logger: logger})

	got, err := r.RenderToString(El("div", map[string]any{
		`x" onload="evil`: "1",
		"a>b":             "2",
		"id":              "ok",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if want := `<div id="ok"></div>`; got != want {
		t.Errorf("RenderToString() = %q, want %q", got, want)
	}
	if n := strings.Count(buf.String(), "skipped rendering unsafe attribute name"); n != 2 {
		t.Errorf("warnings = %d, want 2:\n%s", n, buf.String())
	}
}

func TestRenderBindings(t *testing.T) {
	state := map[string]any{"name": "<Ada>", "count": 2, "off": false}
	r := NewRenderer(Config{Resolve: func(key string) (any, bool) {
		v, ok := state[key]
		return v, ok
	}})

	node := El("p", map[string]any{
		"data-count": Bind{Key: "count"},
		"hidden":     Bind{Key: "off"},
		"title":      Bind{Key: "missing"},
	}, Text("Hi "), Bound("name"), Bound("missing"))

	got, err := r.RenderToString(node)
	if err != nil {
		t.Fatal(err)
	}
	if want := `<p data-count="2">Hi &lt;Ada&gt;</p>`; got != want {
		t.Errorf("RenderToString() = %q, want %q", got, want)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(&Node{Kind: KindElement}); err == nil || !strings.Contains(err.Error(), "M002") {
		t.Errorf("Render(no tag) = %v, want M002", err)
	}
	if _, err := Render(&Node{Kind: Kind(42)}); err == nil || !strings.Contains(err.Error(), "M004") {
		t.Errorf("Render(bad kind) = %v, want M004", err)
	}
}

func TestRenderGolden(t *testing.T) {
	doc, err := ParseFile("testdata/page.json")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	state := map[string]any{"count": 3, "title": "Hello <World>"}
	resolve := func(key string) (any, bool) {
		v, ok := state[key]
		return v, ok
	}

	tests := []struct {
		name   string
		config Config
	}{
		{"page", Config{Resolve: resolve}},
		{"page_xhtml", Config{XHTML: true, Resolve: resolve}},
		{"page_unbound", Config{}},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRenderer(tt.config).RenderToString(doc)
			if err != nil {
				t.Fatal(err)
			}
			g.Assert(t, tt.name, []byte(got))
		})
	}
}

func TestBindings(t *testing.T) {
	node := El("div", map[string]any{"title": Bind{Key: "t"}},
		Bound("a"), El("span", nil, Bound("b"), Bound("a")),
	)
	got := Bindings(node)
	want := []string{"t", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Bindings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bindings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindBinding, "Binding"},
		{KindFragment, "Fragment"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
