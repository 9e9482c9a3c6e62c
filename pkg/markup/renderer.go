package markup

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strconv"

	"github.com/vango-dev/reactor/internal/errors"
)

// Resolver looks up the current value of a store key. It reports false
// when the key is absent.
type Resolver func(key string) (any, bool)

// Config configures the HTML renderer.
type Config struct {
	// XHTML self-closes void elements ("<br/>" instead of "<br>").
	XHTML bool

	// Logger receives a warning for every attribute skipped because its
	// name is unsafe. Defaults to discarding.
	Logger *slog.Logger

	// Resolve supplies values for Bound nodes and Bind props. Without
	// it bindings render as absent.
	Resolve Resolver
}

// Renderer converts node trees to HTML strings. It holds no state
// between renders and is safe to reuse.
type Renderer struct {
	config Config
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config Config) *Renderer {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{config: config}
}

// Render renders node with the default configuration.
func Render(node *Node) (string, error) {
	return NewRenderer(Config{}).RenderToString(node)
}

// RenderToString renders a node tree to an HTML string.
func (r *Renderer) RenderToString(node *Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a node tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *Node) error {
	return r.renderNode(w, node)
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w io.Writer, node *Node) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case KindElement:
		return r.renderElement(w, node)
	case KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case KindBinding:
		v, _ := r.resolve(node.Key)
		_, err := io.WriteString(w, escapeHTML(attrToString(v)))
		return err
	case KindFragment:
		return r.renderChildren(w, node)
	default:
		return errors.New("M004").
			WithDetail(fmt.Sprintf("Node kind %d cannot be rendered", node.Kind))
	}
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, node *Node) error {
	if node.Tag == "" {
		return errors.New("M002")
	}
	if _, err := io.WriteString(w, "<"+node.Tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}

	if isVoidElement(node.Tag) {
		end := ">"
		if r.config.XHTML {
			end = "/>"
		}
		_, err := io.WriteString(w, end)
		return err
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if err := r.renderChildren(w, node); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</"+node.Tag+">")
	return err
}

func (r *Renderer) renderChildren(w io.Writer, node *Node) error {
	for _, child := range node.Children {
		if err := r.renderNode(w, child); err != nil {
			return err
		}
	}
	return nil
}

// renderAttributes renders all attributes for an element in name order.
func (r *Renderer) renderAttributes(w io.Writer, node *Node) error {
	for _, key := range sortedKeys(node.Props) {
		value := node.Props[key]

		if ignoredProps[key] || isEventProp(key) || isFunc(value) {
			continue
		}

		switch key {
		case "className":
			key = "class"
		case "htmlFor":
			key = "for"
		}

		if b, ok := value.(Bind); ok {
			value, _ = r.resolve(b.Key)
		}

		if !isSafeAttrName(key) {
			r.config.Logger.Warn("markup: skipped rendering unsafe attribute name",
				"tag", node.Tag, "name", key)
			continue
		}

		if isBooleanAttr(key) {
			if value == nil || value == false {
				continue
			}
			if _, err := io.WriteString(w, " "+key); err != nil {
				return err
			}
			continue
		}

		if value == nil {
			continue
		}
		s := attrToString(value)
		if s == "" {
			if _, err := io.WriteString(w, " "+key); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(s)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) resolve(key string) (any, bool) {
	if r.config.Resolve == nil {
		return nil, false
	}
	return r.config.Resolve(key)
}

func sortedKeys(props map[string]any) []string {
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// isFunc reports whether value is a function, which can only be a handler.
func isFunc(value any) bool {
	return value != nil && reflect.TypeOf(value).Kind() == reflect.Func
}

// attrToString converts a value to its rendered string form.
func attrToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
