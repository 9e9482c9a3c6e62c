package markup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vango-dev/reactor/internal/errors"
)

// rawNode is the JSON form of an element or binding.
type rawNode struct {
	Type     string                     `json:"type"`
	Props    map[string]json.RawMessage `json:"props"`
	Children json.RawMessage            `json:"children"`
	Bind     *string                    `json:"bind"`
}

// Parse decodes a JSON markup document.
//
// A node is either a string (text), {"bind": "key"} (a bound text node), or
// an element:
//
//	{"type": "div", "props": {"id": "app", "title": {"bind": "title"}},
//	 "children": [{"type": "span", "children": "hello"}, {"bind": "name"}]}
//
// "children" may be a string, an array of nodes, or null. A top-level
// array yields a fragment.
func Parse(data []byte) (*Node, error) {
	return parse("document", data)
}

// ParseFile reads and decodes a JSON markup document.
func ParseFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("X001").
			WithDetail("Could not read " + path).
			Wrap(err)
	}
	return parse(path, data)
}

func parse(name string, data []byte) (*Node, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		e := errors.New("M001").Wrap(err)
		if syntax, ok := err.(*json.SyntaxError); ok {
			e = e.WithOffset(name, data, syntax.Offset)
		}
		return nil, e
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		children, err := parseChildren(json.RawMessage(trimmed), "$")
		if err != nil {
			return nil, err
		}
		return Fragment(children...), nil
	}
	return parseNode(json.RawMessage(trimmed), "$")
}

func parseNode(raw json.RawMessage, path string) (*Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("M003").WithDetail("Empty node at " + path)
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.New("M001").WithDetail("At " + path).Wrap(err)
		}
		return Text(s), nil
	case '{':
	default:
		return nil, errors.New("M003").
			WithDetail(fmt.Sprintf("Node at %s must be a string or an object, got %s", path, raw)).
			WithExample(`{"type": "p", "children": "text"}`)
	}

	var rn rawNode
	if err := json.Unmarshal(raw, &rn); err != nil {
		return nil, errors.New("M001").WithDetail("At " + path).Wrap(err)
	}

	if rn.Bind != nil {
		return Bound(*rn.Bind), nil
	}
	if rn.Type == "" {
		return nil, errors.New("M002").
			WithDetail("Node at " + path + " has neither \"type\" nor \"bind\"").
			WithExample(`{"type": "div", "children": []}`)
	}

	node := &Node{Kind: KindElement, Tag: rn.Type}
	if len(rn.Props) > 0 {
		node.Props = make(map[string]any, len(rn.Props))
		for name, rv := range rn.Props {
			v, err := parseProp(rv, path+".props."+name)
			if err != nil {
				return nil, err
			}
			node.Props[name] = v
		}
	}

	children, err := parseChildren(rn.Children, path+".children")
	if err != nil {
		return nil, err
	}
	node.Children = children
	return node, nil
}

func parseChildren(raw json.RawMessage, path string) ([]*Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		n, err := parseNode(raw, path)
		if err != nil {
			return nil, err
		}
		return []*Node{n}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, errors.New("M001").WithDetail("At " + path).Wrap(err)
		}
		children := make([]*Node, 0, len(items))
		for i, item := range items {
			n, err := parseNode(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			children = append(children, n)
		}
		return children, nil
	default:
		return nil, errors.New("M003").
			WithDetail(fmt.Sprintf("Children at %s must be a string, an array or null, got %s", path, raw)).
			WithExample(`"children": [{"type": "li", "children": "one"}]`)
	}
}

func parseProp(raw json.RawMessage, path string) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var b struct {
			Bind *string `json:"bind"`
		}
		if err := json.Unmarshal(raw, &b); err == nil && b.Bind != nil {
			return Bind{Key: *b.Bind}, nil
		}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.New("M001").WithDetail("At " + path).Wrap(err)
	}
	return v, nil
}
