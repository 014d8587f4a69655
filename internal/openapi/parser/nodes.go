package parser

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// pair is one key/value entry of a YAML mapping, in document order.
type pair struct {
	key   string
	keyN  *yaml.Node
	value *yaml.Node
}

// deref follows YAML aliases to the anchored node.
func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func kindName(n *yaml.Node) string {
	n = deref(n)
	if n == nil {
		return "nothing"
	}
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "null"
		}
		return "scalar"
	case yaml.DocumentNode:
		return "document"
	default:
		return "unknown node"
	}
}

func isNull(n *yaml.Node) bool {
	n = deref(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// shapeError builds a ParseError positioned at n.
func (w *walker) shapeError(n *yaml.Node, at string, format string, args ...any) error {
	perr := &pkgopenapi.ParseError{
		Pointer: at,
		Message: fmt.Sprintf(format, args...),
	}
	if n != nil {
		perr.Line = n.Line
		perr.Column = n.Column
	}
	return perr
}

// pairs returns the entries of a mapping node, rejecting other kinds and
// duplicate keys.
func (w *walker) pairs(n *yaml.Node, at string) ([]pair, error) {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, w.shapeError(n, at, "expected a mapping, found %s", kindName(n))
	}
	out := make([]pair, 0, len(n.Content)/2)
	seen := make(map[string]struct{}, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode := deref(n.Content[i])
		if keyNode == nil || keyNode.Kind != yaml.ScalarNode {
			return nil, w.shapeError(n.Content[i], at, "mapping keys must be scalars")
		}
		if keyNode.Value == "<<" {
			return nil, w.shapeError(keyNode, at, "merge keys are not supported")
		}
		if _, dup := seen[keyNode.Value]; dup {
			return nil, w.shapeError(keyNode, at, "duplicate key %q", keyNode.Value)
		}
		seen[keyNode.Value] = struct{}{}
		out = append(out, pair{key: keyNode.Value, keyN: keyNode, value: n.Content[i+1]})
	}
	return out, nil
}

// lookup returns the value under key in a mapping node, or nil.
func lookup(n *yaml.Node, key string) *yaml.Node {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if k := deref(n.Content[i]); k != nil && k.Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func (w *walker) scalar(n *yaml.Node, at string) (string, error) {
	n = deref(n)
	if n == nil || isNull(n) {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", w.shapeError(n, at, "expected a scalar, found %s", kindName(n))
	}
	return n.Value, nil
}

func (w *walker) boolean(n *yaml.Node, at string) (bool, error) {
	n = deref(n)
	if n == nil || isNull(n) {
		return false, nil
	}
	if n.Kind != yaml.ScalarNode {
		return false, w.shapeError(n, at, "expected a boolean, found %s", kindName(n))
	}
	var out bool
	if err := n.Decode(&out); err != nil {
		return false, w.shapeError(n, at, "expected a boolean, found %q", n.Value)
	}
	return out, nil
}

func (w *walker) sequence(n *yaml.Node, at string) ([]*yaml.Node, error) {
	n = deref(n)
	if n == nil || isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, w.shapeError(n, at, "expected a sequence, found %s", kindName(n))
	}
	return n.Content, nil
}

func (w *walker) stringList(n *yaml.Node, at string) ([]string, error) {
	items, err := w.sequence(n, at)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(items))
	for idx, item := range items {
		value := deref(item)
		if value == nil || value.Kind != yaml.ScalarNode {
			return nil, w.shapeError(item, join(at, itoa(idx)), "expected a scalar, found %s", kindName(item))
		}
		if isNull(value) {
			out = append(out, "null")
			continue
		}
		out = append(out, value.Value)
	}
	return out, nil
}

func join(parts ...string) string {
	filtered := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			filtered = append(filtered, p)
		}
	}
	return strings.Join(filtered, ".")
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
