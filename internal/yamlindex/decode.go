package yamlindex

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// maxNodes bounds alias expansion so a small file cannot explode in memory.
const maxNodes = 1 << 20

var (
	// ErrDuplicateKey is returned when a mapping defines the same key twice.
	ErrDuplicateKey = errors.New("duplicate mapping key")

	// ErrRecursiveAlias is returned when an alias refers to one of its own ancestors.
	ErrRecursiveAlias = errors.New("recursive alias")

	// ErrComplexKey is returned for mapping keys that are not scalars.
	ErrComplexKey = errors.New("mapping key must be a scalar")

	// ErrInvalidMerge is returned when a merge key (<<) points at something other than mappings.
	ErrInvalidMerge = errors.New("merge value must be a mapping or a sequence of mappings")

	// ErrTooManyNodes is returned when alias expansion exceeds maxNodes.
	ErrTooManyNodes = errors.New("document expands beyond node limit")
)

// PositionError attaches a source position to a structural error.
type PositionError struct {
	Line   int
	Column int
	Err    error
}

// Error implements the error interface.
func (e *PositionError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *PositionError) Unwrap() error {
	return e.Err
}

// Decode parses YAML content into its documents.
// An empty stream yields no documents and no error.
func Decode(content []byte) ([]Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))

	var docs []Value
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}

		c := &converter{visiting: make(map[*yaml.Node]bool)}
		v, err := c.convert(&node)
		if err != nil {
			return nil, err
		}
		docs = append(docs, v)
	}

	return docs, nil
}

// converter maps a yaml.Node tree onto Value, resolving aliases and merge keys.
type converter struct {
	visiting map[*yaml.Node]bool
	nodes    int
}

func (c *converter) convert(n *yaml.Node) (Value, error) {
	c.nodes++
	if c.nodes > maxNodes {
		return Value{}, &PositionError{Line: n.Line, Column: n.Column, Err: ErrTooManyNodes}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return c.convert(n.Content[0])

	case yaml.AliasNode:
		if n.Alias == nil {
			return Null(), nil
		}
		if c.visiting[n.Alias] {
			return Value{}, &PositionError{Line: n.Line, Column: n.Column, Err: ErrRecursiveAlias}
		}
		return c.convert(n.Alias)

	case yaml.ScalarNode:
		return TypedScalar(n.Value, n.ShortTag()), nil

	case yaml.SequenceNode:
		c.visiting[n] = true
		defer delete(c.visiting, n)

		items := make([]Value, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := c.convert(child)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Sequence(items...), nil

	case yaml.MappingNode:
		c.visiting[n] = true
		defer delete(c.visiting, n)
		return c.convertMapping(n)

	default:
		return Null(), nil
	}
}

// convertMapping builds a mapping. Merged keys (<<) never replace keys that
// are already present; explicit keys replace merged ones but keep their slot.
func (c *converter) convertMapping(n *yaml.Node) (Value, error) {
	m := newOrderedEntries(len(n.Content) / 2)
	explicit := make(map[string]bool, len(n.Content)/2)

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]

		if isMergeKey(keyNode) {
			entries, err := c.mergeEntries(valNode)
			if err != nil {
				return Value{}, err
			}
			for _, e := range entries {
				m.setIfAbsent(e)
			}
			continue
		}

		key, err := c.keyText(keyNode)
		if err != nil {
			return Value{}, err
		}
		if explicit[key] {
			return Value{}, &PositionError{
				Line:   keyNode.Line,
				Column: keyNode.Column,
				Err:    fmt.Errorf("%w %q", ErrDuplicateKey, key),
			}
		}
		explicit[key] = true

		v, err := c.convert(valNode)
		if err != nil {
			return Value{}, err
		}
		m.set(Entry{Key: key, Value: v})
	}

	return Mapping(m.entries...), nil
}

// mergeEntries resolves the value of a merge key into the entries it contributes.
// For a sequence, earlier mappings take precedence over later ones.
func (c *converter) mergeEntries(n *yaml.Node) ([]Entry, error) {
	v, err := c.convert(n)
	if err != nil {
		return nil, err
	}

	switch v.Kind {
	case KindMapping:
		return v.Entries, nil
	case KindSequence:
		m := newOrderedEntries(0)
		for _, item := range v.Items {
			if item.Kind != KindMapping {
				return nil, &PositionError{Line: n.Line, Column: n.Column, Err: ErrInvalidMerge}
			}
			for _, e := range item.Entries {
				m.setIfAbsent(e)
			}
		}
		return m.entries, nil
	default:
		return nil, &PositionError{Line: n.Line, Column: n.Column, Err: ErrInvalidMerge}
	}
}

// keyText returns the text of a scalar key, following aliases.
func (c *converter) keyText(n *yaml.Node) (string, error) {
	target := n
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		target = n.Alias
	}
	if target.Kind != yaml.ScalarNode {
		return "", &PositionError{Line: n.Line, Column: n.Column, Err: ErrComplexKey}
	}
	return target.Value, nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}

// orderedEntries is an insertion-ordered key/value list with O(1) lookup.
type orderedEntries struct {
	entries []Entry
	index   map[string]int
}

func newOrderedEntries(capacity int) *orderedEntries {
	return &orderedEntries{
		entries: make([]Entry, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

func (o *orderedEntries) set(e Entry) {
	if i, ok := o.index[e.Key]; ok {
		o.entries[i].Value = e.Value
		return
	}
	o.index[e.Key] = len(o.entries)
	o.entries = append(o.entries, e)
}

func (o *orderedEntries) setIfAbsent(e Entry) {
	if _, ok := o.index[e.Key]; ok {
		return
	}
	o.set(e)
}
