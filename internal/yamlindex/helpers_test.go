package yamlindex

import "strings"

// Builders and comparisons used by the tests of this package.

// Scalar builds a string scalar.
func Scalar(text string) Value {
	return Value{Kind: KindScalar, Text: text, Tag: TagStr}
}

// E is shorthand for an Entry.
func E(key string, v Value) Entry {
	return Entry{Key: key, Value: v}
}

// String renders the value for display. Sequences are joined with commas,
// mappings render as "{...}".
func (v Value) String() string {
	switch v.Kind {
	case KindScalar:
		return v.Text
	case KindSequence:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	case KindMapping:
		return "{...}"
	default:
		return ""
	}
}

// Equal reports whether two values are structurally identical.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindScalar:
		return v.Text == other.Text && v.Tag == other.Tag
	case KindSequence:
		if len(v.Items) != len(other.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.Entries) != len(other.Entries) {
			return false
		}
		for i := range v.Entries {
			if v.Entries[i].Key != other.Entries[i].Key || !v.Entries[i].Value.Equal(other.Entries[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Get returns the value recorded at path.
func (f Flattened) Get(path string) (Value, bool) {
	for _, l := range f {
		if l.Path == path {
			return l.Value, true
		}
	}
	return Value{}, false
}

// Paths returns the leaf paths in order.
func (f Flattened) Paths() []string {
	paths := make([]string, len(f))
	for i, l := range f {
		paths[i] = l.Path
	}
	return paths
}
