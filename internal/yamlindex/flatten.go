package yamlindex

// Leaf is one path/value pair produced by Flatten.
type Leaf struct {
	Path  string
	Value Value
}

// Flattened is the ordered list of leaves of one document.
// Paths are unique within a single Flattened.
type Flattened []Leaf

// Flatten walks doc depth-first in source order and records every leaf
// under its dotted path. Mappings recurse; sequences and non-null scalars are
// stored whole. Null values and empty mappings contribute nothing. A document
// that is not a mapping yields an empty result.
//
// If two routes produce the same path (a literal "a.b" key next to a nested
// a: {b: ...}), the later value wins and the first position is kept.
func Flatten(doc Value, prefix string) Flattened {
	if doc.Kind != KindMapping {
		return nil
	}

	f := &flattener{seen: make(map[string]int)}
	f.walk(doc, prefix)
	return f.out
}

type flattener struct {
	out  Flattened
	seen map[string]int
}

func (f *flattener) walk(m Value, prefix string) {
	for _, e := range m.Entries {
		path := e.Key
		if prefix != "" {
			path = prefix + "." + e.Key
		}

		switch {
		case e.Value.Kind == KindMapping:
			f.walk(e.Value, path)
		case e.Value.IsNull():
			// no entry
		default:
			f.record(path, e.Value)
		}
	}
}

func (f *flattener) record(path string, v Value) {
	if i, ok := f.seen[path]; ok {
		f.out[i].Value = v
		return
	}
	f.seen[path] = len(f.out)
	f.out = append(f.out, Leaf{Path: path, Value: v})
}
