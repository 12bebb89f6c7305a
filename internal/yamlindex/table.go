package yamlindex

// Table maps a leaf value's text to the paths that produced it, in
// discovery order. The zero value is not usable; call NewTable.
//
// Table is not safe for concurrent mutation. Build it on one goroutine and
// publish it through cache.Store, after which it is only read.
type Table struct {
	paths map[string][]string
	order []string
	total int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{paths: make(map[string][]string)}
}

// Key returns the lookup key for a leaf value. Only scalars are keyable.
// The key is the scalar's source text, so non-canonical numeric and boolean
// spellings such as 1.50, True or 0x10 are keyed as written, not as 1.5,
// true or 16.
func Key(v Value) (string, bool) {
	if v.Kind != KindScalar || v.IsNull() {
		return "", false
	}
	return v.Text, true
}

// Merge appends every keyable leaf of f to the table. Existing path lists
// grow in order and duplicates are kept. Sequence leaves are skipped.
func (t *Table) Merge(f Flattened) {
	for _, leaf := range f {
		key, ok := Key(leaf.Value)
		if !ok {
			continue
		}
		if _, exists := t.paths[key]; !exists {
			t.order = append(t.order, key)
		}
		t.paths[key] = append(t.paths[key], leaf.Path)
		t.total++
	}
}

// Lookup returns a copy of the paths recorded for query. Matching is exact
// and case-sensitive; an empty query is never found.
func (t *Table) Lookup(query string) ([]string, bool) {
	if t == nil || query == "" {
		return nil, false
	}
	paths, ok := t.paths[query]
	if !ok {
		return nil, false
	}
	out := make([]string, len(paths))
	copy(out, paths)
	return out, true
}

// Len returns the number of distinct values.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// PathCount returns the total number of recorded paths, duplicates included.
func (t *Table) PathCount() int {
	if t == nil {
		return 0
	}
	return t.total
}

// Values returns the distinct values in the order they were first seen.
func (t *Table) Values() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
