package yamlindex

// Index decodes content and flattens each document from the root.
// A parse failure returns an error and no partial result.
func Index(content []byte) ([]Flattened, error) {
	docs, err := Decode(content)
	if err != nil {
		return nil, err
	}

	out := make([]Flattened, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Flatten(doc, ""))
	}
	return out, nil
}

// MergeAll merges each flattened document into t in order.
func (t *Table) MergeAll(fs []Flattened) {
	for _, f := range fs {
		t.Merge(f)
	}
}
