// Package yamlindex turns YAML documents into a reverse lookup table.
//
// Indexing happens in three steps:
//
//   - Decode parses a file into documents, each a tagged Value tree
//     (Mapping, Sequence or Scalar) that keeps the parser's key order.
//   - Flatten walks a document depth-first and records every leaf under its
//     dotted key path ("greeting.en"). Only mappings are descended into;
//     sequences are leaves and are kept whole.
//   - Table.Merge inverts flattened leaves into value -> []path, and
//     Table.Lookup answers exact-match queries against it.
//
// Usage:
//
//	docs, err := yamlindex.Index(content)
//	if err != nil {
//	    return err // malformed YAML, skip the file
//	}
//	table := yamlindex.NewTable()
//	table.MergeAll(docs)
//	paths, ok := table.Lookup("hi") // ["greeting.en"], true
package yamlindex
