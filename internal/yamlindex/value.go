package yamlindex

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindScalar is a single string, number, boolean or null.
	KindScalar Kind = iota
	// KindMapping is an ordered set of key/value entries.
	KindMapping
	// KindSequence is an ordered list of values.
	KindSequence
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// YAML core schema tags reported for scalars.
const (
	TagStr   = "!!str"
	TagInt   = "!!int"
	TagFloat = "!!float"
	TagBool  = "!!bool"
	TagNull  = "!!null"
)

// Value is one node of a decoded YAML document.
type Value struct {
	Kind Kind

	// Text is the literal scalar text (unquoted). Scalars only.
	Text string

	// Tag is the resolved short tag of a scalar, e.g. "!!str".
	Tag string

	// Entries holds mapping entries in source order. Mappings only.
	Entries []Entry

	// Items holds sequence elements. Sequences only.
	Items []Value
}

// Entry is a single key/value pair of a mapping.
type Entry struct {
	Key   string
	Value Value
}

// TypedScalar builds a scalar with an explicit tag.
func TypedScalar(text, tag string) Value {
	return Value{Kind: KindScalar, Text: text, Tag: tag}
}

// Null builds a null scalar.
func Null() Value {
	return Value{Kind: KindScalar, Text: "null", Tag: TagNull}
}

// Mapping builds a mapping from entries, keeping their order.
func Mapping(entries ...Entry) Value {
	return Value{Kind: KindMapping, Entries: entries}
}

// Sequence builds a sequence from items.
func Sequence(items ...Value) Value {
	return Value{Kind: KindSequence, Items: items}
}

// IsNull reports whether v is a null scalar.
func (v Value) IsNull() bool {
	return v.Kind == KindScalar && v.Tag == TagNull
}
