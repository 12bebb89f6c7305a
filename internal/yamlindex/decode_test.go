package yamlindex

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KeepsSourceOrder(t *testing.T) {
	// Given: a mapping whose keys are not alphabetical
	content := []byte("zeta: 1\nalpha: 2\nmid: 3\n")

	// When: decoding
	docs, err := Decode(content)

	// Then: entries appear in source order
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, KindMapping, docs[0].Kind)

	var keys []string
	for _, e := range docs[0].Entries {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
}

func TestDecode_ScalarTags(t *testing.T) {
	content := []byte(`
s: hello
q: "42"
i: 42
f: 1.5
b: true
n: null
t: ~
`)

	docs, err := Decode(content)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	want := Mapping(
		E("s", TypedScalar("hello", TagStr)),
		E("q", TypedScalar("42", TagStr)),
		E("i", TypedScalar("42", TagInt)),
		E("f", TypedScalar("1.5", TagFloat)),
		E("b", TypedScalar("true", TagBool)),
		E("n", TypedScalar("null", TagNull)),
		E("t", TypedScalar("~", TagNull)),
	)
	assert.True(t, want.Equal(docs[0]), "got %+v", docs[0])
	assert.True(t, docs[0].Entries[5].Value.IsNull())
	assert.True(t, docs[0].Entries[6].Value.IsNull())
}

func TestDecode_EmptyInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "comment only", content: "# nothing here\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := Decode([]byte(tt.content))
			require.NoError(t, err)
			assert.Empty(t, docs)
		})
	}
}

func TestDecode_MultipleDocuments(t *testing.T) {
	content := []byte("a: 1\n---\nb: 2\n---\n- x\n")

	docs, err := Decode(content)

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, KindMapping, docs[0].Kind)
	assert.Equal(t, KindMapping, docs[1].Kind)
	assert.Equal(t, KindSequence, docs[2].Kind)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unclosed flow mapping", content: "a: {b: 1\n"},
		{name: "nested mapping on one line", content: "a: b: c\n"},
		{name: "unclosed quote", content: "a: \"hi\n"},
		{name: "unknown alias", content: "a: *missing\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := Decode([]byte(tt.content))
			assert.Error(t, err)
			assert.Nil(t, docs)
		})
	}
}

func TestDecode_DuplicateKey(t *testing.T) {
	// Given: a mapping that repeats a key
	content := []byte("a: 1\nb: 2\na: 3\n")

	// When: decoding
	_, err := Decode(content)

	// Then: the duplicate is reported with its position
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	var posErr *PositionError
	require.True(t, errors.As(err, &posErr))
	assert.Equal(t, 3, posErr.Line)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestDecode_AliasResolved(t *testing.T) {
	content := []byte(`
base: &greet hello
copy: *greet
`)

	docs, err := Decode(content)
	require.NoError(t, err)

	v, ok := Flatten(docs[0], "").Get("copy")
	require.True(t, ok)
	assert.Equal(t, "hello", v.Text)
}

func TestDecode_MergeKeys(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Value
	}{
		{
			name: "merge then override",
			content: `
defaults: &d
  a: 1
  b: 2
item:
  <<: *d
  b: 3
`,
			want: Mapping(
				E("a", TypedScalar("1", TagInt)),
				E("b", TypedScalar("3", TagInt)),
			),
		},
		{
			name: "explicit key before merge wins",
			content: `
defaults: &d
  a: 1
  b: 2
item:
  b: 9
  <<: *d
`,
			want: Mapping(
				E("b", TypedScalar("9", TagInt)),
				E("a", TypedScalar("1", TagInt)),
			),
		},
		{
			name: "sequence of merges, earlier wins",
			content: `
one: &one
  a: first
two: &two
  a: second
  c: other
item:
  <<: [*one, *two]
`,
			want: Mapping(
				E("a", Scalar("first")),
				E("c", Scalar("other")),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := Decode([]byte(tt.content))
			require.NoError(t, err)
			require.Len(t, docs, 1)

			item := docs[0].Entries[len(docs[0].Entries)-1]
			require.Equal(t, "item", item.Key)
			assert.True(t, tt.want.Equal(item.Value), "got %+v", item.Value)
		})
	}
}

func TestDecode_InvalidMerge(t *testing.T) {
	content := []byte("item:\n  <<: scalar\n")

	_, err := Decode(content)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMerge))
}

func TestDecode_ComplexKey(t *testing.T) {
	content := []byte("? [a, b]\n: value\n")

	_, err := Decode(content)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrComplexKey))
}

func TestDecode_AliasBombIsBounded(t *testing.T) {
	// Given: the classic exponential alias expansion
	var b strings.Builder
	b.WriteString("a0: &a0 [x, x, x, x, x, x, x, x, x, x]\n")
	prev := "a0"
	for i := 1; i <= 9; i++ {
		name := "a" + string(rune('0'+i))
		b.WriteString(name + ": &" + name + " [")
		for j := 0; j < 10; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString("*" + prev)
		}
		b.WriteString("]\n")
		prev = name
	}

	// When: decoding
	_, err := Decode([]byte(b.String()))

	// Then: decoding stops with an error instead of expanding forever
	require.Error(t, err)
}
