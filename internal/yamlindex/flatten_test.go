package yamlindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecodeOne(t *testing.T, content string) Value {
	t.Helper()
	docs, err := Decode([]byte(content))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	return docs[0]
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantPaths []string
		wantText  map[string]string
	}{
		{
			name:      "empty mapping",
			content:   "{}",
			wantPaths: nil,
		},
		{
			name:      "single nested leaf",
			content:   "a: {b: 1}",
			wantPaths: []string{"a.b"},
			wantText:  map[string]string{"a.b": "1"},
		},
		{
			name:      "mixed depth",
			content:   "a: 1\nb:\n  c: 2\n  d: 3\n",
			wantPaths: []string{"a", "b.c", "b.d"},
			wantText:  map[string]string{"a": "1", "b.c": "2", "b.d": "3"},
		},
		{
			name:      "empty nested mapping contributes nothing",
			content:   "a: {}\nb: x\n",
			wantPaths: []string{"b"},
		},
		{
			name:      "null leaves are dropped",
			content:   "a: null\nb: ~\nc:\nd: kept\n",
			wantPaths: []string{"d"},
		},
		{
			name:      "sequence stored whole",
			content:   "list: [x, y]\nobjs:\n  - name: n1\n",
			wantPaths: []string{"list", "objs"},
		},
		{
			name:      "deep nesting",
			content:   "a:\n  b:\n    c:\n      d: deep\n",
			wantPaths: []string{"a.b.c.d"},
			wantText:  map[string]string{"a.b.c.d": "deep"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDecodeOne(t, tt.content)

			got := Flatten(doc, "")

			if tt.wantPaths == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.wantPaths, got.Paths())
			}
			for path, text := range tt.wantText {
				v, ok := got.Get(path)
				require.True(t, ok, "missing %s", path)
				assert.Equal(t, text, v.Text)
			}
		})
	}
}

func TestFlatten_SequenceIsNotRecursed(t *testing.T) {
	// Given: a sequence of mappings
	doc := mustDecodeOne(t, "items:\n  - id: 1\n  - id: 2\n")

	// When: flattening
	got := Flatten(doc, "")

	// Then: the sequence is a single leaf kept whole
	require.Len(t, got, 1)
	assert.Equal(t, "items", got[0].Path)
	assert.Equal(t, KindSequence, got[0].Value.Kind)
	assert.Len(t, got[0].Value.Items, 2)
	_, ok := got.Get("items.id")
	assert.False(t, ok)
}

func TestFlatten_NonMappingDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  Value
	}{
		{name: "scalar", doc: Scalar("just text")},
		{name: "sequence", doc: Sequence(Scalar("a"), Scalar("b"))},
		{name: "null", doc: Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Flatten(tt.doc, ""))
		})
	}
}

func TestFlatten_Prefix(t *testing.T) {
	doc := Mapping(E("en", Scalar("hi")))

	got := Flatten(doc, "greeting")

	assert.Equal(t, []string{"greeting.en"}, got.Paths())
}

func TestFlatten_KeyOrderFollowsSource(t *testing.T) {
	doc := mustDecodeOne(t, "z: 1\ny:\n  b: 2\n  a: 3\nx: 4\n")

	got := Flatten(doc, "")

	assert.Equal(t, []string{"z", "y.b", "y.a", "x"}, got.Paths())
}

func TestFlatten_CollidingPaths(t *testing.T) {
	// Given: a literal dotted key and a nested path that spell the same path
	doc := mustDecodeOne(t, "a.b: first\nother: x\na:\n  b: second\n")

	// When: flattening
	got := Flatten(doc, "")

	// Then: the path appears once, at its first position, with the later value
	assert.Equal(t, []string{"a.b", "other"}, got.Paths())
	v, _ := got.Get("a.b")
	assert.Equal(t, "second", v.Text)
}

func TestFlatten_Idempotent(t *testing.T) {
	doc := mustDecodeOne(t, "a: 1\nb:\n  c: [1, 2]\n  d:\n    e: true\n")

	first := Flatten(doc, "")
	second := Flatten(doc, "")

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Path, second[i].Path)
		assert.True(t, first[i].Value.Equal(second[i].Value))
	}
}

func TestFlatten_OneEntryPerLeaf(t *testing.T) {
	// Given: a document with a known number of non-null leaves
	doc := Mapping(
		E("a", Scalar("1")),
		E("b", Mapping(
			E("c", Scalar("2")),
			E("d", Mapping(E("e", Scalar("3")))),
			E("f", Sequence(Scalar("x"))),
		)),
		E("g", Mapping()),
	)

	// When: flattening
	got := Flatten(doc, "")

	// Then: every leaf has exactly one unique path
	assert.Equal(t, []string{"a", "b.c", "b.d.e", "b.f"}, got.Paths())
	seen := make(map[string]bool)
	for _, l := range got {
		assert.False(t, seen[l.Path], "duplicate path %s", l.Path)
		seen[l.Path] = true
	}
}
