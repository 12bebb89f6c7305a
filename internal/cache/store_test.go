package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/yamlpick/internal/yamlindex"
)

func tableOf(pairs ...string) *yamlindex.Table {
	t := yamlindex.NewTable()
	var f yamlindex.Flattened
	for i := 0; i+1 < len(pairs); i += 2 {
		f = append(f, yamlindex.Leaf{Path: pairs[i], Value: yamlindex.TypedScalar(pairs[i+1], yamlindex.TagStr)})
	}
	t.Merge(f)
	return t
}

func TestNew_StartsEmpty(t *testing.T) {
	// Given/When: a new store
	s := New()

	// Then: nothing is found and generation is zero
	_, ok := s.Lookup("anything")
	assert.False(t, ok)
	snap := s.Snapshot()
	assert.Equal(t, uint64(0), snap.Generation)
	assert.Equal(t, 0, snap.Values)
	assert.True(t, snap.BuiltAt.IsZero())
}

func TestSwap_ReplacesWholeTable(t *testing.T) {
	// Given: a store with a first table
	s := New()
	gen := s.Swap(tableOf("greeting.en", "hi"), Stats{FilesIndexed: 1})
	require.Equal(t, uint64(1), gen)

	// When: swapping in a table that no longer has "hi"
	gen = s.Swap(tableOf("farewell.en", "bye"), Stats{FilesIndexed: 1, FilesSkipped: 1})

	// Then: the old entries are gone rather than accumulated
	assert.Equal(t, uint64(2), gen)
	_, ok := s.Lookup("hi")
	assert.False(t, ok)
	paths, ok := s.Lookup("bye")
	require.True(t, ok)
	assert.Equal(t, []string{"farewell.en"}, paths)
}

func TestSwap_NilTableIsEmpty(t *testing.T) {
	s := New()
	s.Swap(tableOf("a", "x"), Stats{})

	s.Swap(nil, Stats{})

	_, ok := s.Lookup("x")
	assert.False(t, ok)
	assert.NotNil(t, s.Table())
}

func TestSnapshot_ReportsStats(t *testing.T) {
	s := New()
	s.Swap(tableOf("a", "x", "b", "x", "c", "y"), Stats{
		FilesIndexed: 3,
		FilesSkipped: 2,
		Duration:     150 * time.Millisecond,
	})

	snap := s.Snapshot()

	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, 3, snap.FilesIndexed)
	assert.Equal(t, 2, snap.FilesSkipped)
	assert.Equal(t, 2, snap.Values)
	assert.Equal(t, 3, snap.Paths)
	assert.Equal(t, 150*time.Millisecond, snap.BuildTime)
	assert.False(t, snap.BuiltAt.IsZero())
}

func TestStore_IndependentInstances(t *testing.T) {
	a := New()
	b := New()

	a.Swap(tableOf("k", "v"), Stats{})

	_, ok := b.Lookup("v")
	assert.False(t, ok)
	assert.Equal(t, uint64(0), b.Generation())
}

func TestStore_ConcurrentReadersSeeCompleteTables(t *testing.T) {
	// Given: every published table maps both "left" and "right"
	s := New()
	s.Swap(tableOf("l", "left", "r", "right"), Stats{})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// When: readers query while a writer keeps swapping
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				table := s.Table()
				_, l := table.Lookup("left")
				_, r := table.Lookup("right")
				// Then: a table never has one without the other
				assert.Equal(t, l, r)
			}
		}()
	}

	for i := 0; i < 200; i++ {
		s.Swap(tableOf("l", "left", "r", "right"), Stats{FilesIndexed: i})
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, uint64(201), s.Generation())
}
