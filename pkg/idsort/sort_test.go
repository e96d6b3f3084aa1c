package idsort

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// names collects the list names in order, tagging linked records with
// their library.
func names(lb *List) []string {
	var out []string
	for id := lb.First(); id != nil; id = id.Next() {
		if id.Lib != nil {
			out = append(out, id.Lib.Name+"/"+id.Name)
		} else {
			out = append(out, id.Name)
		}
	}
	return out
}

// requireSorted asserts the (library, case-insensitive name) order with
// local records leading.
func requireSorted(t *testing.T, lb *List) {
	t.Helper()
	seenLibs := map[*Library]bool{}
	var curLib *Library
	started := false
	for id := lb.First(); id != nil; id = id.Next() {
		if !started || id.Lib != curLib {
			require.False(t, seenLibs[id.Lib], "library group %v split apart", id.Lib)
			seenLibs[id.Lib] = true
			curLib = id.Lib
			started = true
			continue
		}
		prev := id.Prev()
		require.LessOrEqual(t, caseCmp(prev.Name, id.Name), 0,
			"%q must not sort after %q", prev.Name, id.Name)
	}
}

// insertSorted links id at the tail then moves it to its sorted position,
// the way callers add new records.
func insertSorted(lb *List, id *ID, hint *ID) {
	lb.PushTail(id)
	SortByName(lb, id, hint)
}

func TestSortByNameBasicOrdering(t *testing.T) {
	var lb List
	for _, n := range []string{"Suzanne", "cube", "Plane", "cone", "CUBE.001"} {
		insertSorted(&lb, &ID{Name: n}, nil)
	}
	assert.Equal(t, []string{"cone", "cube", "CUBE.001", "Plane", "Suzanne"}, names(&lb))
	requireSorted(t, &lb)
}

func TestSortByNameSingleElementNoOp(t *testing.T) {
	var lb List
	only := &ID{Name: "solo"}
	lb.PushTail(only)

	SortByName(&lb, only, nil)

	assert.Same(t, only, lb.First())
	assert.Same(t, only, lb.Last())
	assert.Equal(t, 1, lb.Len())
}

func TestSortByNameGroupPlacement(t *testing.T) {
	libA := &Library{Name: "lib_a.blend"}
	libB := &Library{Name: "lib_b.blend"}

	tests := []struct {
		name string
		id   *ID
		want []string
	}{
		{
			name: "local with no local group goes to head",
			id:   &ID{Name: "zzz"},
			want: []string{"zzz", "lib_a.blend/mat", "lib_b.blend/mat"},
		},
		{
			name: "linked with no group of its library goes to tail",
			id:   &ID{Name: "aaa", Lib: &Library{Name: "lib_c.blend"}},
			want: []string{"lib_a.blend/mat", "lib_b.blend/mat", "lib_c.blend/aaa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lb List
			lb.PushTail(&ID{Name: "mat", Lib: libA})
			lb.PushTail(&ID{Name: "mat", Lib: libB})

			insertSorted(&lb, tt.id, nil)
			assert.Equal(t, tt.want, names(&lb))
		})
	}
}

func TestSortByNameHintIndependence(t *testing.T) {
	build := func() (*List, []*ID) {
		lb := &List{}
		var ids []*ID
		for _, n := range []string{"alpha", "beta", "delta", "epsilon", "gamma"} {
			id := &ID{Name: n}
			lb.PushTail(id)
			ids = append(ids, id)
		}
		return lb, ids
	}

	// Insert "carol" with every possible hint, including none; the order
	// must come out identical.
	want := []string{"alpha", "beta", "carol", "delta", "epsilon", "gamma"}

	lb, _ := build()
	insertSorted(lb, &ID{Name: "carol"}, nil)
	assert.Equal(t, want, names(lb))

	_, probe := build()
	for i := range probe {
		lb, ids := build()
		insertSorted(lb, &ID{Name: "carol"}, ids[i])
		assert.Equal(t, want, names(lb), "hint index %d diverged", i)
	}
}

func TestSortByNameHintFastPath(t *testing.T) {
	var lb List
	a := &ID{Name: "aaa"}
	c := &ID{Name: "ccc"}
	e := &ID{Name: "eee"}
	for _, id := range []*ID{a, c, e} {
		lb.PushTail(id)
	}

	// Hint directly precedes the insertion point.
	insertSorted(&lb, &ID{Name: "ddd"}, c)
	assert.Equal(t, []string{"aaa", "ccc", "ddd", "eee"}, names(&lb))

	// Hint directly follows the insertion point.
	insertSorted(&lb, &ID{Name: "bbb"}, c)
	assert.Equal(t, []string{"aaa", "bbb", "ccc", "ddd", "eee"}, names(&lb))

	// A hint from another library group is ignored, not trusted.
	lib := &Library{Name: "lib.blend"}
	linked := &ID{Name: "mmm", Lib: lib}
	insertSorted(&lb, linked, c)
	assert.Equal(t, []string{"aaa", "bbb", "ccc", "ddd", "eee", "lib.blend/mmm"}, names(&lb))
}

func TestSortByNameEqualNamesStable(t *testing.T) {
	var lb List
	first := &ID{Name: "Cube"}
	second := &ID{Name: "cube"}
	third := &ID{Name: "CUBE"}

	insertSorted(&lb, first, nil)
	insertSorted(&lb, second, nil)
	insertSorted(&lb, third, nil)

	// Case-insensitively equal names keep insertion order.
	require.Equal(t, 3, lb.Len())
	assert.Same(t, first, lb.First())
	assert.Same(t, second, lb.First().Next())
	assert.Same(t, third, lb.Last())
}

func TestSortByNameLargeGroupCrossesScanWindow(t *testing.T) {
	// More records than one backward-scan window, inserted shuffled.
	const n = sortStepSize*2 + 37

	rng := rand.New(rand.NewSource(7))
	var lb List
	perm := rng.Perm(n)
	for _, i := range perm {
		insertSorted(&lb, &ID{Name: fmt.Sprintf("object.%06d", i)}, nil)
	}

	require.Equal(t, n, lb.Len())
	requireSorted(t, &lb)

	// Head insert still works when everything sorts above the target.
	insertSorted(&lb, &ID{Name: "aardvark"}, nil)
	assert.Equal(t, "aardvark", lb.First().Name)
	requireSorted(t, &lb)
}

func TestSortByNameMixedLibraries(t *testing.T) {
	libs := []*Library{nil, {Name: "lib_a.blend"}, {Name: "lib_b.blend"}}
	rng := rand.New(rand.NewSource(11))

	var lb List
	for i := 0; i < 600; i++ {
		id := &ID{
			Name: fmt.Sprintf("node.%04d", rng.Intn(400)),
			Lib:  libs[rng.Intn(len(libs))],
		}
		insertSorted(&lb, id, nil)
	}

	require.Equal(t, 600, lb.Len())
	requireSorted(t, &lb)
}

func TestCaseCmp(t *testing.T) {
	tests := []struct {
		a, b string
		sign int
	}{
		{"abc", "abc", 0},
		{"ABC", "abc", 0},
		{"abc", "abd", -1},
		{"B", "a", 1},
		{"abc", "abcd", -1},
		{"", "", 0},
		{"a", "", 1},
	}
	for _, tt := range tests {
		got := caseCmp(tt.a, tt.b)
		switch {
		case tt.sign == 0:
			assert.Zero(t, got, "%q vs %q", tt.a, tt.b)
		case tt.sign < 0:
			assert.Negative(t, got, "%q vs %q", tt.a, tt.b)
		default:
			assert.Positive(t, got, "%q vs %q", tt.a, tt.b)
		}
	}
}
