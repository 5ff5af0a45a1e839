package addrtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnown(t *testing.T) {
	assert.Equal(t, uintptr(0x004237C0), Resolve(MainLoop))
	assert.Equal(t, uintptr(0x01908830), Resolve(MainLoopCount))
}

func TestResolveUnknownPanics(t *testing.T) {
	assert.Panics(t, func() { Resolve(Op("nope")) })
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(Screenshot)
	require.True(t, ok)
	assert.Equal(t, Routine, e.Kind)
	assert.Equal(t, CDecl, e.Conv)
	assert.Equal(t, "bool", e.Result)

	_, ok = Lookup(Op("nope"))
	assert.False(t, ok)
}

func TestEntriesSortedAndUnique(t *testing.T) {
	all := Entries()
	require.NotEmpty(t, all)
	seen := map[uintptr]Op{}
	for i, e := range all {
		if i > 0 {
			assert.Less(t, all[i-1].Addr, e.Addr)
		}
		prev, dup := seen[e.Addr]
		assert.False(t, dup, "%s shares address with %s", e.Op, prev)
		seen[e.Addr] = e.Op
	}
}
