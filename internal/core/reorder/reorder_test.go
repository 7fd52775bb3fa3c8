package reorder

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}

	tests := []struct {
		name     string
		src, tgt string
		want     []string
		moved    bool
	}{
		{"down lands after target", "a", "c", []string{"b", "c", "a", "d"}, true},
		{"up lands before target", "d", "b", []string{"a", "d", "b", "c"}, true},
		{"adjacent down swaps", "b", "c", []string{"a", "c", "b", "d"}, true},
		{"to last", "a", "d", []string{"b", "c", "d", "a"}, true},
		{"to first", "d", "a", []string{"d", "a", "b", "c"}, true},
		{"self", "b", "b", ids, false},
		{"unknown source", "x", "b", ids, false},
		{"unknown target", "b", "x", ids, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, moved := Move(ids, tt.src, tt.tgt)
			assert.Equal(t, tt.moved, moved)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"a", "b", "c", "d"}, ids, "input must not change")
		})
	}
}

func TestMove_PreservesOtherOrder(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}

	for _, src := range ids {
		for _, tgt := range ids {
			if src == tgt {
				continue
			}
			got, moved := Move(ids, src, tgt)
			require.True(t, moved)

			assert.ElementsMatch(t, ids, got)

			i := slices.Index(got, src)
			j := slices.Index(got, tgt)
			assert.Equal(t, 1, abs(i-j), "%s should sit next to %s in %v", src, tgt, got)

			rest := slices.DeleteFunc(slices.Clone(got), func(s string) bool { return s == src })
			want := slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == src })
			assert.Equal(t, want, rest)
		}
	}
}

func TestEngine_Transitions(t *testing.T) {
	var e Engine
	assert.Equal(t, Idle, e.State().Phase)

	e.Enter("b")
	assert.Equal(t, Idle, e.State().Phase, "enter without drag is ignored")

	e.Begin("a")
	assert.Equal(t, State{Phase: Dragging, Source: "a"}, e.State())

	e.Enter("a")
	assert.Equal(t, State{Phase: Dragging, Source: "a"}, e.State(), "no self hover")

	e.Enter("c")
	assert.Equal(t, State{Phase: DraggingOver, Source: "a", Target: "c"}, e.State())

	e.Leave()
	assert.Equal(t, State{Phase: Dragging, Source: "a"}, e.State())

	e.Enter("b")
	assert.Equal(t, State{Phase: DraggingOver, Source: "a", Target: "b"}, e.State())

	e.Cancel()
	assert.Equal(t, State{}, e.State())
}

func TestEngine_Drop(t *testing.T) {
	ids := []string{"a", "b", "c"}

	t.Run("moves and returns to idle", func(t *testing.T) {
		var e Engine
		e.Begin("a")
		e.Enter("c")

		got, ok := e.Drop("c", ids)
		require.True(t, ok)
		assert.Equal(t, []string{"b", "c", "a"}, got)
		assert.Equal(t, Idle, e.State().Phase)
	})

	t.Run("drop on self", func(t *testing.T) {
		var e Engine
		e.Begin("b")

		got, ok := e.Drop("b", ids)
		assert.False(t, ok)
		assert.Equal(t, ids, got)
		assert.Equal(t, Idle, e.State().Phase)
	})

	t.Run("drop on missing target", func(t *testing.T) {
		var e Engine
		e.Begin("b")

		_, ok := e.Drop("zzz", ids)
		assert.False(t, ok)
		assert.Equal(t, Idle, e.State().Phase)
	})

	t.Run("source removed during drag", func(t *testing.T) {
		var e Engine
		e.Begin("gone")

		_, ok := e.Drop("a", ids)
		assert.False(t, ok)
	})

	t.Run("drop without drag", func(t *testing.T) {
		var e Engine
		_, ok := e.Drop("a", ids)
		assert.False(t, ok)
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
