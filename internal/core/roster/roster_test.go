package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoster_Add(t *testing.T) {
	r := New()

	_, ok := r.Add("Alice")
	assert.True(t, ok)
	_, ok = r.Add("Alice")
	assert.False(t, ok)
	assert.Equal(t, []string{"Alice"}, r.Names())

	name, ok := r.Add("  Bob  ")
	assert.True(t, ok)
	assert.Equal(t, "Bob", name)
	assert.Equal(t, []string{"Alice", "Bob"}, r.Names())
}

func TestRoster_AddRejectsBlank(t *testing.T) {
	r := New()
	for _, name := range []string{"", "  ", "\t"} {
		_, ok := r.Add(name)
		assert.False(t, ok, "Add(%q)", name)
	}
	assert.Equal(t, 0, r.Len())
}

func TestRoster_CaseSensitive(t *testing.T) {
	r := New("alice", "Alice")
	assert.Equal(t, []string{"alice", "Alice"}, r.Names())
}

func TestRoster_Remove(t *testing.T) {
	r := New("Alice", "Bob")

	assert.False(t, r.Remove("bob"))
	assert.True(t, r.Remove("Bob"))
	assert.False(t, r.Remove("Bob"))
	assert.Equal(t, []string{"Alice"}, r.Names())
}

func TestRoster_NewNormalizes(t *testing.T) {
	r := New(" Alice", "Alice ", "", "Carol")
	assert.Equal(t, []string{"Alice", "Carol"}, r.Names())
}

func TestRoster_NamesIsACopy(t *testing.T) {
	r := New("Alice")
	names := r.Names()
	names[0] = "Mallory"
	assert.True(t, r.Contains("Alice"))
}
