// Package roster keeps the set of names tasks can be assigned to.
package roster

import (
	"slices"
	"strings"
)

// Roster is an ordered set of unique, trimmed, non-empty names. Names are
// compared case-sensitively. Removing a name does not touch tasks that
// reference it.
type Roster struct {
	names []string
}

// New returns a roster holding names, normalized as by Add.
func New(names ...string) *Roster {
	r := &Roster{}
	r.Replace(names)
	return r
}

// Replace sets the roster contents, dropping blank and duplicate names.
func (r *Roster) Replace(names []string) {
	r.names = nil
	for _, n := range names {
		r.Add(n)
	}
}

// Add appends name after trimming. Blank or already present names are ignored.
func (r *Roster) Add(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || r.Contains(name) {
		return name, false
	}
	r.names = append(r.names, name)
	return name, true
}

// Remove deletes the first exact match of name.
func (r *Roster) Remove(name string) bool {
	i := slices.Index(r.names, name)
	if i < 0 {
		return false
	}
	r.names = slices.Delete(r.names, i, i+1)
	return true
}

// Contains reports whether name is in the roster.
func (r *Roster) Contains(name string) bool {
	return slices.Contains(r.names, name)
}

// Names returns a copy of the roster in insertion order.
func (r *Roster) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of names.
func (r *Roster) Len() int {
	return len(r.names)
}
