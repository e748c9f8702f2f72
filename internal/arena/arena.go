// Package arena stores the states of an engine as a dense slice addressed by
// index. Engines keep their adjacency inside each slot, keyed by symbol and
// pointing at other slots by index, so a transition can only ever reference a
// state that was allocated.
package arena

import (
	"slices"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// NoState marks an unset start state.
const NoState = -1

// Slot is one state in the arena.
type Slot[E any] struct {
	Name  string
	Final bool
	Edges E
}

// Arena is an ordered collection of named states with per-state edges of type E.
type Arena[E any] struct {
	slots    []Slot[E]
	index    map[string]int
	start    int
	newEdges func() E
}

// New returns an empty arena. newEdges builds the edge container of a fresh slot.
func New[E any](newEdges func() E) *Arena[E] {
	return &Arena[E]{
		index:    make(map[string]int),
		start:    NoState,
		newEdges: newEdges,
	}
}

// Len returns the number of allocated states.
func (a *Arena[E]) Len() int {
	return len(a.slots)
}

// Add allocates a state, or returns the existing slot for name.
// The first state added to an arena without a start state becomes the start.
func (a *Arena[E]) Add(name string) (idx int, created bool) {
	if i, ok := a.index[name]; ok {
		return i, false
	}
	a.slots = append(a.slots, Slot[E]{Name: name, Edges: a.newEdges()})
	idx = len(a.slots) - 1
	a.index[name] = idx
	if a.start == NoState {
		a.start = idx
	}
	return idx, true
}

// Lookup returns the index of name.
func (a *Arena[E]) Lookup(name string) (int, bool) {
	i, ok := a.index[name]
	return i, ok
}

// At returns the slot at index i. It panics if i is out of range.
func (a *Arena[E]) At(i int) *Slot[E] {
	return &a.slots[i]
}

// Name returns the label of slot i.
func (a *Arena[E]) Name(i int) string {
	return a.slots[i].Name
}

// Start returns the start index, or NoState.
func (a *Arena[E]) Start() int {
	return a.start
}

// SetStart marks slot i as the start state. NoState clears it.
func (a *Arena[E]) SetStart(i int) {
	a.start = i
}

// StartName returns the label of the start state.
func (a *Arena[E]) StartName() (string, bool) {
	if a.start == NoState {
		return "", false
	}
	return a.slots[a.start].Name, true
}

// Remove deletes the state called name. Slots above it shift down by one;
// fix is called on every remaining slot's edges so the engine can drop edges
// into the removed slot and renumber the rest (see Shift). Removing the start
// state leaves the arena without one.
func (a *Arena[E]) Remove(name string, fix func(edges E, removed int) E) bool {
	i, ok := a.index[name]
	if !ok {
		return false
	}
	a.slots = slices.Delete(a.slots, i, i+1)
	delete(a.index, name)
	for j := range a.slots {
		a.slots[j].Edges = fix(a.slots[j].Edges, i)
		if j >= i {
			a.index[a.slots[j].Name] = j
		}
	}
	switch {
	case a.start == i:
		a.start = NoState
	case a.start > i:
		a.start--
	}
	return true
}

// Shift renumbers an edge target after slot removed was deleted.
// It reports false when the target was the removed slot itself.
func Shift(target, removed int) (int, bool) {
	switch {
	case target == removed:
		return 0, false
	case target > removed:
		return target - 1, true
	default:
		return target, true
	}
}

// Rename relabels a state. Edges point at indices, so only the label changes.
func (a *Arena[E]) Rename(oldName, newName string) error {
	i, ok := a.index[oldName]
	if !ok {
		return ir.Precondition("rename_state", oldName, ir.ErrUnknownState)
	}
	if newName == "" {
		return ir.Precondition("rename_state", oldName, ir.ErrEmptyName)
	}
	if newName == oldName {
		return nil
	}
	if _, taken := a.index[newName]; taken {
		return ir.Precondition("rename_state", newName, ir.ErrStateExists)
	}
	delete(a.index, oldName)
	a.index[newName] = i
	a.slots[i].Name = newName
	return nil
}

// Order returns every index sorted by state label.
func (a *Arena[E]) Order() []int {
	order := make([]int, len(a.slots))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(x, y int) int {
		return strings.Compare(a.slots[x].Name, a.slots[y].Name)
	})
	return order
}

// Names returns every label in ascending order.
func (a *Arena[E]) Names() []string {
	out := make([]string, 0, len(a.slots))
	for _, s := range a.slots {
		out = append(out, s.Name)
	}
	slices.Sort(out)
	return out
}

// FinalNames returns the labels of final states in ascending order.
func (a *Arena[E]) FinalNames() []string {
	out := []string{}
	for _, s := range a.slots {
		if s.Final {
			out = append(out, s.Name)
		}
	}
	slices.Sort(out)
	return out
}

// NamesOf maps a set of indices to sorted labels.
func (a *Arena[E]) NamesOf(indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, i := range indices {
		out = append(out, a.slots[i].Name)
	}
	slices.Sort(out)
	return out
}

// EnsureStart points the start at the smallest label when none is set.
// It reports whether a fallback was applied.
func (a *Arena[E]) EnsureStart() bool {
	if a.start != NoState || len(a.slots) == 0 {
		return false
	}
	a.start = a.Order()[0]
	return true
}

// Clone deep-copies the arena; copyEdges duplicates one slot's edges.
func (a *Arena[E]) Clone(copyEdges func(E) E) *Arena[E] {
	out := &Arena[E]{
		slots:    make([]Slot[E], len(a.slots)),
		index:    make(map[string]int, len(a.index)),
		start:    a.start,
		newEdges: a.newEdges,
	}
	for i, s := range a.slots {
		out.slots[i] = Slot[E]{Name: s.Name, Final: s.Final, Edges: copyEdges(s.Edges)}
		out.index[s.Name] = i
	}
	return out
}
