package fa

import (
	"slices"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/arena"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// Minimize returns the minimal DFA equivalent to a. The receiver must satisfy
// IsDFA and is never modified.
//
// The transition table is completed with a sink that lives one slot past the
// last real state, so it cannot clash with any state label. Blocks are
// refined from {final, non-final} until stable. The sink is then dropped and
// every remaining block becomes one state, named after its only member or
// "{a,b,...}" over its sorted members.
func (a *Automaton) Minimize() (*Automaton, error) {
	if !a.IsDFA() {
		return nil, ir.Precondition("minimize", "", ir.ErrNotDFA)
	}

	out := a.derive()
	n := a.states.Len()
	if n == 0 {
		return out, nil
	}

	alphabet := a.characters()
	sink := n
	delta, complete := a.table(alphabet, sink)
	total := n
	if !complete {
		total = n + 1
	}

	blocks := initialBlocks(a, total)
	inWork := make([]bool, len(blocks))
	var work []int
	if len(blocks) == 2 {
		// blocks[0] holds the final states.
		w := 0
		if len(blocks[0]) > len(blocks[1]) {
			w = 1
		}
		work = append(work, w)
		inWork[w] = true
	}

	for len(work) > 0 {
		b := work[0]
		work = work[1:]
		inWork[b] = false
		splitter := cloneSet(blocks[b])

		for c := range alphabet {
			pre := make(indexSet)
			for q := 0; q < total; q++ {
				if _, ok := splitter[delta[q][c]]; ok {
					pre[q] = struct{}{}
				}
			}

			count := len(blocks)
			for y := 0; y < count; y++ {
				inter, diff := split(blocks[y], pre)
				if len(inter) == 0 || len(diff) == 0 {
					continue
				}
				blocks[y] = inter
				blocks = append(blocks, diff)
				inWork = append(inWork, false)
				added := len(blocks) - 1

				switch {
				case inWork[y]:
					work = append(work, added)
					inWork[added] = true
				case len(inter) <= len(diff):
					work = append(work, y)
					inWork[y] = true
				default:
					work = append(work, added)
					inWork[added] = true
				}
			}
		}
	}

	return a.quotient(out, blocks, delta, alphabet, sink)
}

// table builds the completed transition table over alphabet. Missing moves,
// and every move of the sink row, point at sink.
func (a *Automaton) table(alphabet []string, sink int) ([][]int, bool) {
	n := a.states.Len()
	complete := true
	delta := make([][]int, n+1)
	for q := 0; q < n; q++ {
		delta[q] = make([]int, len(alphabet))
		e := a.states.At(q).Edges
		for c, sym := range alphabet {
			delta[q][c] = sink
			for t := range e[sym] {
				delta[q][c] = t
			}
			if delta[q][c] == sink {
				complete = false
			}
		}
	}
	delta[sink] = make([]int, len(alphabet))
	for c := range alphabet {
		delta[sink][c] = sink
	}
	return delta, complete
}

// initialBlocks partitions the first total slots into final and non-final,
// dropping an empty side.
func initialBlocks(a *Automaton, total int) []indexSet {
	final, rest := make(indexSet), make(indexSet)
	for q := 0; q < total; q++ {
		if q < a.states.Len() && a.states.At(q).Final {
			final[q] = struct{}{}
		} else {
			rest[q] = struct{}{}
		}
	}
	var blocks []indexSet
	for _, b := range []indexSet{final, rest} {
		if len(b) > 0 {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func split(block, by indexSet) (inter, diff indexSet) {
	inter, diff = make(indexSet), make(indexSet)
	for q := range block {
		if _, ok := by[q]; ok {
			inter[q] = struct{}{}
		} else {
			diff[q] = struct{}{}
		}
	}
	return inter, diff
}

func cloneSet(s indexSet) indexSet {
	out := make(indexSet, len(s))
	for q := range s {
		out[q] = struct{}{}
	}
	return out
}

type block struct {
	name    string
	members []int
}

// quotient builds the minimized automaton from the stable partition.
func (a *Automaton) quotient(out *Automaton, blocks []indexSet, delta [][]int, alphabet []string, sink int) (*Automaton, error) {
	owner := make(map[int]int)
	var named []block
	taken := make(map[string]bool)

	for _, b := range blocks {
		delete(b, sink)
		if len(b) == 0 {
			continue
		}
		members := sortedIndices(b)
		name := quotientName(a.states.NamesOf(members))
		if taken[name] {
			return nil, ir.Precondition("minimize", name, ir.ErrStateExists)
		}
		taken[name] = true
		slices.SortFunc(members, func(x, y int) int {
			return strings.Compare(a.states.Name(x), a.states.Name(y))
		})
		named = append(named, block{name: name, members: members})
	}
	slices.SortFunc(named, func(x, y block) int { return strings.Compare(x.name, y.name) })

	start := a.states.Start()
	for _, b := range named {
		i, _ := out.states.Add(b.name)
		for _, m := range b.members {
			owner[m] = i
			if a.states.At(m).Final {
				out.states.At(i).Final = true
			}
			if m == start {
				out.states.SetStart(i)
			}
		}
	}
	if start == arena.NoState {
		out.states.SetStart(arena.NoState)
	}

	for _, b := range named {
		from := owner[b.members[0]]
		for c, sym := range alphabet {
			for _, m := range b.members {
				if t := delta[m][c]; t != sink {
					out.link(from, sym, owner[t])
					break
				}
			}
		}
	}
	return out, nil
}
