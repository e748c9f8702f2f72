package compiler

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// Analysis warning codes (W200-W299)
const (
	WarnUnreachable = "W201" // state cannot be reached from the start state
	WarnDeadState   = "W202" // reachable state cannot reach a final state
	WarnLoop        = "W203" // TM cycle with no final state on it
)

// Warning is a structural finding that does not make a machine invalid.
type Warning struct {
	Code    string   `json:"code"`
	States  []string `json:"states"`
	Message string   `json:"message"`
	Level   string   `json:"level"` // "warning" or "info"
}

// Analyze performs static reachability analysis on a machine.
//
// It builds the state graph, ignoring symbols, and reports:
//   - states unreachable from the start state
//   - for acceptors, reachable states from which no final state is reachable
//   - for Turing machines, strongly connected components with no final
//     state, found with Tarjan's algorithm
//
// References to undeclared states are left to Validate.
func Analyze(m *ir.Machine) []Warning {
	g := buildStateGraph(m)
	if g == nil {
		return []Warning{}
	}

	warnings := []Warning{}
	reached := g.reachable([]string{g.start}, g.next)
	if g.start != "" {
		var lost []string
		for _, s := range g.states {
			if !reached[s] {
				lost = append(lost, s)
			}
		}
		if len(lost) > 0 {
			warnings = append(warnings, Warning{
				Code:    WarnUnreachable,
				States:  lost,
				Message: "unreachable from " + g.start + ": " + strings.Join(lost, ", "),
				Level:   "info",
			})
		}
	}

	if g.acceptor && g.start != "" {
		live := g.reachable(g.finals, g.reverse())
		var dead []string
		for _, s := range g.states {
			if reached[s] && !live[s] {
				dead = append(dead, s)
			}
		}
		if len(dead) > 0 {
			warnings = append(warnings, Warning{
				Code:    WarnDeadState,
				States:  dead,
				Message: "no final state reachable from: " + strings.Join(dead, ", "),
				Level:   "warning",
			})
		}
	}

	if m.Kind() == ir.KindTM {
		final := make(map[string]bool, len(g.finals))
		for _, f := range g.finals {
			final[f] = true
		}
		for _, scc := range tarjanSCC(g) {
			if len(scc) == 1 && !slices.Contains(g.next[scc[0]], scc[0]) {
				continue
			}
			if slices.ContainsFunc(scc, func(s string) bool { return final[s] }) {
				continue
			}
			path := reconstructCyclePath(scc, g.next)
			warnings = append(warnings, Warning{
				Code:    WarnLoop,
				States:  scc,
				Message: "may run forever: " + strings.Join(path, " → "),
				Level:   "warning",
			})
		}
	}
	return warnings
}

// stateGraph maps each declared state to its successors, sorted and
// deduplicated.
type stateGraph struct {
	states   []string
	start    string
	finals   []string
	acceptor bool
	next     map[string][]string
}

func buildStateGraph(m *ir.Machine) *stateGraph {
	if m == nil || m.Document == nil {
		return nil
	}
	g := &stateGraph{next: make(map[string][]string)}
	declared := make(map[string]bool)
	link := func(src, dst string) {
		if declared[src] && declared[dst] && !slices.Contains(g.next[src], dst) {
			g.next[src] = append(g.next[src], dst)
		}
	}
	declare := func(states []string, start string) {
		for _, s := range states {
			if !declared[s] {
				declared[s] = true
				g.states = append(g.states, s)
			}
		}
		if declared[start] {
			g.start = start
		}
	}
	keepFinals := func(finals []string) {
		g.acceptor = true
		for _, f := range finals {
			if declared[f] {
				g.finals = append(g.finals, f)
			}
		}
	}

	switch doc := m.Document.(type) {
	case ir.FADocument:
		declare(doc.States, doc.StartState)
		keepFinals(doc.FinalStates)
		for _, t := range doc.Transitions {
			for _, d := range t.Dsts {
				link(t.Src, d)
			}
		}
	case ir.PDADocument:
		declare(doc.States, doc.StartState)
		keepFinals(doc.FinalStates)
		for _, k := range sortedKeys(doc.Transitions) {
			src, _, _, ok := ir.SplitPDAKey(k)
			if !ok {
				continue
			}
			for _, alt := range doc.Transitions[k] {
				if len(alt) == 2 {
					link(src, alt[0])
				}
			}
		}
	case ir.TMDocument:
		declare(doc.States, doc.StartState)
		keepFinals(doc.FinalStates)
		for _, k := range sortedKeys(doc.Transitions) {
			src, _, ok := ir.SplitTMKey(k)
			if ok && len(doc.Transitions[k]) == 3 {
				link(src, doc.Transitions[k][0])
			}
		}
	case ir.MealyDocument:
		declare(doc.States, doc.StartState)
		for _, t := range doc.Transitions {
			link(t.Src, t.Dst)
		}
	case ir.MooreDocument:
		declare(doc.States, doc.StartState)
		for _, t := range doc.Transitions {
			link(t.Src, t.Dst)
		}
	default:
		return nil
	}

	slices.Sort(g.states)
	slices.Sort(g.finals)
	for s := range g.next {
		slices.Sort(g.next[s])
	}
	return g
}

func (g *stateGraph) reverse() map[string][]string {
	rev := make(map[string][]string)
	for _, src := range g.states {
		for _, dst := range g.next[src] {
			rev[dst] = append(rev[dst], src)
		}
	}
	return rev
}

// reachable returns every state reachable from roots along edges.
func (g *stateGraph) reachable(roots []string, edges map[string][]string) map[string]bool {
	seen := make(map[string]bool)
	var queue []string
	for _, r := range roots {
		if r != "" && !seen[r] {
			seen[r] = true
			queue = append(queue, r)
		}
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, n := range edges[s] {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return seen
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Nodes are visited in label order so the result is deterministic. Each SCC
// is sorted and the list is ordered by first member.
func tarjanSCC(g *stateGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.next[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.states {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	slices.SortFunc(sccs, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return sccs
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Start at the first member, follow edges to unvisited members, stop on
// returning to the start.
func reconstructCyclePath(scc []string, next map[string][]string) []string {
	if len(scc) == 0 {
		return []string{}
	}

	inSCC := make(map[string]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var following string
		for _, neighbor := range next[current] {
			if inSCC[neighbor] && (!visited[neighbor] || neighbor == start) {
				following = neighbor
				break
			}
		}
		if following == "" {
			break
		}

		path = append(path, following)
		if following == start {
			break
		}
		current = following
	}

	return path
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// String renders a warning for CLI output.
func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}
