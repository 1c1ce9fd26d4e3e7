package smiles

import (
	"sort"

	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/turtacn/molnotation/internal/domain/molecule"
)

// WalkElement is one step of the spanning walk.  For tree steps Vertex is the
// newly visited atom; for closure steps Vertex is the earlier, already visited
// endpoint and ParentVertex the atom the closure was found from.
type WalkElement struct {
	Vertex       int
	ParentVertex int
	ParentEdge   int
	IsClosure    bool
}

// WalkOptions configures BuildWalk.  Nil slices mean "none".
type WalkOptions struct {
	Ignored    []bool
	MustBeRoot []bool
	Ranks      []int
}

// WalkComponent is one connected component of the walk.  Its elements are
// Sequence[Start:End].
type WalkComponent struct {
	Root  int
	Start int
	End   int
}

// Walk is a depth-first spanning forest of the non-ignored atoms.
type Walk struct {
	Sequence   []WalkElement
	Components []WalkComponent

	parent     []int
	parentEdge []int
	children   [][]int
	openings   [][]int
	closings   [][]int
	visit      []int
}

// Parent returns the tree parent of v, or -1 for roots and unvisited atoms.
func (w *Walk) Parent(v int) int { return w.parent[v] }

// ParentEdge returns the tree bond leading to v, or -1.
func (w *Walk) ParentEdge(v int) int { return w.parentEdge[v] }

// Children returns the tree children of v in visiting order.
func (w *Walk) Children(v int) []int { return w.children[v] }

// Openings returns the closure bonds for which v is the earlier endpoint, in
// discovery order.
func (w *Walk) Openings(v int) []int { return w.openings[v] }

// Closings returns the closure bonds for which v is the later endpoint, in
// discovery order.
func (w *Walk) Closings(v int) []int { return w.closings[v] }

// Visited reports whether v is part of the walk.
func (w *Walk) Visited(v int) bool { return w.visit[v] >= 0 }

// VisitOrder returns the preorder position of v, or -1.
func (w *Walk) VisitOrder(v int) int { return w.visit[v] }

type walkFrame struct {
	v    int
	nbrs []molecule.Neighbor
	next int
}

// BuildWalk computes the spanning walk of view.  It never fails: every
// non-ignored atom ends up in exactly one component.
func BuildWalk(view molecule.View, opts WalkOptions) *Walk {
	n := view.AtomCount()
	w := &Walk{
		parent:     filled(n, -1),
		parentEdge: filled(n, -1),
		children:   make([][]int, n),
		openings:   make([][]int, n),
		closings:   make([][]int, n),
		visit:      filled(n, -1),
	}
	ignored := func(v int) bool { return opts.Ignored != nil && opts.Ignored[v] }
	rank := func(v int) int {
		if opts.Ranks == nil {
			return 0
		}
		return opts.Ranks[v]
	}
	root := func(v int) bool { return opts.MustBeRoot != nil && opts.MustBeRoot[v] }

	candidates := make([]int, 0, n)
	for v := 0; v < n; v++ {
		if !ignored(v) {
			candidates = append(candidates, v)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if root(a) != root(b) {
			return root(a)
		}
		return rank(a) < rank(b)
	})

	seenEdge := make([]bool, view.BondCount())
	stack := arraystack.New()
	visited := 0

	sortedNeighbors := func(v int) []molecule.Neighbor {
		nbrs := append([]molecule.Neighbor(nil), view.Neighbors(v)...)
		if opts.Ranks != nil {
			sort.SliceStable(nbrs, func(i, j int) bool { return rank(nbrs[i].Atom) < rank(nbrs[j].Atom) })
		}
		return nbrs
	}
	enter := func(v, parent, edge int) {
		w.visit[v] = visited
		visited++
		w.parent[v] = parent
		w.parentEdge[v] = edge
		if parent >= 0 {
			w.children[parent] = append(w.children[parent], v)
		}
		w.Sequence = append(w.Sequence, WalkElement{Vertex: v, ParentVertex: parent, ParentEdge: edge})
		stack.Push(&walkFrame{v: v, nbrs: sortedNeighbors(v)})
	}

	for _, start := range candidates {
		if w.visit[start] >= 0 {
			continue
		}
		comp := WalkComponent{Root: start, Start: len(w.Sequence)}
		enter(start, -1, -1)

		for !stack.Empty() {
			top, _ := stack.Peek()
			f := top.(*walkFrame)
			if f.next >= len(f.nbrs) {
				stack.Pop()
				continue
			}
			nb := f.nbrs[f.next]
			f.next++
			if ignored(nb.Atom) || seenEdge[nb.Bond] {
				continue
			}
			seenEdge[nb.Bond] = true
			if w.visit[nb.Atom] >= 0 {
				w.openings[nb.Atom] = append(w.openings[nb.Atom], nb.Bond)
				w.closings[f.v] = append(w.closings[f.v], nb.Bond)
				w.Sequence = append(w.Sequence, WalkElement{
					Vertex: nb.Atom, ParentVertex: f.v, ParentEdge: nb.Bond, IsClosure: true,
				})
				continue
			}
			enter(nb.Atom, f.v, nb.Bond)
		}
		comp.End = len(w.Sequence)
		w.Components = append(w.Components, comp)
	}
	return w
}

func filled(n, value int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = value
	}
	return s
}
