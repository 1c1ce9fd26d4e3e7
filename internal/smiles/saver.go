package smiles

import (
	"sort"
	"strings"
	"sync"

	"github.com/turtacn/molnotation/internal/domain/molecule"
	"github.com/turtacn/molnotation/pkg/errors"
)

// Saver serializes molecular graphs.  A Saver is safe for concurrent use: each
// call takes its own scratch session from the pool.
type Saver struct {
	pool         sync.Pool
	defaultLimit int
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithDefaultOperationLimit applies limit to calls whose Options leave
// OperationLimit at zero.
func WithDefaultOperationLimit(limit int) SaverOption {
	return func(s *Saver) {
		s.defaultLimit = limit
	}
}

// NewSaver creates a Saver.
func NewSaver(opts ...SaverOption) *Saver {
	s := &Saver{}
	s.pool.New = func() interface{} { return &session{} }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes view as SMILES, or SMARTS when opts.SMARTS is set.  On error no
// text is returned.
func (sv *Saver) Save(view molecule.View, opts Options) (*Result, error) {
	if view == nil {
		return nil, errors.InvalidParam("molecule view is nil")
	}
	if opts.VertexRanks != nil && len(opts.VertexRanks) != view.AtomCount() {
		return nil, errors.InvalidParam("vertex ranks length does not match atom count").
			WithDetailf("ranks=%d atoms=%d", len(opts.VertexRanks), view.AtomCount())
	}
	if opts.OperationLimit == 0 {
		opts.OperationLimit = sv.defaultLimit
	}

	s := sv.pool.Get().(*session)
	defer func() {
		s.release()
		sv.pool.Put(s)
	}()
	s.reset(view, opts)
	return s.run()
}

func (s *session) run() (*Result, error) {
	s.markIgnored()
	s.walk = BuildWalk(s.view, WalkOptions{
		Ignored:    s.ignored,
		MustBeRoot: s.mustRoot,
		Ranks:      s.opts.VertexRanks,
	})
	if err := s.budget.spend(len(s.walk.Sequence)); err != nil {
		return nil, err
	}
	s.orderComponents()
	s.planDigits()
	s.assignIndices()

	if err := s.encodeTetrahedral(); err != nil {
		return nil, err
	}
	if err := s.encodeAllenes(); err != nil {
		return nil, err
	}
	s.assignGroups()
	if err := s.solveCisTrans(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	if err := s.emit(&sb); err != nil {
		return nil, err
	}
	if s.opts.WriteExtensionBlock {
		block, err := s.extensionBlock()
		if err != nil {
			return nil, err
		}
		if block != "" {
			sb.WriteString(" |")
			sb.WriteString(block)
			sb.WriteByte('|')
		}
	}

	return &Result{
		Text:       sb.String(),
		AtomOrder:  append([]int(nil), s.atomOrder...),
		BondOrder:  append([]int(nil), s.bondOrder...),
		AtomIndex:  append([]int(nil), s.atomIndex...),
		BondIndex:  append([]int(nil), s.bondIndex...),
		Directions: append([]Direction(nil), s.dirs...),
		Walk:       append([]WalkElement(nil), s.walk.Sequence...),
	}, nil
}

// orderComponents fixes the order components are written in.  Outside SMARTS
// mode it is the walk order; in SMARTS mode components of one query group are
// moved next to the group's first component.
func (s *session) orderComponents() {
	n := len(s.walk.Components)
	for i := 0; i < n; i++ {
		s.compOrder = append(s.compOrder, i)
	}
	if !s.opts.SMARTS {
		return
	}
	key := make([]int, n)
	first := make(map[int]int)
	for i, comp := range s.walk.Components {
		g := s.view.Atom(comp.Root).Component
		if g <= 0 {
			key[i] = i
			continue
		}
		if _, ok := first[g]; !ok {
			first[g] = i
		}
		key[i] = first[g]
	}
	sort.SliceStable(s.compOrder, func(a, b int) bool {
		return key[s.compOrder[a]] < key[s.compOrder[b]]
	})
}

// preorder calls fn for every tree step of the walk in text order.
func (s *session) preorder(fn func(v, parentEdge int)) {
	for _, ci := range s.compOrder {
		comp := s.walk.Components[ci]
		for _, el := range s.walk.Sequence[comp.Start:comp.End] {
			if !el.IsClosure {
				fn(el.Vertex, el.ParentEdge)
			}
		}
	}
}

// planDigits lists, per written atom, the closure labels written after its
// symbol and creates the detached stars in the order they are first
// referenced.
func (s *session) planDigits() {
	view := s.view
	s.preorder(func(v, _ int) {
		ds := s.digits[v]
		for _, e := range s.walk.Closings(v) {
			ds = append(ds, digit{kind: digitClose, bond: e, partner: view.Bond(e).Other(v), star: -1})
		}
		for _, e := range s.walk.Openings(v) {
			ds = append(ds, digit{kind: digitOpen, bond: e, partner: view.Bond(e).Other(v), star: -1})
		}
		for _, nb := range view.Neighbors(v) {
			if !s.detached[nb.Atom] {
				continue
			}
			idx := s.starOf[nb.Atom]
			if idx < 0 {
				idx = len(s.stars)
				s.starOf[nb.Atom] = idx
				s.stars = append(s.stars, star{rsite: nb.Atom, owner: -1})
			}
			s.stars[idx].bonds = append(s.stars[idx].bonds, nb.Bond)
			ds = append(ds, digit{kind: digitRSite, bond: nb.Bond, partner: nb.Atom, star: idx})
		}
		mask := view.Atom(v).AttachmentPoints
		for ap := 1; ap <= 2; ap++ {
			if mask&(1<<(ap-1)) == 0 {
				continue
			}
			idx := len(s.stars)
			s.stars = append(s.stars, star{rsite: -1, ap: ap, owner: v})
			ds = append(ds, digit{kind: digitAttachment, bond: -1, partner: -1, ap: ap, star: idx})
		}
		s.digits[v] = ds
	})
}

// assignIndices numbers atoms and bonds in the order they appear in the text.
// A bond is numbered where its symbol is written: before its child atom for
// tree bonds, at the opening label for closures.
func (s *session) assignIndices() {
	bond := func(e int) {
		if e >= 0 {
			s.bondIndex[e] = len(s.bondOrder)
		}
		s.bondOrder = append(s.bondOrder, e)
	}
	s.preorder(func(v, parentEdge int) {
		if parentEdge >= 0 {
			bond(parentEdge)
		}
		s.atomIndex[v] = len(s.atomOrder)
		s.atomOrder = append(s.atomOrder, v)
		for _, d := range s.digits[v] {
			if d.kind != digitClose {
				bond(d.bond)
			}
		}
	})
	for _, st := range s.stars {
		if st.rsite >= 0 {
			s.atomIndex[st.rsite] = len(s.atomOrder)
		}
		s.atomOrder = append(s.atomOrder, st.rsite)
	}
}
