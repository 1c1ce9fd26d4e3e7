package smiles

import (
	"github.com/turtacn/molnotation/internal/domain/molecule"
	"github.com/turtacn/molnotation/pkg/errors"
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

type digitKind uint8

const (
	digitClose digitKind = iota // second occurrence of a ring closure
	digitOpen                   // first occurrence of a ring closure
	digitRSite                  // pseudo-closure towards a detached R-site
	digitAttachment             // pseudo-closure towards an attachment-point star
)

// digit is one ring-closure label written after an atom symbol.
type digit struct {
	kind    digitKind
	bond    int // -1 for attachment points
	partner int // -1 for attachment points
	ap      int // attachment point number
	star    int // index in session.stars for pseudo-closures
}

// star is a detached "*" written after the main components.
type star struct {
	rsite int // graph atom of a detached R-site, -1 for attachment points
	ap    int
	bonds []int // pseudo-closure bonds in opening order (R-sites)
	owner int   // atom carrying the attachment point
}

// budget enforces Options.OperationLimit at coarse steps.
type budget struct {
	limit int
	used  int
}

func (b *budget) spend(n int) error {
	if b.limit <= 0 {
		return nil
	}
	b.used += n
	if b.used > b.limit {
		return errors.New(errors.ErrCodeOperationLimitExceeded, "operation limit exceeded").
			WithDetailf("limit=%d", b.limit)
	}
	return nil
}

// session is the call-scoped arena.  Sessions are pooled by the Saver and
// reset at the start of each call; nothing in it outlives the call except
// copies handed out in Result.
type session struct {
	view   molecule.View
	opts   Options
	budget budget

	folded   []bool // explicit hydrogen folded into its neighbor
	foldedH  []int  // folded hydrogens per heavy atom
	detached []bool // R-site written as a separate star
	ignored  []bool
	mustRoot []bool

	walk      *Walk
	compOrder []int

	digits    [][]digit
	stars     []star
	starOf    []int // detached R-site atom → index in stars
	atomIndex []int
	atomOrder []int
	bondIndex []int
	bondOrder []int

	markers    []string // chirality token per atom
	stereoOf   []int    // atom → stereocenter index, -1
	groupOf    []int    // stereocenter index → written group number
	dirs       []Direction
	ringCT     []deferredCisTrans
	nbrScratch []int
}

func resetInts(buf []int, n, value int) []int {
	if cap(buf) < n {
		buf = make([]int, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = value
	}
	return buf
}

func resetBools(buf []bool, n int) []bool {
	if cap(buf) < n {
		buf = make([]bool, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = false
	}
	return buf
}

func (s *session) reset(view molecule.View, opts Options) {
	n, m := view.AtomCount(), view.BondCount()
	s.view = view
	s.opts = opts
	s.budget = budget{limit: opts.OperationLimit}

	s.folded = resetBools(s.folded, n)
	s.foldedH = resetInts(s.foldedH, n, 0)
	s.detached = resetBools(s.detached, n)
	s.ignored = resetBools(s.ignored, n)
	s.mustRoot = resetBools(s.mustRoot, n)
	s.starOf = resetInts(s.starOf, n, -1)
	s.atomIndex = resetInts(s.atomIndex, n, -1)
	s.bondIndex = resetInts(s.bondIndex, m, -1)
	s.stereoOf = resetInts(s.stereoOf, n, -1)

	if cap(s.digits) < n {
		s.digits = make([][]digit, n)
	}
	s.digits = s.digits[:n]
	for i := range s.digits {
		s.digits[i] = s.digits[i][:0]
	}
	if cap(s.markers) < n {
		s.markers = make([]string, n)
	}
	s.markers = s.markers[:n]
	for i := range s.markers {
		s.markers[i] = ""
	}
	if cap(s.dirs) < m {
		s.dirs = make([]Direction, m)
	}
	s.dirs = s.dirs[:m]
	for i := range s.dirs {
		s.dirs[i] = DirNone
	}

	s.walk = nil
	s.compOrder = s.compOrder[:0]
	s.stars = s.stars[:0]
	s.atomOrder = s.atomOrder[:0]
	s.bondOrder = s.bondOrder[:0]
	s.groupOf = s.groupOf[:0]
	s.ringCT = s.ringCT[:0]
}

// release drops references to caller data before the session is pooled.
func (s *session) release() {
	s.view = nil
	s.walk = nil
	s.opts.VertexRanks = nil
}

// markIgnored decides which atoms are folded or detached and which must start
// a component.
func (s *session) markIgnored() {
	view := s.view
	if s.opts.IgnoreHydrogens {
		for h := 0; h < view.AtomCount(); h++ {
			if heavy, ok := s.foldableHydrogen(h); ok {
				s.folded[h] = true
				s.ignored[h] = true
				s.foldedH[heavy]++
			}
		}
	}
	for v := 0; v < view.AtomCount(); v++ {
		if view.Atom(v).Kind != mtypes.AtomRSite {
			continue
		}
		if s.opts.DetachRSites && s.detachable(v) {
			s.detached[v] = true
			s.ignored[v] = true
			continue
		}
		s.mustRoot[v] = true
	}
}

func (s *session) foldableHydrogen(h int) (int, bool) {
	view := s.view
	atom := view.Atom(h)
	if !atom.IsPlainHydrogen() {
		return -1, false
	}
	nbrs := view.Neighbors(h)
	if len(nbrs) != 1 || view.Bond(nbrs[0].Bond).Order != mtypes.BondSingle {
		return -1, false
	}
	heavy := view.Atom(nbrs[0].Atom)
	if heavy.Kind != mtypes.AtomPlain || heavy.Element == "H" || heavy.ImplicitH < 0 {
		return -1, false
	}
	return nbrs[0].Atom, true
}

func (s *session) detachable(r int) bool {
	nbrs := s.view.Neighbors(r)
	if len(nbrs) == 0 {
		return false
	}
	for _, nb := range nbrs {
		if s.view.Atom(nb.Atom).Kind == mtypes.AtomRSite || s.folded[nb.Atom] {
			return false
		}
	}
	return true
}

// hydrogens returns the total hydrogen count of v and whether it is known.
func (s *session) hydrogens(v int) (int, bool) {
	h := s.view.Atom(v).ImplicitH
	if h < 0 {
		return s.foldedH[v], false
	}
	return h + s.foldedH[v], true
}

// reservedLabels counts the pseudo-closures that need reserved labels.
func (s *session) reservedLabels() int {
	n := 0
	for v := 0; v < s.view.AtomCount(); v++ {
		if s.detached[v] {
			n += len(s.view.Neighbors(v))
		}
		if !s.ignored[v] {
			n += s.view.Atom(v).AttachmentPointCount()
		}
	}
	return n
}
