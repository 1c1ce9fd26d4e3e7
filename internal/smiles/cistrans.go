package smiles

import (
	"sort"

	"github.com/turtacn/molnotation/pkg/errors"
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

type ctState uint8

const (
	ctUnspecified ctState = iota
	ctInline
	ctRing        // small ring, written as c:/t:
	ctComplicated // no usable side bond on one end, written as c:/t:
)

// ctBond is the working copy of one stored cis/trans bond.
type ctBond struct {
	bond     int
	begin    int
	end      int
	parity   mtypes.CisTransParity
	subst    [4]int
	sides    [2][]int // usable side bonds on begin and end
	state    ctState
	resolved bool
}

// deferredCisTrans is a double bond whose configuration goes to the
// extension block.
type deferredCisTrans struct {
	bond int
	cis  bool
}

// normalizeSubstituents makes [0] and [2] real atoms, flipping the parity for
// every swap.  It reports false when one end has no substituent at all.
func normalizeSubstituents(subst [4]int, parity mtypes.CisTransParity) ([4]int, mtypes.CisTransParity, bool) {
	for _, k := range []int{0, 2} {
		if subst[k] < 0 && subst[k+1] >= 0 {
			subst[k], subst[k+1] = subst[k+1], subst[k]
			parity = parity.Flip()
		}
		if subst[k] < 0 {
			return subst, parity, false
		}
	}
	return subst, parity, true
}

// wantOutward returns the direction a side bond on the given end must read
// when written from the double-bond atom outwards to neighbor, given the
// orientation x of substituent [0].  Every step is either the identity or a
// flip, so applying it to an observed outward direction recovers x.
func (c *ctBond) wantOutward(side, neighbor int, x Direction) Direction {
	ref := c.subst[0]
	if side == 1 {
		if c.parity == mtypes.ParityTrans {
			x = x.Flip()
		}
		ref = c.subst[2]
	}
	if neighbor != ref {
		x = x.Flip()
	}
	return x
}

// outward returns the direction of bond e read from atom from.
func (s *session) outward(e, from int) Direction {
	if s.view.Bond(e).Begin == from {
		return s.dirs[e]
	}
	return s.dirs[e].Flip()
}

func (s *session) setOutward(e, from int, d Direction) {
	if s.view.Bond(e).Begin == from {
		s.dirs[e] = d
	} else {
		s.dirs[e] = d.Flip()
	}
}

// sideCandidates lists the written single bonds of atom other than towards
// partner.
func (s *session) sideCandidates(atom, partner int) []int {
	var out []int
	for _, nb := range s.view.Neighbors(atom) {
		if nb.Atom == partner || s.ignored[nb.Atom] {
			continue
		}
		if s.view.Bond(nb.Bond).Order != mtypes.BondSingle {
			continue
		}
		out = append(out, nb.Bond)
	}
	return out
}

// solveCisTrans fills s.dirs with slash/backslash assignments for every
// inline cis/trans bond and collects the bonds that go to the extension
// block.
func (s *session) solveCisTrans() error {
	view := s.view
	stored := view.CisTransBonds()
	if len(stored) == 0 {
		return nil
	}

	bonds := make([]*ctBond, 0, len(stored))
	banned := make([]bool, view.BondCount())
	for _, ct := range stored {
		b := view.Bond(ct.Bond)
		if s.bondIndex[ct.Bond] < 0 {
			continue
		}
		c := &ctBond{bond: ct.Bond, begin: b.Begin, end: b.End}
		var ok bool
		c.subst, c.parity, ok = normalizeSubstituents(ct.Substituents, ct.Parity)
		size := view.EdgeRingSize(ct.Bond)
		switch {
		case !ok || c.parity == mtypes.ParityNone:
			c.state = ctUnspecified
		case size > 0 && size <= RingCisTransMaxSize:
			c.state = ctRing
		default:
			c.state = ctInline
		}
		c.sides[0] = s.sideCandidates(c.begin, c.end)
		c.sides[1] = s.sideCandidates(c.end, c.begin)
		if c.state == ctUnspecified || c.state == ctRing {
			for _, side := range c.sides {
				for _, e := range side {
					banned[e] = true
				}
			}
		}
		bonds = append(bonds, c)
	}

	users := make(map[int][]int)
	inline := make([]int, 0, len(bonds))
	for i, c := range bonds {
		if c.state != ctInline {
			continue
		}
		for k := range c.sides {
			kept := c.sides[k][:0]
			for _, e := range c.sides[k] {
				if !banned[e] {
					kept = append(kept, e)
				}
			}
			c.sides[k] = kept
		}
		if len(c.sides[0]) == 0 || len(c.sides[1]) == 0 {
			c.state = ctComplicated
			continue
		}
		for _, side := range c.sides {
			for _, e := range side {
				users[e] = append(users[e], i)
			}
		}
		inline = append(inline, i)
	}
	sort.SliceStable(inline, func(a, b int) bool {
		return s.bondIndex[bonds[inline[a]].bond] < s.bondIndex[bonds[inline[b]].bond]
	})

	queue := make([]int, 0, len(inline))
	queued := make([]bool, len(bonds))
	resolve := func(i int) error {
		if err := s.budget.spend(1); err != nil {
			return err
		}
		c := bonds[i]
		x := DirNone
		for k, side := range c.sides {
			atom := c.begin
			if k == 1 {
				atom = c.end
			}
			for _, e := range side {
				if s.dirs[e] == DirNone {
					continue
				}
				neighbor := view.Bond(e).Other(atom)
				implied := c.wantOutward(k, neighbor, s.outward(e, atom))
				if x == DirNone {
					x = implied
				} else if x != implied {
					return errors.New(errors.ErrCodeIncompatibleCisTrans, "incompatible cis-trans configuration").
						WithDetailf("bond=%d", c.bond)
				}
			}
		}
		if x == DirNone {
			return nil
		}
		for k, side := range c.sides {
			atom := c.begin
			if k == 1 {
				atom = c.end
			}
			for _, e := range side {
				if s.dirs[e] != DirNone {
					continue
				}
				s.setOutward(e, atom, c.wantOutward(k, view.Bond(e).Other(atom), x))
				for _, j := range users[e] {
					if !bonds[j].resolved && !queued[j] {
						queued[j] = true
						queue = append(queue, j)
					}
				}
			}
		}
		c.resolved = true
		return nil
	}
	drain := func() error {
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			queued[i] = false
			if bonds[i].resolved {
				continue
			}
			if err := resolve(i); err != nil {
				return err
			}
		}
		return nil
	}

	for _, i := range inline {
		c := bonds[i]
		if c.resolved {
			continue
		}
		seed := s.firstWritten(append(append([]int(nil), c.sides[0]...), c.sides[1]...))
		if s.dirs[seed] == DirNone {
			s.dirs[seed] = DirUp
		}
		if err := resolve(i); err != nil {
			return err
		}
		if err := drain(); err != nil {
			return err
		}
	}

	for _, c := range bonds {
		if c.state != ctRing && c.state != ctComplicated {
			continue
		}
		if d, ok := s.deferCisTrans(c); ok {
			s.ringCT = append(s.ringCT, d)
		}
	}
	sort.Slice(s.ringCT, func(a, b int) bool {
		return s.bondIndex[s.ringCT[a].bond] < s.bondIndex[s.ringCT[b].bond]
	})
	return nil
}

// firstWritten returns the bond of edges written earliest.
func (s *session) firstWritten(edges []int) int {
	best := edges[0]
	for _, e := range edges[1:] {
		if s.bondIndex[e] < s.bondIndex[best] {
			best = e
		}
	}
	return best
}

// deferCisTrans re-expresses the stored parity relative to the earliest
// written neighbor on each end of the double bond.
func (s *session) deferCisTrans(c *ctBond) (deferredCisTrans, bool) {
	parity := c.parity
	for k, atom := range []int{c.begin, c.end} {
		partner := c.end
		if k == 1 {
			partner = c.begin
		}
		first := -1
		for _, nb := range s.view.Neighbors(atom) {
			if nb.Atom == partner || s.atomIndex[nb.Atom] < 0 {
				continue
			}
			if first < 0 || s.atomIndex[nb.Atom] < s.atomIndex[first] {
				first = nb.Atom
			}
		}
		if first < 0 {
			return deferredCisTrans{}, false
		}
		if first != c.subst[2*k] {
			parity = parity.Flip()
		}
	}
	return deferredCisTrans{bond: c.bond, cis: parity == mtypes.ParityCis}, true
}
