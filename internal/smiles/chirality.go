package smiles

import (
	"sort"

	"github.com/turtacn/molnotation/pkg/errors"
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

const (
	markerClockwise     = "@@"
	markerAnticlockwise = "@"
)

// emittedNeighbors returns the written neighbors of v in text order (parent,
// ring-closure partners, children) and the position the hydrogen slot takes
// in that list.  The returned slice is reused by the next call.
func (s *session) emittedNeighbors(v int) ([]int, int) {
	buf := s.nbrScratch[:0]
	hPos := 0
	if p := s.walk.Parent(v); p >= 0 {
		buf = append(buf, p)
		hPos = 1
	}
	for _, d := range s.digits[v] {
		if d.partner >= 0 {
			buf = append(buf, d.partner)
		}
	}
	buf = append(buf, s.walk.Children(v)...)
	s.nbrScratch = buf
	return buf, hPos
}

// withHydrogenSlot copies explicit into a new slice with -1 inserted at hPos.
func withHydrogenSlot(explicit []int, hPos int, slot bool) []int {
	out := make([]int, 0, len(explicit)+1)
	out = append(out, explicit[:hPos]...)
	if slot {
		out = append(out, -1)
	}
	return append(out, explicit[hPos:]...)
}

// foldedAsSlot replaces folded explicit hydrogens by the -1 slot marker.
func (s *session) foldedAsSlot(atoms []int) []int {
	out := make([]int, len(atoms))
	for i, a := range atoms {
		if a >= 0 && s.folded[a] {
			a = -1
		}
		out[i] = a
	}
	return out
}

// permutationParity returns 0 when to is an even permutation of from and 1
// when it is odd.  ok is false when the two lists do not hold the same
// entries, or hold -1 more than once.
func permutationParity(from, to []int) (parity int, ok bool) {
	if len(from) != len(to) {
		return 0, false
	}
	slots := 0
	for _, x := range from {
		if x == -1 {
			slots++
		}
	}
	if slots > 1 {
		return 0, false
	}
	perm := make([]int, len(to))
	used := make([]bool, len(from))
	for i, x := range to {
		perm[i] = -1
		for j, y := range from {
			if !used[j] && y == x {
				perm[i] = j
				used[j] = true
				break
			}
		}
		if perm[i] < 0 {
			return 0, false
		}
	}
	for i := range perm {
		for j := i + 1; j < len(perm); j++ {
			if perm[i] > perm[j] {
				parity ^= 1
			}
		}
	}
	return parity, true
}

func chiralityError(atom int, reason string) error {
	return errors.New(errors.ErrCodeUnrepresentableChirality, "chirality not possible on atom").
		WithDetailf("atom=%d: %s", atom, reason)
}

// encodeTetrahedral computes the @/@@ marker of every written stereocenter of
// kind AND or above.
func (s *session) encodeTetrahedral() error {
	for i, sc := range s.view.Stereocenters() {
		if !sc.Kind.IsSpatial() || s.ignored[sc.Atom] {
			continue
		}
		s.stereoOf[sc.Atom] = i

		v := sc.Atom
		explicit, hPos := s.emittedNeighbors(v)
		h, _ := s.hydrogens(v)
		if h > 1 {
			return chiralityError(v, "more than one hydrogen")
		}
		order := withHydrogenSlot(explicit, hPos, h == 1 || len(explicit) == 3)
		if len(order) != 4 {
			return chiralityError(v, "center needs four neighbors or three and a hydrogen")
		}
		parity, ok := permutationParity(s.foldedAsSlot(sc.Pyramid[:]), order)
		if !ok {
			return chiralityError(v, "stored neighbors do not match written neighbors")
		}
		if parity == 0 {
			s.markers[v] = markerClockwise
		} else {
			s.markers[v] = markerAnticlockwise
		}
	}
	return nil
}

func invertMarker(m string) string {
	switch m {
	case markerClockwise:
		return markerAnticlockwise
	case markerAnticlockwise:
		return markerClockwise
	}
	return m
}

type stereoGroupKey struct {
	kind  mtypes.StereoKind
	group int
}

// assignGroups fixes the group numbers written to the extension block.  With
// CanonizeChiralities, AND/OR groups are renumbered in order of their first
// written member and inverted as a whole so that member reads "@".
func (s *session) assignGroups() {
	scs := s.view.Stereocenters()
	s.groupOf = resetInts(s.groupOf, len(scs), 0)
	for i, sc := range scs {
		s.groupOf[i] = sc.Group
	}
	if !s.opts.CanonizeChiralities {
		return
	}

	relative := make([]int, 0, len(scs))
	for i, sc := range scs {
		if (sc.Kind == mtypes.StereoAnd || sc.Kind == mtypes.StereoOr) && s.markers[sc.Atom] != "" && s.stereoOf[sc.Atom] == i {
			relative = append(relative, i)
		}
	}
	sort.SliceStable(relative, func(a, b int) bool {
		return s.atomIndex[scs[relative[a]].Atom] < s.atomIndex[scs[relative[b]].Atom]
	})

	renumber := make(map[stereoGroupKey]int)
	invert := make(map[stereoGroupKey]bool)
	next := map[mtypes.StereoKind]int{}
	for _, i := range relative {
		sc := scs[i]
		key := stereoGroupKey{kind: sc.Kind, group: sc.Group}
		num, seen := renumber[key]
		if !seen {
			next[sc.Kind]++
			num = next[sc.Kind]
			renumber[key] = num
			invert[key] = s.markers[sc.Atom] == markerClockwise
		}
		s.groupOf[i] = num
		if invert[key] {
			s.markers[sc.Atom] = invertMarker(s.markers[sc.Atom])
		}
	}
}
