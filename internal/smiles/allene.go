package smiles

import (
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"

	"github.com/turtacn/molnotation/internal/domain/molecule"
)

// terminalSubstituents returns the two written substituents of an allene
// terminal, excluding the central atom, with -1 for its hydrogen.
func (s *session) terminalSubstituents(terminal, center int) ([]int, bool) {
	explicit, hPos := s.emittedNeighbors(terminal)
	h, _ := s.hydrogens(terminal)
	if h > 1 {
		return nil, false
	}
	all := withHydrogenSlot(explicit, hPos, h == 1)
	out := make([]int, 0, 2)
	for _, a := range all {
		if a != center {
			out = append(out, a)
		}
	}
	return out, len(out) == 2
}

// encodeAllenes writes the extended tetrahedral marker on each allene center.
func (s *session) encodeAllenes() error {
	for _, al := range s.view.Allenes() {
		if s.ignored[al.Center] {
			continue
		}
		marker, err := s.alleneMarker(al)
		if err != nil {
			return err
		}
		s.markers[al.Center] = marker
	}
	return nil
}

func (s *session) alleneMarker(al molecule.AlleneCenter) (string, error) {
	left, okL := s.terminalSubstituents(al.Left, al.Center)
	right, okR := s.terminalSubstituents(al.Right, al.Center)
	if !okL || !okR {
		return "", chiralityError(al.Center, "allene terminal needs two substituents")
	}

	stored := s.foldedAsSlot(al.Substituents[:])
	var written []int
	if s.atomIndex[al.Left] <= s.atomIndex[al.Right] {
		written = append(left, right...)
	} else {
		// Exchanging the two pairs is an even permutation.
		written = append(right, left...)
		stored = []int{stored[2], stored[3], stored[0], stored[1]}
	}

	parity, ok := alleneParity(stored, written)
	if !ok {
		return "", chiralityError(al.Center, "stored allene substituents do not match written neighbors")
	}
	anticlockwise := al.Parity == mtypes.AlleneAnticlockwise
	if parity == 1 {
		anticlockwise = !anticlockwise
	}
	if anticlockwise {
		return markerAnticlockwise, nil
	}
	return markerClockwise, nil
}

// alleneParity compares the pairs separately: each terminal may carry its own
// hydrogen slot, so -1 can appear once per pair.
func alleneParity(stored, written []int) (int, bool) {
	p1, ok1 := permutationParity(stored[:2], written[:2])
	p2, ok2 := permutationParity(stored[2:], written[2:])
	if !ok1 || !ok2 {
		return 0, false
	}
	return p1 ^ p2, true
}
