// Package molecule provides the molecular graph consumed by the notation
// writers: atoms, bonds, ring topology per edge, stereo descriptors and the
// extension data (R-group logic, S-groups) that travel with a structure.
package molecule

import (
	"sync"

	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

// Graph is the concrete View implementation.  It is built incrementally and
// then treated as immutable; concurrent readers are safe once building is
// finished.
type Graph struct {
	atoms []Atom
	bonds []Bond
	adj   [][]Neighbor

	stereocenters []Stereocenter
	cisTrans      []CisTransBond
	allenes       []AlleneCenter
	rgroups       []RGroup
	sgroups       []SGroup

	ringOnce  *sync.Once
	ringSizes []int
}

var _ View = (*Graph)(nil)

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{ringOnce: new(sync.Once)}
}

// AddAtom appends a and returns its index.  An empty Kind means AtomPlain.
func (g *Graph) AddAtom(a Atom) int {
	if a.Kind == "" {
		a.Kind = mtypes.AtomPlain
	}
	g.atoms = append(g.atoms, a)
	g.adj = append(g.adj, nil)
	return len(g.atoms) - 1
}

// AddElement is a shorthand for a plain atom with an unknown hydrogen count.
func (g *Graph) AddElement(element string) int {
	return g.AddAtom(Atom{Kind: mtypes.AtomPlain, Element: element, ImplicitH: -1})
}

// AddBond joins begin and end with the given order and returns the bond index.
func (g *Graph) AddBond(begin, end int, order mtypes.BondOrder) int {
	return g.AddBondDetailed(Bond{Begin: begin, End: end, Order: order})
}

// AddBondDetailed appends b as given.
func (g *Graph) AddBondDetailed(b Bond) int {
	if b.Order == "" {
		b.Order = mtypes.BondSingle
	}
	e := len(g.bonds)
	g.bonds = append(g.bonds, b)
	g.adj[b.Begin] = append(g.adj[b.Begin], Neighbor{Atom: b.End, Bond: e})
	g.adj[b.End] = append(g.adj[b.End], Neighbor{Atom: b.Begin, Bond: e})
	g.ringOnce = new(sync.Once)
	return e
}

// UpdateAtom replaces the atom at index i.
func (g *Graph) UpdateAtom(i int, a Atom) {
	g.atoms[i] = a
}

// SetImplicitHydrogens sets the implicit hydrogen count of atom i.
func (g *Graph) SetImplicitHydrogens(i, n int) {
	g.atoms[i].ImplicitH = n
}

func (g *Graph) AddStereocenter(s Stereocenter)  { g.stereocenters = append(g.stereocenters, s) }
func (g *Graph) AddCisTrans(c CisTransBond)      { g.cisTrans = append(g.cisTrans, c) }
func (g *Graph) AddAllene(a AlleneCenter)        { g.allenes = append(g.allenes, a) }
func (g *Graph) AddRGroup(r RGroup)              { g.rgroups = append(g.rgroups, r) }
func (g *Graph) AddSGroup(s SGroup)              { g.sgroups = append(g.sgroups, s) }
func (g *Graph) AtomCount() int                  { return len(g.atoms) }
func (g *Graph) BondCount() int                  { return len(g.bonds) }
func (g *Graph) Atom(i int) Atom                 { return g.atoms[i] }
func (g *Graph) Bond(e int) Bond                 { return g.bonds[e] }
func (g *Graph) Neighbors(v int) []Neighbor      { return g.adj[v] }
func (g *Graph) Stereocenters() []Stereocenter   { return g.stereocenters }
func (g *Graph) CisTransBonds() []CisTransBond   { return g.cisTrans }
func (g *Graph) Allenes() []AlleneCenter         { return g.allenes }
func (g *Graph) RGroups() []RGroup               { return g.rgroups }
func (g *Graph) SGroups() []SGroup               { return g.sgroups }

// FindBond returns the bond joining a and b, or -1.
func (g *Graph) FindBond(a, b int) int {
	for _, nb := range g.adj[a] {
		if nb.Atom == b {
			return nb.Bond
		}
	}
	return -1
}

// EdgeRingSize returns the smallest ring size containing bond e, 0 for chain
// bonds.  Sizes are computed once for the whole graph on first use.
func (g *Graph) EdgeRingSize(e int) int {
	g.ringOnce.Do(func() {
		g.ringSizes = smallestRingSizes(g)
	})
	return g.ringSizes[e]
}

// IsRingBond reports whether bond e lies on a cycle.
func (g *Graph) IsRingBond(e int) bool {
	return g.EdgeRingSize(e) > 0
}

// BondValence returns the summed valence contribution of v's bonds and the
// number of aromatic bonds among them.
func BondValence(view View, v int) (valence, aromatic int) {
	for _, nb := range view.Neighbors(v) {
		order := view.Bond(nb.Bond).Order
		valence += order.Valence()
		if order == mtypes.BondAromatic {
			aromatic++
		}
	}
	return valence, aromatic
}

// AssignDefaultHydrogens fills in unknown hydrogen counts of uncharged,
// radical-free organic-subset atoms using their default valences.  Atoms
// whose count is already known are left alone.
func (g *Graph) AssignDefaultHydrogens() {
	for i := range g.atoms {
		a := &g.atoms[i]
		if a.Kind != mtypes.AtomPlain || a.ImplicitH >= 0 || a.Charge != 0 || a.Radical != mtypes.RadicalNone {
			continue
		}
		if !IsOrganicSubset(a.Element) {
			continue
		}
		valence, aromatic := BondValence(g, i)
		valence += a.AttachmentPointCount()
		a.ImplicitH = ImpliedHydrogens(a.Element, a.Aromatic, valence, aromatic)
	}
}
