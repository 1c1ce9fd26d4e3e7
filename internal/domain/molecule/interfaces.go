package molecule

import (
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

// View is the read-only molecular graph the serializer consumes.  It must not
// change while a serialization call is running.
type View interface {
	AtomCount() int
	BondCount() int
	Atom(i int) Atom
	Bond(e int) Bond

	// Neighbors returns the incident (atom, bond) pairs of v in neighbor-list
	// order.  The returned slice must not be modified.
	Neighbors(v int) []Neighbor

	// FindBond returns the index of the bond joining a and b, or -1.
	FindBond(a, b int) int

	// EdgeRingSize returns the size of the smallest ring containing bond e,
	// or 0 when e is a chain bond.
	EdgeRingSize(e int) int

	Stereocenters() []Stereocenter
	CisTransBonds() []CisTransBond
	Allenes() []AlleneCenter
	RGroups() []RGroup
	SGroups() []SGroup
}

// Atom is a tagged variant: Kind selects which fields are meaningful.
type Atom struct {
	Kind     mtypes.AtomKind
	Element  string
	Isotope  int
	Charge   int
	Radical  mtypes.Radical
	Aromatic bool

	// ImplicitH is the implicit hydrogen count, -1 when unknown.
	ImplicitH int
	AtomMap   int

	Label            string // AtomPseudo
	RGroups          []int  // AtomRSite
	AttachmentPoints int    // bit mask, 1 primary, 2 secondary
	Query            string // AtomQuery

	Component   int
	Highlighted bool

	RingBondCount     int
	SubstitutionCount int
	Unsaturated       bool
}

// IsPlainHydrogen reports whether a is an ordinary, isotope-free, uncharged
// hydrogen atom.
func (a Atom) IsPlainHydrogen() bool {
	return a.Kind == mtypes.AtomPlain && a.Element == "H" && a.Isotope == 0 &&
		a.Charge == 0 && a.Radical == mtypes.RadicalNone && a.AtomMap == 0
}

// RGroupNumber returns the first R-group number of an R-site, or 0.
func (a Atom) RGroupNumber() int {
	if a.Kind != mtypes.AtomRSite || len(a.RGroups) == 0 {
		return 0
	}
	return a.RGroups[0]
}

// AttachmentPointCount returns how many attachment points the atom carries.
func (a Atom) AttachmentPointCount() int {
	n := 0
	if a.AttachmentPoints&1 != 0 {
		n++
	}
	if a.AttachmentPoints&2 != 0 {
		n++
	}
	return n
}

// Bond joins Begin and End.
type Bond struct {
	Begin       int
	End         int
	Order       mtypes.BondOrder
	Query       string
	Highlighted bool
	Either      bool
}

// Other returns the endpoint of b that is not v.
func (b Bond) Other(v int) int {
	if b.Begin == v {
		return b.End
	}
	return b.Begin
}

// Neighbor is one entry of an atom's neighbor list.
type Neighbor struct {
	Atom int
	Bond int
}

// Stereocenter is a tetrahedral center.  Reading Pyramid as a SMILES neighbor
// order yields "@@"; -1 marks the implicit hydrogen or lone pair.
type Stereocenter struct {
	Atom    int
	Kind    mtypes.StereoKind
	Group   int
	Pyramid [4]int
}

// CisTransBond is the stored configuration of a double bond.
type CisTransBond struct {
	Bond         int
	Parity       mtypes.CisTransParity
	Substituents [4]int
}

// AlleneCenter is an axially chiral allene around Center.
type AlleneCenter struct {
	Center       int
	Left         int
	Right        int
	Substituents [4]int
	Parity       int
}

// RGroup is the logic attached to one R-group number.
type RGroup struct {
	Number     int
	Occurrence string
	RestH      bool
	IfThen     int
}

// SGroup is a data or polymer S-group over a set of atoms.
type SGroup struct {
	Kind         mtypes.SGroupKind
	Atoms        []int
	FieldName    string
	FieldValue   string
	Subscript    string
	Connectivity string
}
