// Package molecule defines the molecule-graph Data Transfer Objects and
// enumerations shared by every layer of molnotation.  No domain logic lives
// here, only plain data types that external adapters (molfile readers, JSON
// clients, the CLI) fill in and that the domain layer converts into a graph.
package molecule

// ─────────────────────────────────────────────────────────────────────────────
// AtomKind: tagged variant of an atom
// ─────────────────────────────────────────────────────────────────────────────

// AtomKind selects which fields of an atom are meaningful.
type AtomKind string

const (
	// AtomPlain is an ordinary element atom.
	AtomPlain AtomKind = "plain"

	// AtomPseudo is a labelled placeholder such as "Ph" or "Boc".
	AtomPseudo AtomKind = "pseudo"

	// AtomRSite is an R-group attachment site (R1, R2, ...).
	AtomRSite AtomKind = "rsite"

	// AtomQuery is a SMARTS query atom carrying a raw primitive expression.
	AtomQuery AtomKind = "query"
)

// ─────────────────────────────────────────────────────────────────────────────
// BondOrder
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder is the order of a bond, including the SMARTS query orders.
type BondOrder string

const (
	BondSingle           BondOrder = "single"
	BondDouble           BondOrder = "double"
	BondTriple           BondOrder = "triple"
	BondAromatic         BondOrder = "aromatic"
	BondAny              BondOrder = "any"
	BondSingleOrDouble   BondOrder = "single_or_double"
	BondSingleOrAromatic BondOrder = "single_or_aromatic"
	BondDoubleOrAromatic BondOrder = "double_or_aromatic"
	// BondQuery carries a raw SMARTS bond expression.
	BondQuery BondOrder = "query"
)

// IsQuery reports whether the order can only be expressed in SMARTS.
func (o BondOrder) IsQuery() bool {
	switch o {
	case BondSingle, BondDouble, BondTriple, BondAromatic:
		return false
	}
	return true
}

// Valence returns the contribution of the bond to an atom's valence.
// Aromatic bonds count as one; the extra aromatic electron is accounted for
// per atom.  Query orders contribute nothing.
func (o BondOrder) Valence() int {
	switch o {
	case BondSingle, BondAromatic:
		return 1
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	}
	return 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Radical
// ─────────────────────────────────────────────────────────────────────────────

// Radical is the spin state of an atom with unpaired electrons.
type Radical string

const (
	RadicalNone    Radical = ""
	RadicalSinglet Radical = "singlet"
	RadicalDoublet Radical = "doublet"
	RadicalTriplet Radical = "triplet"
)

// ─────────────────────────────────────────────────────────────────────────────
// Stereo enumerations
// ─────────────────────────────────────────────────────────────────────────────

// StereoKind classifies a stereocenter.  Kinds are ordered
// ANY < AND < OR < ABS; only AND and above carry spatial meaning.
type StereoKind string

const (
	StereoAny StereoKind = "any"
	StereoAnd StereoKind = "and"
	StereoOr  StereoKind = "or"
	StereoAbs StereoKind = "abs"
)

// Rank returns the position of k in the ANY < AND < OR < ABS ordering.
// Unknown kinds rank below ANY.
func (k StereoKind) Rank() int {
	switch k {
	case StereoAny:
		return 1
	case StereoAnd:
		return 2
	case StereoOr:
		return 3
	case StereoAbs:
		return 4
	}
	return 0
}

// IsSpatial reports whether the stereocenter should be written as @ or @@.
func (k StereoKind) IsSpatial() bool {
	return k.Rank() >= StereoAnd.Rank()
}

// CisTransParity is the stored configuration of a double bond.
type CisTransParity string

const (
	ParityNone  CisTransParity = ""
	ParityCis   CisTransParity = "cis"
	ParityTrans CisTransParity = "trans"
)

// Flip returns the opposite parity; ParityNone is unchanged.
func (p CisTransParity) Flip() CisTransParity {
	switch p {
	case ParityCis:
		return ParityTrans
	case ParityTrans:
		return ParityCis
	}
	return p
}

// Allene parities.
const (
	AlleneAnticlockwise = 1 // "@" for the stored substituent order
	AlleneClockwise     = 2 // "@@" for the stored substituent order
)

// SGroupKind distinguishes the S-group flavours that can be written.
type SGroupKind string

const (
	SGroupData    SGroupKind = "data"
	SGroupPolymer SGroupKind = "polymer"
)

// ─────────────────────────────────────────────────────────────────────────────
// GraphDocument: adapter-facing molecule graph
// ─────────────────────────────────────────────────────────────────────────────

// GraphDocument is the serialisable form of a molecular graph.  Indices are
// zero-based positions in Atoms and Bonds.
type GraphDocument struct {
	Name          string            `json:"name,omitempty" yaml:"name,omitempty"`
	Atoms         []AtomDTO         `json:"atoms" yaml:"atoms"`
	Bonds         []BondDTO         `json:"bonds,omitempty" yaml:"bonds,omitempty"`
	Stereocenters []StereocenterDTO `json:"stereocenters,omitempty" yaml:"stereocenters,omitempty"`
	CisTrans      []CisTransDTO     `json:"cis_trans,omitempty" yaml:"cis_trans,omitempty"`
	Allenes       []AlleneDTO       `json:"allenes,omitempty" yaml:"allenes,omitempty"`
	RGroups       []RGroupDTO       `json:"rgroups,omitempty" yaml:"rgroups,omitempty"`
	SGroups       []SGroupDTO       `json:"sgroups,omitempty" yaml:"sgroups,omitempty"`
}

// AtomDTO describes one atom.  Kind defaults to AtomPlain when empty.
type AtomDTO struct {
	Kind     AtomKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Element  string   `json:"element,omitempty" yaml:"element,omitempty"`
	Isotope  int      `json:"isotope,omitempty" yaml:"isotope,omitempty"`
	Charge   int      `json:"charge,omitempty" yaml:"charge,omitempty"`
	Radical  Radical  `json:"radical,omitempty" yaml:"radical,omitempty"`
	Aromatic bool     `json:"aromatic,omitempty" yaml:"aromatic,omitempty"`

	// ImplicitH is the number of implicit hydrogens.  Nil means the adapter
	// did not know it; organic-subset atoms then get the default valence
	// count.
	ImplicitH *int `json:"implicit_h,omitempty" yaml:"implicit_h,omitempty"`

	AtomMap int `json:"atom_map,omitempty" yaml:"atom_map,omitempty"`

	// Label is the pseudo-atom text (AtomPseudo only).
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// RGroups lists the R-group numbers allowed at an AtomRSite.
	RGroups []int `json:"rgroups,omitempty" yaml:"rgroups,omitempty"`

	// AttachmentPoints is a bit mask: 1 primary, 2 secondary.
	AttachmentPoints int `json:"attachment_points,omitempty" yaml:"attachment_points,omitempty"`

	// Query is the SMARTS primitive expression without brackets (AtomQuery only).
	Query string `json:"query,omitempty" yaml:"query,omitempty"`

	// Component groups fragments for SMARTS component-level grouping; 0 means none.
	Component int `json:"component,omitempty" yaml:"component,omitempty"`

	Highlighted bool `json:"highlighted,omitempty" yaml:"highlighted,omitempty"`

	// Query annotations.  RingBondCount and SubstitutionCount use -1 for
	// "as drawn" and 0 for unset.
	RingBondCount     int  `json:"ring_bond_count,omitempty" yaml:"ring_bond_count,omitempty"`
	SubstitutionCount int  `json:"substitution_count,omitempty" yaml:"substitution_count,omitempty"`
	Unsaturated       bool `json:"unsaturated,omitempty" yaml:"unsaturated,omitempty"`
}

// BondDTO describes one bond.
type BondDTO struct {
	Begin       int       `json:"begin" yaml:"begin"`
	End         int       `json:"end" yaml:"end"`
	Order       BondOrder `json:"order,omitempty" yaml:"order,omitempty"`
	Query       string    `json:"query,omitempty" yaml:"query,omitempty"`
	Highlighted bool      `json:"highlighted,omitempty" yaml:"highlighted,omitempty"`
	// Either marks a wavy bond of undefined stereo.
	Either bool `json:"either,omitempty" yaml:"either,omitempty"`
}

// StereocenterDTO describes a tetrahedral center.  Reading Pyramid as a
// SMILES neighbor order yields "@@"; -1 marks an implicit hydrogen or lone pair.
type StereocenterDTO struct {
	Atom    int        `json:"atom" yaml:"atom"`
	Kind    StereoKind `json:"kind" yaml:"kind"`
	Group   int        `json:"group,omitempty" yaml:"group,omitempty"`
	Pyramid [4]int     `json:"pyramid" yaml:"pyramid"`
}

// CisTransDTO describes the configuration of a double bond.  Substituents
// [0] and [1] sit on the bond's begin atom, [2] and [3] on its end atom; the
// parity relates [0] and [2].
type CisTransDTO struct {
	Bond         int            `json:"bond" yaml:"bond"`
	Parity       CisTransParity `json:"parity" yaml:"parity"`
	Substituents [4]int         `json:"substituents" yaml:"substituents"`
}

// AlleneDTO describes an axially chiral allene.  Substituents [0] and [1] sit
// on Left, [2] and [3] on Right.
type AlleneDTO struct {
	Center       int    `json:"center" yaml:"center"`
	Left         int    `json:"left" yaml:"left"`
	Right        int    `json:"right" yaml:"right"`
	Substituents [4]int `json:"substituents" yaml:"substituents"`
	Parity       int    `json:"parity" yaml:"parity"`
}

// RGroupDTO carries R-group logic.
type RGroupDTO struct {
	Number     int    `json:"number" yaml:"number"`
	Occurrence string `json:"occurrence,omitempty" yaml:"occurrence,omitempty"`
	RestH      bool   `json:"rest_h,omitempty" yaml:"rest_h,omitempty"`
	IfThen     int    `json:"if_then,omitempty" yaml:"if_then,omitempty"`
}

// SGroupDTO carries a data or polymer S-group.
type SGroupDTO struct {
	Kind         SGroupKind `json:"kind" yaml:"kind"`
	Atoms        []int      `json:"atoms" yaml:"atoms"`
	FieldName    string     `json:"field_name,omitempty" yaml:"field_name,omitempty"`
	FieldValue   string     `json:"field_value,omitempty" yaml:"field_value,omitempty"`
	Subscript    string     `json:"subscript,omitempty" yaml:"subscript,omitempty"`
	Connectivity string     `json:"connectivity,omitempty" yaml:"connectivity,omitempty"`
}
