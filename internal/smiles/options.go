// Package smiles writes molecular graphs as SMILES or SMARTS text with an
// optional ChemAxon-style extension block.  The work is split into a
// depth-first spanning walk, ring-closure label allocation, stereo encoding
// (tetrahedral, allene and cis/trans), token emission and the extension
// block; Saver sequences them.
package smiles

// RingCisTransMaxSize is the largest ring whose double-bond configuration is
// written in the extension block instead of with directional bonds.
const RingCisTransMaxSize = 7

// Options controls one serialization call.
type Options struct {
	// IgnoreHydrogens folds plain explicit hydrogens into their neighbor's
	// hydrogen count instead of writing them as atoms.
	IgnoreHydrogens bool

	// CanonizeChiralities normalizes AND/OR stereo groups so that the first
	// written member of each group reads "@" and renumbers the groups in order
	// of appearance.
	CanonizeChiralities bool

	// SMARTS selects query output.
	SMARTS bool

	// WriteExtensionBlock appends the " |...|" block when it has content.
	WriteExtensionBlock bool

	// IgnoreInvalidHCount writes bracket atoms with an unknown hydrogen count
	// without an H term instead of failing.
	IgnoreInvalidHCount bool

	// VertexRanks orders the walk: lower ranks are visited first.  Nil keeps
	// the neighbor-list order.
	VertexRanks []int

	// DetachRSites writes every R-site as a separate "*" component joined to
	// the rest of the molecule through reserved ring-closure labels.
	DetachRSites bool

	// SanitizePseudoLabels replaces unsafe characters in pseudo-atom labels
	// with "_" instead of failing.
	SanitizePseudoLabels bool

	// OperationLimit bounds the number of coarse work steps; 0 is unlimited.
	OperationLimit int
}

// Direction is the orientation of a directional single bond, expressed for
// the bond written from its begin atom to its end atom.
type Direction uint8

const (
	// DirNone marks a bond that is written without a direction.
	DirNone Direction = iota

	// DirUp is written "/" when the bond is written from begin to end.
	DirUp

	// DirDown is written "\" when the bond is written from begin to end.
	DirDown
)

// Flip returns the opposite direction; DirNone is unchanged.
func (d Direction) Flip() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	}
	return d
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "/"
	case DirDown:
		return "\\"
	}
	return ""
}

// Result is the outcome of a successful serialization.
type Result struct {
	Text string

	// AtomOrder maps emission index to graph atom index.  Attachment-point
	// stars have no graph atom and appear as -1.
	AtomOrder []int

	// BondOrder maps emission index to graph bond index, -1 for the bonds of
	// attachment-point stars.
	BondOrder []int

	// AtomIndex and BondIndex map graph indices to emission indices, -1 for
	// atoms and bonds that were not written.
	AtomIndex []int
	BondIndex []int

	// Directions holds the directional-bond assignment per graph bond.
	Directions []Direction

	// Walk is the spanning walk the text was produced from.
	Walk []WalkElement
}
