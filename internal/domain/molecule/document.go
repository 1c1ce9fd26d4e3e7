package molecule

import (
	"github.com/turtacn/molnotation/pkg/errors"
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

// FromDocument validates doc and builds a Graph from it.  Unknown hydrogen
// counts on organic-subset atoms are filled in from default valences.
func FromDocument(doc *mtypes.GraphDocument) (*Graph, error) {
	if doc == nil || len(doc.Atoms) == 0 {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidFormat, "graph document has no atoms")
	}
	g := NewGraph()
	n := len(doc.Atoms)

	for i, a := range doc.Atoms {
		kind := a.Kind
		if kind == "" {
			kind = mtypes.AtomPlain
		}
		switch kind {
		case mtypes.AtomPlain:
			if a.Element == "" {
				return nil, invalidDoc("plain atom without element", "atom", i)
			}
		case mtypes.AtomQuery:
			if a.Query == "" {
				return nil, invalidDoc("query atom without expression", "atom", i)
			}
		case mtypes.AtomPseudo, mtypes.AtomRSite:
		default:
			return nil, invalidDoc("unknown atom kind "+string(kind), "atom", i)
		}
		h := -1
		if a.ImplicitH != nil {
			h = *a.ImplicitH
		}
		g.AddAtom(Atom{
			Kind:              kind,
			Element:           a.Element,
			Isotope:           a.Isotope,
			Charge:            a.Charge,
			Radical:           a.Radical,
			Aromatic:          a.Aromatic,
			ImplicitH:         h,
			AtomMap:           a.AtomMap,
			Label:             a.Label,
			RGroups:           append([]int(nil), a.RGroups...),
			AttachmentPoints:  a.AttachmentPoints,
			Query:             a.Query,
			Component:         a.Component,
			Highlighted:       a.Highlighted,
			RingBondCount:     a.RingBondCount,
			SubstitutionCount: a.SubstitutionCount,
			Unsaturated:       a.Unsaturated,
		})
	}

	for e, b := range doc.Bonds {
		if !inRange(b.Begin, n) || !inRange(b.End, n) || b.Begin == b.End {
			return nil, invalidDoc("bond endpoints out of range", "bond", e)
		}
		if g.FindBond(b.Begin, b.End) >= 0 {
			return nil, invalidDoc("duplicate bond", "bond", e)
		}
		if b.Order == mtypes.BondQuery && b.Query == "" {
			return nil, invalidDoc("query bond without expression", "bond", e)
		}
		g.AddBondDetailed(Bond{
			Begin:       b.Begin,
			End:         b.End,
			Order:       b.Order,
			Query:       b.Query,
			Highlighted: b.Highlighted,
			Either:      b.Either,
		})
	}

	for i, s := range doc.Stereocenters {
		if !inRange(s.Atom, n) {
			return nil, invalidDoc("stereocenter atom out of range", "stereocenter", i)
		}
		for _, p := range s.Pyramid {
			if p != -1 && (!inRange(p, n) || g.FindBond(s.Atom, p) < 0) {
				return nil, invalidDoc("pyramid entry is not a neighbor", "stereocenter", i)
			}
		}
		g.AddStereocenter(Stereocenter{Atom: s.Atom, Kind: s.Kind, Group: s.Group, Pyramid: s.Pyramid})
	}

	for i, c := range doc.CisTrans {
		if !inRange(c.Bond, g.BondCount()) {
			return nil, invalidDoc("cis-trans bond out of range", "cis_trans", i)
		}
		b := g.Bond(c.Bond)
		for k, s := range c.Substituents {
			if s == -1 {
				continue
			}
			side := b.Begin
			if k >= 2 {
				side = b.End
			}
			if !inRange(s, n) || g.FindBond(side, s) < 0 {
				return nil, invalidDoc("cis-trans substituent is not a neighbor", "cis_trans", i)
			}
		}
		g.AddCisTrans(CisTransBond{Bond: c.Bond, Parity: c.Parity, Substituents: c.Substituents})
	}

	for i, a := range doc.Allenes {
		if !inRange(a.Center, n) || !inRange(a.Left, n) || !inRange(a.Right, n) {
			return nil, invalidDoc("allene atom out of range", "allene", i)
		}
		if a.Parity != mtypes.AlleneAnticlockwise && a.Parity != mtypes.AlleneClockwise {
			return nil, invalidDoc("allene parity must be 1 or 2", "allene", i)
		}
		g.AddAllene(AlleneCenter{
			Center:       a.Center,
			Left:         a.Left,
			Right:        a.Right,
			Substituents: a.Substituents,
			Parity:       a.Parity,
		})
	}

	for _, r := range doc.RGroups {
		g.AddRGroup(RGroup{Number: r.Number, Occurrence: r.Occurrence, RestH: r.RestH, IfThen: r.IfThen})
	}
	for i, s := range doc.SGroups {
		for _, a := range s.Atoms {
			if !inRange(a, n) {
				return nil, invalidDoc("sgroup atom out of range", "sgroup", i)
			}
		}
		g.AddSGroup(SGroup{
			Kind:         s.Kind,
			Atoms:        append([]int(nil), s.Atoms...),
			FieldName:    s.FieldName,
			FieldValue:   s.FieldValue,
			Subscript:    s.Subscript,
			Connectivity: s.Connectivity,
		})
	}

	g.AssignDefaultHydrogens()
	return g, nil
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}

func invalidDoc(msg, what string, idx int) error {
	return errors.New(errors.ErrCodeMoleculeInvalidFormat, msg).WithDetailf("%s=%d", what, idx)
}
