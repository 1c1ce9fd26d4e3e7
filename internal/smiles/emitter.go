package smiles

import (
	"strconv"
	"strings"

	"github.com/turtacn/molnotation/internal/domain/molecule"
	"github.com/turtacn/molnotation/pkg/errors"
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

// lowercase reports whether v is written with a lowercase aromatic symbol.
func (s *session) lowercase(v int) bool {
	a := s.view.Atom(v)
	if a.Kind != mtypes.AtomPlain || !a.Aromatic {
		return false
	}
	_, ok := molecule.AromaticSymbol(a.Element)
	return ok
}

// writtenValence sums the bonds of v as they appear in the text: bonds to
// folded hydrogens are left out and attachment points count as single bonds.
func (s *session) writtenValence(v int) (valence, aromatic int) {
	for _, nb := range s.view.Neighbors(v) {
		if s.folded[nb.Atom] {
			continue
		}
		order := s.view.Bond(nb.Bond).Order
		valence += order.Valence()
		if order == mtypes.BondAromatic {
			aromatic++
		}
	}
	return valence + s.view.Atom(v).AttachmentPointCount(), aromatic
}

func notRepresentable(msg string, atom int) error {
	return errors.New(errors.ErrCodeAtomNotRepresentable, msg).WithDetailf("atom=%d", atom)
}

func writeCharge(sb *strings.Builder, charge int) {
	switch {
	case charge == 1:
		sb.WriteByte('+')
	case charge == -1:
		sb.WriteByte('-')
	case charge > 1:
		sb.WriteByte('+')
		sb.WriteString(strconv.Itoa(charge))
	case charge < -1:
		sb.WriteByte('-')
		sb.WriteString(strconv.Itoa(-charge))
	}
}

// atomToken renders atom v, using brackets only when a reader could not
// reconstruct the atom from the bare symbol.
func (s *session) atomToken(v int) (string, error) {
	a := s.view.Atom(v)
	marker := s.markers[v]

	switch a.Kind {
	case mtypes.AtomQuery:
		if !s.opts.SMARTS {
			return "", notRepresentable("query atom cannot be written as SMILES", v)
		}
		var sb strings.Builder
		sb.WriteByte('[')
		sb.WriteString(a.Query)
		if marker != "" {
			if strings.ContainsAny(a.Query, ",;&!") {
				sb.WriteByte(';')
			}
			sb.WriteString(marker)
		}
		if a.AtomMap > 0 {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(a.AtomMap))
		}
		sb.WriteByte(']')
		return sb.String(), nil

	case mtypes.AtomPseudo, mtypes.AtomRSite:
		atomMap := a.AtomMap
		if atomMap == 0 {
			atomMap = a.RGroupNumber()
		}
		if a.Isotope == 0 && a.Charge == 0 && atomMap == 0 && marker == "" {
			return "*", nil
		}
		var sb strings.Builder
		sb.WriteByte('[')
		if a.Isotope > 0 {
			sb.WriteString(strconv.Itoa(a.Isotope))
		}
		sb.WriteByte('*')
		sb.WriteString(marker)
		writeCharge(&sb, a.Charge)
		if atomMap > 0 {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(atomMap))
		}
		sb.WriteByte(']')
		return sb.String(), nil

	case mtypes.AtomPlain:
	default:
		return "", notRepresentable("unknown atom kind "+string(a.Kind), v)
	}

	if a.Element == "" {
		return "", notRepresentable("atom has no element", v)
	}
	symbol := a.Element
	lower := false
	if a.Aromatic {
		if l, ok := molecule.AromaticSymbol(a.Element); ok {
			symbol, lower = l, true
		}
	}
	bracket := !molecule.IsOrganicSubset(a.Element) ||
		(lower && !molecule.IsBareAromatic(a.Element)) ||
		a.Isotope != 0 || a.Charge != 0 || a.Radical != mtypes.RadicalNone ||
		a.AtomMap != 0 || marker != ""

	h, known := s.hydrogens(v)
	if !bracket && known && !s.opts.SMARTS {
		valence, aromatic := s.writtenValence(v)
		if molecule.ImpliedHydrogens(a.Element, lower, valence, aromatic) != h {
			bracket = true
		}
	}
	if !bracket {
		return symbol, nil
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(symbol)
	sb.WriteString(marker)
	switch {
	case !known && !s.opts.SMARTS && !s.opts.IgnoreInvalidHCount:
		return "", errors.New(errors.ErrCodeInvalidHydrogenCount, "hydrogen count cannot be determined").
			WithDetailf("atom=%d", v)
	case known && h == 1:
		sb.WriteByte('H')
	case known && h > 1:
		sb.WriteByte('H')
		sb.WriteString(strconv.Itoa(h))
	}
	writeCharge(&sb, a.Charge)
	if a.AtomMap > 0 {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(a.AtomMap))
	}
	sb.WriteByte(']')
	return sb.String(), nil
}

// bondToken renders bond e written from atom from towards its other end.
func (s *session) bondToken(e, from int) (string, error) {
	b := s.view.Bond(e)
	to := b.Other(from)
	switch b.Order {
	case mtypes.BondSingle:
		if d := s.dirs[e]; d != DirNone {
			if from != b.Begin {
				d = d.Flip()
			}
			return d.String(), nil
		}
		if s.lowercase(from) && s.lowercase(to) {
			return "-", nil
		}
		if s.opts.SMARTS && (s.view.Atom(from).Kind == mtypes.AtomQuery || s.view.Atom(to).Kind == mtypes.AtomQuery) {
			return "-", nil
		}
		return "", nil
	case mtypes.BondDouble:
		return "=", nil
	case mtypes.BondTriple:
		return "#", nil
	case mtypes.BondAromatic:
		if s.lowercase(from) && s.lowercase(to) && s.view.EdgeRingSize(e) > 0 {
			return "", nil
		}
		return ":", nil
	}

	if !s.opts.SMARTS {
		return "", errors.New(errors.ErrCodeAtomNotRepresentable, "query bond cannot be written as SMILES").
			WithDetailf("bond=%d", e)
	}
	switch b.Order {
	case mtypes.BondAny:
		return "~", nil
	case mtypes.BondSingleOrDouble:
		return "-,=", nil
	case mtypes.BondSingleOrAromatic:
		return "-,:", nil
	case mtypes.BondDoubleOrAromatic:
		return "=,:", nil
	case mtypes.BondQuery:
		return b.Query, nil
	}
	return "", errors.New(errors.ErrCodeAtomNotRepresentable, "unknown bond order "+string(b.Order)).
		WithDetailf("bond=%d", e)
}

// textWriter holds the per-call state of the token emitter.
type textWriter struct {
	s          *session
	sb         *strings.Builder
	alloc      *ClosureAllocator
	labelOf    map[int]int
	starLabels [][]int
}

type emitFrame struct {
	v      int
	next   int
	branch bool
}

// emit writes every component, the detached stars and nothing else.
func (s *session) emit(sb *strings.Builder) error {
	w := &textWriter{
		s:          s,
		sb:         sb,
		alloc:      NewClosureAllocator(s.reservedLabels()),
		labelOf:    make(map[int]int),
		starLabels: make([][]int, len(s.stars)),
	}

	group := 0
	for i, ci := range s.compOrder {
		comp := s.walk.Components[ci]
		g := 0
		if s.opts.SMARTS {
			g = s.view.Atom(comp.Root).Component
		}
		if i > 0 {
			if g != group && group > 0 {
				sb.WriteByte(')')
			}
			sb.WriteByte('.')
		}
		if g != group && g > 0 {
			sb.WriteByte('(')
		}
		group = g
		if err := w.component(comp.Root); err != nil {
			return err
		}
	}
	if group > 0 {
		sb.WriteByte(')')
	}

	for i, st := range s.stars {
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		if st.rsite >= 0 {
			tok, err := s.atomToken(st.rsite)
			if err != nil {
				return err
			}
			sb.WriteString(tok)
		} else {
			sb.WriteByte('*')
		}
		for _, label := range w.starLabels[i] {
			sb.WriteString(FormatLabel(label))
			w.alloc.Close(label)
		}
	}
	return nil
}

func (w *textWriter) component(root int) error {
	if err := w.atom(root); err != nil {
		return err
	}
	walk := w.s.walk
	stack := []emitFrame{{v: root}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		kids := walk.Children(f.v)
		if f.next >= len(kids) {
			if f.branch {
				w.sb.WriteByte(')')
			}
			stack = stack[:len(stack)-1]
			continue
		}
		parent := f.v
		c := kids[f.next]
		f.next++
		branch := f.next < len(kids)
		if branch {
			w.sb.WriteByte('(')
		}
		tok, err := w.s.bondToken(walk.ParentEdge(c), parent)
		if err != nil {
			return err
		}
		w.sb.WriteString(tok)
		if err := w.atom(c); err != nil {
			return err
		}
		stack = append(stack, emitFrame{v: c, branch: branch})
	}
	return nil
}

// atom writes the atom token of v followed by its ring-closure labels:
// closings first, then openings, then pseudo-closures.  Openings are
// allocated before closings are released so one atom never repeats a label.
func (w *textWriter) atom(v int) error {
	s := w.s
	if err := s.budget.spend(1); err != nil {
		return err
	}
	tok, err := s.atomToken(v)
	if err != nil {
		return err
	}
	w.sb.WriteString(tok)

	ds := s.digits[v]
	labels := make([]int, len(ds))
	for i, d := range ds {
		switch d.kind {
		case digitClose:
			labels[i] = w.labelOf[d.bond]
		case digitOpen:
			labels[i] = w.alloc.Open(v)
			w.labelOf[d.bond] = labels[i]
		case digitRSite, digitAttachment:
			labels[i] = w.alloc.OpenReserved(v)
			w.starLabels[d.star] = append(w.starLabels[d.star], labels[i])
		}
	}
	for i, d := range ds {
		if d.kind != digitClose && d.bond >= 0 {
			sym, err := s.bondToken(d.bond, v)
			if err != nil {
				return err
			}
			w.sb.WriteString(sym)
		}
		w.sb.WriteString(FormatLabel(labels[i]))
	}
	for i, d := range ds {
		if d.kind == digitClose {
			w.alloc.Close(labels[i])
			delete(w.labelOf, d.bond)
		}
	}
	return nil
}
