package smiles

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/turtacn/molnotation/pkg/errors"
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

const unsafeLabelChars = "$;|,{}"

// extensionBlock renders the contents of the " |...|" block, without the
// delimiters.  An empty string means there is nothing to write.
func (s *session) extensionBlock() (string, error) {
	var sections []string
	add := func(sec string) {
		if sec != "" {
			sections = append(sections, sec)
		}
	}

	add(s.stereoGroupSection())
	add(s.radicalSection())
	labels, err := s.labelSection()
	if err != nil {
		return "", err
	}
	add(labels)
	add(s.highlightSection())
	add(s.ringCisTransSection())
	add(s.rgroupLogicSection())
	add(s.sgroupSection())
	add(s.queryAnnotationSection())
	add(s.eitherSection())
	return strings.Join(sections, ","), nil
}

func joinInts(xs []int, sep string) string {
	return strings.Join(lo.Map(xs, func(x int, _ int) string { return strconv.Itoa(x) }), sep)
}

// writtenAtoms maps graph atoms to sorted emission indices, dropping atoms
// that were not written.
func (s *session) writtenAtoms(atoms []int) []int {
	out := lo.FilterMap(atoms, func(a int, _ int) (int, bool) {
		if a < 0 || a >= len(s.atomIndex) || s.atomIndex[a] < 0 {
			return 0, false
		}
		return s.atomIndex[a], true
	})
	sort.Ints(out)
	return out
}

func (s *session) stereoGroupSection() string {
	scs := s.view.Stereocenters()
	abs := make([]int, 0)
	groups := map[mtypes.StereoKind]map[int][]int{
		mtypes.StereoAnd: {},
		mtypes.StereoOr:  {},
	}
	relative := false
	for i, sc := range scs {
		if s.stereoOf[sc.Atom] != i || s.markers[sc.Atom] == "" {
			continue
		}
		switch sc.Kind {
		case mtypes.StereoAbs:
			abs = append(abs, sc.Atom)
		case mtypes.StereoAnd, mtypes.StereoOr:
			groups[sc.Kind][s.groupOf[i]] = append(groups[sc.Kind][s.groupOf[i]], sc.Atom)
			relative = true
		}
	}
	if !relative {
		return ""
	}

	var parts []string
	if len(abs) > 0 {
		parts = append(parts, "a:"+joinInts(s.writtenAtoms(abs), ","))
	}
	for _, kind := range []mtypes.StereoKind{mtypes.StereoAnd, mtypes.StereoOr} {
		prefix := "&"
		if kind == mtypes.StereoOr {
			prefix = "o"
		}
		nums := make([]int, 0, len(groups[kind]))
		for n := range groups[kind] {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		for _, n := range nums {
			parts = append(parts, fmt.Sprintf("%s%d:%s", prefix, n, joinInts(s.writtenAtoms(groups[kind][n]), ",")))
		}
	}
	return strings.Join(parts, ",")
}

func (s *session) radicalSection() string {
	byKind := map[mtypes.Radical][]int{}
	for v := 0; v < s.view.AtomCount(); v++ {
		if r := s.view.Atom(v).Radical; r != mtypes.RadicalNone {
			byKind[r] = append(byKind[r], v)
		}
	}
	var parts []string
	for _, rk := range []struct {
		radical mtypes.Radical
		tag     string
	}{
		{mtypes.RadicalDoublet, "^1:"},
		{mtypes.RadicalSinglet, "^3:"},
		{mtypes.RadicalTriplet, "^4:"},
	} {
		if idx := s.writtenAtoms(byKind[rk.radical]); len(idx) > 0 {
			parts = append(parts, rk.tag+joinInts(idx, ","))
		}
	}
	return strings.Join(parts, ",")
}

// label returns the "$...$" entry for emission position pos.  Detached
// stars occupy the last positions.
func (s *session) label(pos int) (string, error) {
	if base := len(s.atomOrder) - len(s.stars); pos >= base {
		if st := s.stars[pos-base]; st.rsite < 0 {
			return "_AP" + strconv.Itoa(st.ap), nil
		}
	}
	v := s.atomOrder[pos]
	a := s.view.Atom(v)
	switch a.Kind {
	case mtypes.AtomRSite:
		if n := a.RGroupNumber(); n > 0 {
			return "_R" + strconv.Itoa(n), nil
		}
		return "_R", nil
	case mtypes.AtomPseudo:
		return s.safeLabel(v, a.Label)
	}
	return "", nil
}

func (s *session) safeLabel(v int, label string) (string, error) {
	unsafe := func(r rune) bool {
		return r <= ' ' || r == 0x7f || strings.ContainsRune(unsafeLabelChars, r)
	}
	if strings.IndexFunc(label, unsafe) < 0 {
		return label, nil
	}
	if !s.opts.SanitizePseudoLabels {
		return "", errors.New(errors.ErrCodeUnsafePseudoLabel, "pseudo-atom label contains unsupported characters").
			WithDetailf("atom=%d", v)
	}
	return strings.Map(func(r rune) rune {
		if unsafe(r) {
			return '_'
		}
		return r
	}, label), nil
}

func (s *session) labelSection() (string, error) {
	labels := make([]string, len(s.atomOrder))
	found := false
	for pos := range s.atomOrder {
		l, err := s.label(pos)
		if err != nil {
			return "", err
		}
		labels[pos] = l
		found = found || l != ""
	}
	if !found {
		return "", nil
	}
	return "$" + strings.Join(labels, ";") + "$", nil
}

func (s *session) highlightSection() string {
	var atoms, bonds []int
	for v := 0; v < s.view.AtomCount(); v++ {
		if s.view.Atom(v).Highlighted && s.atomIndex[v] >= 0 {
			atoms = append(atoms, s.atomIndex[v])
		}
	}
	for e := 0; e < s.view.BondCount(); e++ {
		if s.view.Bond(e).Highlighted && s.bondIndex[e] >= 0 {
			bonds = append(bonds, s.bondIndex[e])
		}
	}
	sort.Ints(atoms)
	sort.Ints(bonds)
	var parts []string
	if len(atoms) > 0 {
		parts = append(parts, "ha:"+joinInts(atoms, ","))
	}
	if len(bonds) > 0 {
		parts = append(parts, "hb:"+joinInts(bonds, ","))
	}
	return strings.Join(parts, ",")
}

func (s *session) ringCisTransSection() string {
	var cis, trans []int
	for _, d := range s.ringCT {
		if d.cis {
			cis = append(cis, s.bondIndex[d.bond])
		} else {
			trans = append(trans, s.bondIndex[d.bond])
		}
	}
	var parts []string
	if len(cis) > 0 {
		parts = append(parts, "c:"+joinInts(cis, ","))
	}
	if len(trans) > 0 {
		parts = append(parts, "t:"+joinInts(trans, ","))
	}
	return strings.Join(parts, ",")
}

func (s *session) rgroupLogicSection() string {
	rgs := append(s.view.RGroups()[:0:0], s.view.RGroups()...)
	if len(rgs) == 0 {
		return ""
	}
	sort.SliceStable(rgs, func(a, b int) bool { return rgs[a].Number < rgs[b].Number })

	var buf bytes.Buffer
	buf.WriteString("LOG={")
	for i, rg := range rgs {
		if i > 0 {
			buf.WriteByte('.')
		}
		fmt.Fprintf(&buf, "_R%d:", rg.Number)
		if rg.IfThen > 0 {
			fmt.Fprintf(&buf, "_R%d", rg.IfThen)
		}
		buf.WriteByte(';')
		if rg.RestH {
			buf.WriteByte('H')
		}
		buf.WriteByte(';')
		occ := rg.Occurrence
		if occ == "" {
			occ = ">0"
		}
		buf.WriteString(occ)
	}
	buf.WriteByte('}')
	return buf.String()
}

func (s *session) sgroupSection() string {
	var parts []string
	for _, sg := range s.view.SGroups() {
		atoms := s.writtenAtoms(sg.Atoms)
		if len(atoms) == 0 {
			continue
		}
		switch sg.Kind {
		case mtypes.SGroupData:
			parts = append(parts, fmt.Sprintf("SgD:%s:%s:%s::::", joinInts(atoms, ","), sg.FieldName, sg.FieldValue))
		case mtypes.SGroupPolymer:
			parts = append(parts, fmt.Sprintf("Sg:n:%s:%s:%s", joinInts(atoms, ","), sg.Subscript, sg.Connectivity))
		}
	}
	return strings.Join(parts, ",")
}

// queryAnnotationSection writes ring-bond count (rb:), substitution count
// (s:) and unsaturation (u:) constraints.  A count of -1 means "as drawn".
func (s *session) queryAnnotationSection() string {
	count := func(c int) string {
		if c < 0 {
			return "*"
		}
		return strconv.Itoa(c)
	}
	var rb, sub []string
	var unsat []int
	for pos, v := range s.atomOrder {
		if v < 0 {
			continue
		}
		a := s.view.Atom(v)
		if a.RingBondCount != 0 {
			rb = append(rb, fmt.Sprintf("%d:%s", pos, count(a.RingBondCount)))
		}
		if a.SubstitutionCount != 0 {
			sub = append(sub, fmt.Sprintf("%d:%s", pos, count(a.SubstitutionCount)))
		}
		if a.Unsaturated {
			unsat = append(unsat, pos)
		}
	}
	var parts []string
	if len(rb) > 0 {
		parts = append(parts, "rb:"+strings.Join(rb, ","))
	}
	if len(sub) > 0 {
		parts = append(parts, "s:"+strings.Join(sub, ","))
	}
	if len(unsat) > 0 {
		parts = append(parts, "u:"+joinInts(unsat, ","))
	}
	return strings.Join(parts, ",")
}

type wavyBond struct {
	atom int
	bond int
}

// eitherSection lists wavy bonds as atom.bond pairs: either bonds from their
// earlier written end, and ANY stereocenters through their first written bond.
func (s *session) eitherSection() string {
	var wavy []wavyBond
	for e := 0; e < s.view.BondCount(); e++ {
		b := s.view.Bond(e)
		if !b.Either || s.bondIndex[e] < 0 {
			continue
		}
		atom := s.atomIndex[b.Begin]
		if end := s.atomIndex[b.End]; atom < 0 || (end >= 0 && end < atom) {
			atom = end
		}
		wavy = append(wavy, wavyBond{atom: atom, bond: s.bondIndex[e]})
	}
	for _, sc := range s.view.Stereocenters() {
		if sc.Kind != mtypes.StereoAny || s.atomIndex[sc.Atom] < 0 {
			continue
		}
		first := -1
		for _, nb := range s.view.Neighbors(sc.Atom) {
			if bi := s.bondIndex[nb.Bond]; bi >= 0 && (first < 0 || bi < first) {
				first = bi
			}
		}
		if first >= 0 {
			wavy = append(wavy, wavyBond{atom: s.atomIndex[sc.Atom], bond: first})
		}
	}
	if len(wavy) == 0 {
		return ""
	}
	sort.Slice(wavy, func(a, b int) bool {
		if wavy[a].atom != wavy[b].atom {
			return wavy[a].atom < wavy[b].atom
		}
		return wavy[a].bond < wavy[b].bond
	})
	parts := make([]string, 0, len(wavy))
	for i, w := range wavy {
		if i > 0 && w == wavy[i-1] {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d.%d", w.atom, w.bond))
	}
	return "w:" + strings.Join(parts, ",")
}
