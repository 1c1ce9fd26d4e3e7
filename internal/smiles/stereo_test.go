package smiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molnotation/internal/domain/molecule"
	"github.com/turtacn/molnotation/pkg/errors"
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

// alanine builds N-C(H)(C)-C(=O)O with the stereocenter on atom 1.
func alanine(kind mtypes.StereoKind, pyramid [4]int) *molecule.Graph {
	g := molecule.NewGraph()
	n := g.AddElement("N")
	ca := g.AddElement("C")
	cb := g.AddElement("C")
	c := g.AddElement("C")
	o1 := g.AddElement("O")
	o2 := g.AddElement("O")
	g.AddBond(n, ca, mtypes.BondSingle)
	g.AddBond(ca, cb, mtypes.BondSingle)
	g.AddBond(ca, c, mtypes.BondSingle)
	g.AddBond(c, o1, mtypes.BondDouble)
	g.AddBond(c, o2, mtypes.BondSingle)
	g.AssignDefaultHydrogens()
	g.AddStereocenter(molecule.Stereocenter{Atom: ca, Kind: kind, Group: 1, Pyramid: pyramid})
	return g
}

func TestTetrahedral_ParityFlip(t *testing.T) {
	res := save(t, alanine(mtypes.StereoAbs, [4]int{0, -1, 2, 3}), Options{})
	assert.Equal(t, "N[C@@H](C)C(=O)O", res.Text)

	res = save(t, alanine(mtypes.StereoAbs, [4]int{0, -1, 3, 2}), Options{})
	assert.Equal(t, "N[C@H](C)C(=O)O", res.Text)

	res = save(t, alanine(mtypes.StereoAbs, [4]int{-1, 0, 2, 3}), Options{})
	assert.Equal(t, "N[C@H](C)C(=O)O", res.Text)
}

func TestTetrahedral_FourNeighbors(t *testing.T) {
	build := func(pyramid [4]int) *molecule.Graph {
		g := molecule.NewGraph()
		c := g.AddElement("C")
		for _, el := range []string{"F", "Cl", "Br", "I"} {
			g.AddBond(c, g.AddElement(el), mtypes.BondSingle)
		}
		g.AssignDefaultHydrogens()
		g.AddStereocenter(molecule.Stereocenter{Atom: c, Kind: mtypes.StereoAbs, Pyramid: pyramid})
		return g
	}

	assert.Equal(t, "[C@@](F)(Cl)(Br)I", save(t, build([4]int{1, 2, 3, 4}), Options{}).Text)
	assert.Equal(t, "[C@](F)(Cl)(Br)I", save(t, build([4]int{2, 1, 3, 4}), Options{}).Text)
	assert.Equal(t, "[C@@](F)(Cl)(Br)I", save(t, build([4]int{2, 1, 4, 3}), Options{}).Text)
}

func TestTetrahedral_FoldedHydrogen(t *testing.T) {
	g := molecule.NewGraph()
	n := g.AddElement("N")
	c := g.AddAtom(molecule.Atom{Element: "C", ImplicitH: 0})
	h := g.AddAtom(molecule.Atom{Element: "H", ImplicitH: 0})
	me := g.AddElement("C")
	f := g.AddElement("F")
	g.AddBond(n, c, mtypes.BondSingle)
	g.AddBond(c, h, mtypes.BondSingle)
	g.AddBond(c, me, mtypes.BondSingle)
	g.AddBond(c, f, mtypes.BondSingle)
	g.AssignDefaultHydrogens()
	g.AddStereocenter(molecule.Stereocenter{Atom: c, Kind: mtypes.StereoAbs, Pyramid: [4]int{n, h, me, f}})

	assert.Equal(t, "N[C@@]([H])(C)F", save(t, g, Options{}).Text)
	assert.Equal(t, "N[C@@H](C)F", save(t, g, Options{IgnoreHydrogens: true}).Text)
}

func TestTetrahedral_IsotopicHydrogenNotFolded(t *testing.T) {
	g := molecule.NewGraph()
	n := g.AddElement("N")
	c := g.AddAtom(molecule.Atom{Element: "C", ImplicitH: 0})
	d := g.AddAtom(molecule.Atom{Element: "H", Isotope: 2, ImplicitH: 0})
	me := g.AddElement("C")
	f := g.AddElement("F")
	g.AddBond(n, c, mtypes.BondSingle)
	g.AddBond(c, d, mtypes.BondSingle)
	g.AddBond(c, me, mtypes.BondSingle)
	g.AddBond(c, f, mtypes.BondSingle)
	g.AssignDefaultHydrogens()
	g.AddStereocenter(molecule.Stereocenter{Atom: c, Kind: mtypes.StereoAbs, Pyramid: [4]int{n, d, me, f}})

	res := save(t, g, Options{IgnoreHydrogens: true})
	assert.Equal(t, "N[C@@]([2H])(C)F", res.Text)
	assert.Equal(t, 2, res.AtomIndex[d])
}

func TestTetrahedral_Unrepresentable(t *testing.T) {
	g := molecule.NewGraph()
	c := g.AddElement("C")
	f := g.AddElement("F")
	cl := g.AddElement("Cl")
	g.AddBond(c, f, mtypes.BondSingle)
	g.AddBond(c, cl, mtypes.BondSingle)
	g.AssignDefaultHydrogens()
	g.AddStereocenter(molecule.Stereocenter{Atom: c, Kind: mtypes.StereoAbs, Pyramid: [4]int{f, cl, -1, -1}})

	_, err := NewSaver().Save(g, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnrepresentableChirality))
	assert.Contains(t, err.Error(), "atom=0")
}

func TestTetrahedral_PyramidMismatch(t *testing.T) {
	g := alanine(mtypes.StereoAbs, [4]int{0, -1, 2, 5})
	_, err := NewSaver().Save(g, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsStereoError(err))
}

func TestTetrahedral_AnyHasNoMarker(t *testing.T) {
	res := save(t, alanine(mtypes.StereoAny, [4]int{0, -1, 2, 3}), Options{WriteExtensionBlock: true})
	assert.Equal(t, "NC(C)C(=O)O |w:1.0|", res.Text)
}

func TestStereoGroups(t *testing.T) {
	and := alanine(mtypes.StereoAnd, [4]int{0, -1, 2, 3})

	res := save(t, and, Options{WriteExtensionBlock: true})
	assert.Equal(t, "N[C@@H](C)C(=O)O |&1:1|", res.Text)

	res = save(t, and, Options{WriteExtensionBlock: true, CanonizeChiralities: true})
	assert.Equal(t, "N[C@H](C)C(=O)O |&1:1|", res.Text)

	abs := alanine(mtypes.StereoAbs, [4]int{0, -1, 2, 3})
	res = save(t, abs, Options{WriteExtensionBlock: true, CanonizeChiralities: true})
	assert.Equal(t, "N[C@@H](C)C(=O)O", res.Text)
}

func difluoroethene(parity mtypes.CisTransParity, subst [4]int) *molecule.Graph {
	g := molecule.NewGraph()
	f1 := g.AddElement("F")
	c1 := g.AddElement("C")
	c2 := g.AddElement("C")
	f2 := g.AddElement("F")
	g.AddBond(f1, c1, mtypes.BondSingle)
	db := g.AddBond(c1, c2, mtypes.BondDouble)
	g.AddBond(c2, f2, mtypes.BondSingle)
	g.AssignDefaultHydrogens()
	g.AddCisTrans(molecule.CisTransBond{Bond: db, Parity: parity, Substituents: subst})
	return g
}

func TestCisTrans_Chain(t *testing.T) {
	fluorines := [4]int{0, -1, 3, -1}
	res := save(t, difluoroethene(mtypes.ParityTrans, fluorines), Options{})
	assert.Equal(t, "F/C=C/F", res.Text)
	assert.Equal(t, []Direction{DirUp, DirNone, DirUp}, res.Directions)

	res = save(t, difluoroethene(mtypes.ParityCis, fluorines), Options{})
	assert.Equal(t, "F/C=C\\F", res.Text)

	res = save(t, difluoroethene(mtypes.ParityNone, fluorines), Options{})
	assert.Equal(t, "FC=CF", res.Text)
}

func TestCisTrans_HydrogenReference(t *testing.T) {
	// the stored reference on the second carbon is its hydrogen slot, so the
	// written fluorine sits on the other side
	g := difluoroethene(mtypes.ParityTrans, [4]int{0, -1, -1, 3})
	assert.Equal(t, "F/C=C\\F", save(t, g, Options{}).Text)
}

// cyclooctatetraene builds an eight-membered ring of alternating double and
// single bonds with every double bond stereo-defined.
func cyclooctatetraene(parities [4]mtypes.CisTransParity) *molecule.Graph {
	g := molecule.NewGraph()
	for i := 0; i < 8; i++ {
		g.AddElement("C")
	}
	for i := 0; i < 8; i++ {
		order := mtypes.BondSingle
		if i%2 == 0 {
			order = mtypes.BondDouble
		}
		g.AddBond(i, (i+1)%8, order)
	}
	g.AssignDefaultHydrogens()
	for k := 0; k < 4; k++ {
		b := 2 * k
		g.AddCisTrans(molecule.CisTransBond{
			Bond:         b,
			Parity:       parities[k],
			Substituents: [4]int{(b + 7) % 8, -1, (b + 2) % 8, -1},
		})
	}
	return g
}

func TestCisTrans_SharedSideBonds(t *testing.T) {
	cis := mtypes.ParityCis
	res := save(t, cyclooctatetraene([4]mtypes.CisTransParity{cis, cis, cis, cis}), Options{})
	directional := 0
	for _, d := range res.Directions {
		if d != DirNone {
			directional++
		}
	}
	assert.Equal(t, 4, directional)
}

func TestCisTrans_Conflict(t *testing.T) {
	cis, trans := mtypes.ParityCis, mtypes.ParityTrans
	_, err := NewSaver().Save(cyclooctatetraene([4]mtypes.CisTransParity{cis, cis, cis, trans}), Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeIncompatibleCisTrans))
	assert.Contains(t, err.Error(), "bond=")
}

func cyclohexene(parity mtypes.CisTransParity) *molecule.Graph {
	g := molecule.NewGraph()
	for i := 0; i < 6; i++ {
		g.AddElement("C")
	}
	g.AddBond(0, 1, mtypes.BondDouble)
	for i := 1; i < 6; i++ {
		g.AddBond(i, (i+1)%6, mtypes.BondSingle)
	}
	g.AssignDefaultHydrogens()
	g.AddCisTrans(molecule.CisTransBond{Bond: 0, Parity: parity, Substituents: [4]int{5, -1, 2, -1}})
	return g
}

func TestCisTrans_SmallRingDeferred(t *testing.T) {
	res := save(t, cyclohexene(mtypes.ParityCis), Options{WriteExtensionBlock: true})
	assert.Equal(t, "C1=CCCCC1 |c:1|", res.Text)

	res = save(t, cyclohexene(mtypes.ParityTrans), Options{WriteExtensionBlock: true})
	assert.Equal(t, "C1=CCCCC1 |t:1|", res.Text)

	res = save(t, cyclohexene(mtypes.ParityCis), Options{})
	assert.Equal(t, "C1=CCCCC1", res.Text)
	for _, d := range res.Directions {
		assert.Equal(t, DirNone, d)
	}
}

// fluorobutadiene builds F-C=C-C=C with the first double bond stereo-defined
// and the second one explicitly unspecified.
func fluorobutadiene(parity mtypes.CisTransParity) *molecule.Graph {
	g := molecule.NewGraph()
	var a [5]int
	for i, el := range []string{"F", "C", "C", "C", "C"} {
		a[i] = g.AddElement(el)
	}
	g.AddBond(a[0], a[1], mtypes.BondSingle)
	first := g.AddBond(a[1], a[2], mtypes.BondDouble)
	g.AddBond(a[2], a[3], mtypes.BondSingle)
	second := g.AddBond(a[3], a[4], mtypes.BondDouble)
	g.AssignDefaultHydrogens()
	g.AddCisTrans(molecule.CisTransBond{Bond: first, Parity: parity, Substituents: [4]int{a[0], -1, a[3], -1}})
	g.AddCisTrans(molecule.CisTransBond{Bond: second, Parity: mtypes.ParityNone, Substituents: [4]int{a[2], -1, -1, -1}})
	return g
}

func TestCisTrans_ComplicatedDeferred(t *testing.T) {
	// the only side bond on the inner carbon belongs to an unspecified
	// double bond, so no direction can be written
	res := save(t, fluorobutadiene(mtypes.ParityCis), Options{WriteExtensionBlock: true})
	assert.Equal(t, "FC=CC=C |c:1|", res.Text)
	for _, d := range res.Directions {
		assert.Equal(t, DirNone, d)
	}

	res = save(t, fluorobutadiene(mtypes.ParityTrans), Options{WriteExtensionBlock: true})
	assert.Equal(t, "FC=CC=C |t:1|", res.Text)

	assert.Equal(t, "FC=CC=C", save(t, fluorobutadiene(mtypes.ParityCis), Options{}).Text)
}

func allene(parity int, subst [4]int) *molecule.Graph {
	g := molecule.NewGraph()
	f1 := g.AddElement("F")
	c1 := g.AddElement("C")
	c2 := g.AddElement("C")
	c3 := g.AddElement("C")
	f2 := g.AddElement("F")
	g.AddBond(f1, c1, mtypes.BondSingle)
	g.AddBond(c1, c2, mtypes.BondDouble)
	g.AddBond(c2, c3, mtypes.BondDouble)
	g.AddBond(c3, f2, mtypes.BondSingle)
	g.AssignDefaultHydrogens()
	g.AddAllene(molecule.AlleneCenter{Center: c2, Left: c1, Right: c3, Substituents: subst, Parity: parity})
	return g
}

func TestAllene(t *testing.T) {
	res := save(t, allene(mtypes.AlleneAnticlockwise, [4]int{0, -1, 4, -1}), Options{})
	assert.Equal(t, "FC=[C@@]=CF", res.Text)

	res = save(t, allene(mtypes.AlleneAnticlockwise, [4]int{0, -1, -1, 4}), Options{})
	assert.Equal(t, "FC=[C@]=CF", res.Text)

	res = save(t, allene(mtypes.AlleneClockwise, [4]int{0, -1, -1, 4}), Options{})
	assert.Equal(t, "FC=[C@@]=CF", res.Text)

	// terminals stored right to left describe the same axis
	g := allene(mtypes.AlleneAnticlockwise, [4]int{0, -1, 4, -1})
	swapped := molecule.NewGraph()
	for i := 0; i < g.AtomCount(); i++ {
		swapped.AddAtom(g.Atom(i))
	}
	for e := 0; e < g.BondCount(); e++ {
		swapped.AddBondDetailed(g.Bond(e))
	}
	swapped.AddAllene(molecule.AlleneCenter{
		Center: 2, Left: 3, Right: 1, Substituents: [4]int{4, -1, 0, -1}, Parity: mtypes.AlleneAnticlockwise,
	})
	assert.Equal(t, "FC=[C@@]=CF", save(t, swapped, Options{}).Text)
}

func TestPermutationParity(t *testing.T) {
	p, ok := permutationParity([]int{1, 2, 3, 4}, []int{1, 2, 3, 4})
	assert.True(t, ok)
	assert.Equal(t, 0, p)

	p, ok = permutationParity([]int{1, 2, 3, 4}, []int{2, 1, 3, 4})
	assert.True(t, ok)
	assert.Equal(t, 1, p)

	p, ok = permutationParity([]int{1, 2, 3, 4}, []int{2, 3, 4, 1})
	assert.True(t, ok)
	assert.Equal(t, 1, p)

	_, ok = permutationParity([]int{1, -1, -1, 4}, []int{1, -1, -1, 4})
	assert.False(t, ok)

	_, ok = permutationParity([]int{1, 2, 3}, []int{1, 2, 5})
	assert.False(t, ok)
}
