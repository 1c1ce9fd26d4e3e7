package smiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molnotation/internal/domain/molecule"
	"github.com/turtacn/molnotation/pkg/errors"
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

var withBlock = Options{WriteExtensionBlock: true}

func TestExtension_Radical(t *testing.T) {
	g := molecule.NewGraph()
	g.AddAtom(molecule.Atom{Element: "C", ImplicitH: 3, Radical: mtypes.RadicalDoublet})

	assert.Equal(t, "[CH3] |^1:0|", save(t, g, withBlock).Text)
	assert.Equal(t, "[CH3]", save(t, g, Options{}).Text)
}

func pseudo(label string) *molecule.Graph {
	g := molecule.NewGraph()
	c := g.AddElement("C")
	p := g.AddAtom(molecule.Atom{Kind: mtypes.AtomPseudo, Label: label})
	g.AddBond(c, p, mtypes.BondSingle)
	g.AssignDefaultHydrogens()
	return g
}

func TestExtension_PseudoLabels(t *testing.T) {
	assert.Equal(t, "C* |$;Ph$|", save(t, pseudo("Ph"), withBlock).Text)

	_, err := NewSaver().Save(pseudo("a;b"), withBlock)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsafePseudoLabel))
	assert.Contains(t, err.Error(), "atom=1")

	opts := withBlock
	opts.SanitizePseudoLabels = true
	assert.Equal(t, "C* |$;a_b$|", save(t, pseudo("a;b"), opts).Text)
	assert.Equal(t, "C* |$;x_y_z$|", save(t, pseudo("x y|z"), opts).Text)

	// labels are only checked when the block is written
	assert.Equal(t, "C*", save(t, pseudo("a;b"), Options{}).Text)
}

func TestExtension_Highlight(t *testing.T) {
	g := molecule.NewGraph()
	c0 := g.AddElement("C")
	c1 := g.AddAtom(molecule.Atom{Element: "C", ImplicitH: -1, Highlighted: true})
	c2 := g.AddElement("C")
	g.AddBond(c0, c1, mtypes.BondSingle)
	g.AddBondDetailed(molecule.Bond{Begin: c1, End: c2, Order: mtypes.BondSingle, Highlighted: true})
	g.AssignDefaultHydrogens()

	assert.Equal(t, "CCC |ha:1,hb:1|", save(t, g, withBlock).Text)
}

func TestExtension_RGroupLogic(t *testing.T) {
	g := molecule.NewGraph()
	r := g.AddAtom(molecule.Atom{Kind: mtypes.AtomRSite, RGroups: []int{1}})
	c := g.AddElement("C")
	g.AddBond(r, c, mtypes.BondSingle)
	g.AssignDefaultHydrogens()
	g.AddRGroup(molecule.RGroup{Number: 2, IfThen: 1, Occurrence: "1-3"})
	g.AddRGroup(molecule.RGroup{Number: 1, RestH: true})

	assert.Equal(t, "[*:1]C |$_R1;$,LOG={_R1:;H;>0._R2:_R1;;1-3}|", save(t, g, withBlock).Text)
}

func TestExtension_SGroups(t *testing.T) {
	g := molecule.NewGraph()
	a := chain(g, "C", "C", "O")
	g.AssignDefaultHydrogens()
	g.AddSGroup(molecule.SGroup{Kind: mtypes.SGroupData, Atoms: []int{a[2]}, FieldName: "note", FieldValue: "x"})
	g.AddSGroup(molecule.SGroup{Kind: mtypes.SGroupPolymer, Atoms: []int{a[1], a[0]}, Subscript: "n", Connectivity: "ht"})

	assert.Equal(t, "CCO |SgD:2:note:x::::,Sg:n:0,1:n:ht|", save(t, g, withBlock).Text)
}

func TestExtension_QueryAnnotations(t *testing.T) {
	g := molecule.NewGraph()
	c0 := g.AddAtom(molecule.Atom{Element: "C", ImplicitH: -1, RingBondCount: 2})
	c1 := g.AddAtom(molecule.Atom{Element: "C", ImplicitH: -1, SubstitutionCount: -1, Unsaturated: true})
	g.AddBond(c0, c1, mtypes.BondSingle)

	opts := withBlock
	opts.SMARTS = true
	assert.Equal(t, "CC |rb:0:2,s:1:*,u:1|", save(t, g, opts).Text)
}

func TestExtension_EitherBond(t *testing.T) {
	g := molecule.NewGraph()
	c0 := g.AddElement("C")
	c1 := g.AddElement("C")
	c2 := g.AddElement("C")
	g.AddBond(c0, c1, mtypes.BondSingle)
	g.AddBondDetailed(molecule.Bond{Begin: c2, End: c1, Order: mtypes.BondDouble, Either: true})
	g.AssignDefaultHydrogens()

	assert.Equal(t, "CC=C |w:1.1|", save(t, g, withBlock).Text)
}

func TestExtension_SectionOrder(t *testing.T) {
	g := molecule.NewGraph()
	c := g.AddAtom(molecule.Atom{Element: "C", ImplicitH: 2, Radical: mtypes.RadicalTriplet, Highlighted: true})
	p := g.AddAtom(molecule.Atom{Kind: mtypes.AtomPseudo, Label: "X"})
	g.AddBond(c, p, mtypes.BondSingle)

	assert.Equal(t, "[CH2]* |^4:0,$;X$,ha:0|", save(t, g, withBlock).Text)
}

func TestExtension_EmptyBlockOmitted(t *testing.T) {
	assert.Equal(t, "c1ccccc1", save(t, benzene(), withBlock).Text)
}
