package molecule

// organicValences lists the normal valences of the SMILES organic subset.
var organicValences = map[string][]int{
	"B":  {3},
	"C":  {4},
	"N":  {3, 5},
	"O":  {2},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"F":  {1},
	"Cl": {1},
	"Br": {1},
	"I":  {1},
}

// aromaticSymbols maps elements that may be written in lowercase aromatic
// form to that form.
var aromaticSymbols = map[string]string{
	"B":  "b",
	"C":  "c",
	"N":  "n",
	"O":  "o",
	"P":  "p",
	"S":  "s",
	"Se": "se",
	"As": "as",
	"Te": "te",
}

// IsOrganicSubset reports whether element may be written without brackets.
func IsOrganicSubset(element string) bool {
	_, ok := organicValences[element]
	return ok
}

// AromaticSymbol returns the lowercase aromatic symbol of element, if any.
func AromaticSymbol(element string) (string, bool) {
	s, ok := aromaticSymbols[element]
	return s, ok
}

// IsBareAromatic reports whether element is allowed unbracketed in lowercase.
func IsBareAromatic(element string) bool {
	_, lower := aromaticSymbols[element]
	return lower && IsOrganicSubset(element)
}

// ImpliedHydrogens returns the hydrogen count a SMILES reader infers for an
// unbracketed organic-subset atom whose bonds sum to valence, of which
// aromaticBonds are aromatic.  It returns -1 for elements outside the subset.
func ImpliedHydrogens(element string, aromatic bool, valence, aromaticBonds int) int {
	allowed, ok := organicValences[element]
	if !ok {
		return -1
	}
	if aromatic && aromaticBonds > 0 {
		valence++
	}
	for _, v := range allowed {
		if v >= valence {
			return v - valence
		}
	}
	return 0
}
