package smiles

import (
	"fmt"
	"strconv"

	"github.com/emirpasic/gods/sets/treeset"
)

// ClosureAllocator hands out ring-closure labels.  Ordinary labels are the
// lowest free positive integers; a label becomes free again only after its
// second occurrence has been written.  A separate range is reserved for
// R-site and attachment-point pseudo-closures.
type ClosureAllocator struct {
	free   *treeset.Set
	next   int
	owner  map[int]int
	resLo  int
	resHi  int
	resPos int
}

// NewClosureAllocator returns an allocator that reserves reserved labels for
// pseudo-closures.  The reserved range ends at 99 when it fits below three
// digits so ordinary closures keep the short forms for as long as possible.
func NewClosureAllocator(reserved int) *ClosureAllocator {
	a := &ClosureAllocator{
		free:  treeset.NewWithIntComparator(),
		next:  1,
		owner: make(map[int]int),
	}
	if reserved > 0 {
		a.resLo = 100 - reserved
		if a.resLo < 10 {
			a.resLo = 10
		}
		a.resHi = a.resLo + reserved
		a.resPos = a.resLo
	}
	return a
}

// Reserved returns the reserved label range [lo, hi).
func (a *ClosureAllocator) Reserved() (lo, hi int) {
	return a.resLo, a.resHi
}

// Open allocates the lowest free ordinary label for a closure opened at vertex.
func (a *ClosureAllocator) Open(vertex int) int {
	var label int
	it := a.free.Iterator()
	if it.First() {
		label = it.Value().(int)
		a.free.Remove(label)
	} else {
		if a.next == a.resLo && a.resHi > a.resLo {
			a.next = a.resHi
		}
		label = a.next
		a.next++
	}
	a.owner[label] = vertex
	return label
}

// OpenReserved allocates the next label of the reserved range.
func (a *ClosureAllocator) OpenReserved(vertex int) int {
	if a.resPos >= a.resHi {
		panic("smiles: reserved closure range exhausted")
	}
	label := a.resPos
	a.resPos++
	a.owner[label] = vertex
	return label
}

// Owner returns the vertex that opened label, if it is open.
func (a *ClosureAllocator) Owner(label int) (int, bool) {
	v, ok := a.owner[label]
	return v, ok
}

// Close releases label.  Closing a label that is not open is a programming
// error and panics.  Reserved labels are never handed out again.
func (a *ClosureAllocator) Close(label int) {
	if _, ok := a.owner[label]; !ok {
		panic(fmt.Sprintf("smiles: closing label %d that is not open", label))
	}
	delete(a.owner, label)
	if label >= a.resLo && label < a.resHi {
		return
	}
	a.free.Add(label)
}

// FormatLabel renders a closure label: one digit, %nn, or %(nnn).
func FormatLabel(label int) string {
	switch {
	case label < 10:
		return strconv.Itoa(label)
	case label < 100:
		return "%" + strconv.Itoa(label)
	default:
		return "%(" + strconv.Itoa(label) + ")"
	}
}
