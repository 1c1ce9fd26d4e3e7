package molecule

// smallestRingSizes returns, for each bond, the length of the shortest cycle
// through it (0 for bridges).  Each bond is answered by a breadth-first search
// between its endpoints that is not allowed to use the bond itself.
func smallestRingSizes(view View) []int {
	n := view.AtomCount()
	sizes := make([]int, view.BondCount())
	dist := make([]int, n)
	queue := make([]int, 0, n)

	for e := range sizes {
		b := view.Bond(e)
		for i := range dist {
			dist[i] = -1
		}
		queue = append(queue[:0], b.Begin)
		dist[b.Begin] = 0

	search:
		for head := 0; head < len(queue); head++ {
			v := queue[head]
			for _, nb := range view.Neighbors(v) {
				if nb.Bond == e || dist[nb.Atom] >= 0 {
					continue
				}
				dist[nb.Atom] = dist[v] + 1
				if nb.Atom == b.End {
					break search
				}
				queue = append(queue, nb.Atom)
			}
		}
		if dist[b.End] > 0 {
			sizes[e] = dist[b.End] + 1
		}
	}
	return sizes
}
