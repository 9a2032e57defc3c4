package netgraph

// unionFind tracks which nodes have been merged into one connectivity class
// by a junction. Node ids are dense, so plain slices replace maps.
type unionFind struct {
	parent []NodeID
	rank   []int
}

// newUnionFind creates n singleton classes
func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]NodeID, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = NodeID(i)
	}
	return uf
}

// Connect merges the classes of a and b
func (uf *unionFind) Connect(a, b NodeID) {
	rootA := uf.Find(a)
	rootB := uf.Find(b)

	if rootA == rootB {
		return
	}

	// Union by rank
	switch {
	case uf.rank[rootA] < uf.rank[rootB]:
		uf.parent[rootA] = rootB
	case uf.rank[rootA] > uf.rank[rootB]:
		uf.parent[rootB] = rootA
	default:
		uf.parent[rootB] = rootA
		uf.rank[rootA]++
	}
}

// Find returns the representative of the class containing n, compressing
// the path on the way back.
func (uf *unionFind) Find(n NodeID) NodeID {
	root := n
	for uf.parent[root] != root {
		root = uf.parent[root]
	}

	for n != root {
		next := uf.parent[n]
		uf.parent[n] = root
		n = next
	}

	return root
}

// Classes groups node ids by representative. Members are in ascending order.
func (uf *unionFind) Classes() map[NodeID][]NodeID {
	classes := make(map[NodeID][]NodeID)
	for i := range uf.parent {
		root := uf.Find(NodeID(i))
		classes[root] = append(classes[root], NodeID(i))
	}
	return classes
}
