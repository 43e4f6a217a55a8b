package umap

// disjointSet is a union-find over graph vertices with path compression and
// union by size. It tracks the number of disjoint sets.
type disjointSet struct {
	parent []int
	size   []int
	sets   int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	size := make([]int, n)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
		size[i] = 1
	}
	return &disjointSet{parent: parent, size: size, sets: n}
}

// find returns the root of the set containing x, with path compression.
func (ds *disjointSet) find(x int) int {
	root := x
	for ds.parent[root] != -1 {
		root = ds.parent[root]
	}
	for ds.parent[x] != -1 {
		x, ds.parent[x] = ds.parent[x], root
	}
	return root
}

// union merges the sets containing x and y, attaching the smaller tree
// under the larger. It reports whether two distinct sets were merged.
func (ds *disjointSet) union(x, y int) bool {
	rx, ry := ds.find(x), ds.find(y)
	if rx == ry {
		return false
	}
	if ds.size[rx] < ds.size[ry] {
		rx, ry = ry, rx
	}
	ds.parent[ry] = rx
	ds.size[rx] += ds.size[ry]
	ds.sets--
	return true
}
