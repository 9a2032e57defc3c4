// Package netgraph builds the undirected graph of electrically touching
// points from schematic wire segments and junctions.
//
// Nodes are identified by exact coordinate as written in the file. Two
// wires meeting at a point are joined only when the coordinates are
// bit-identical or a junction lies within tolerance of both ends; a T
// intersection drawn without a junction whose coordinates differ in the
// last digit stays disconnected.
package netgraph

import (
	"math"
	"sort"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
)

// DefaultJunctionTolerance is the distance (mm) within which wire points are
// merged into a declared junction
const DefaultJunctionTolerance = 0.01

// NodeID is a dense handle for a distinct wire point
type NodeID int

// Graph is an immutable wire network. Neighbour lists are sorted by node id,
// so two graphs built from the same input are identical.
type Graph struct {
	points    []sexp.Position
	index     map[sexp.Position]NodeID
	neighbors [][]NodeID
	classes   []NodeID // junction class representative per node
}

// Build creates the wire network. Every segment adds an edge between its
// endpoints. Every junction merges all nodes within tol of it into one class
// whose members are mutual neighbours and share each other's neighbours.
func Build(wires []schematic.Wire, junctions []sexp.Position, tol float64) *Graph {
	if tol < 0 || math.IsNaN(tol) {
		tol = DefaultJunctionTolerance
	}

	g := &Graph{index: make(map[sexp.Position]NodeID)}

	type edge struct{ a, b NodeID }
	edges := make([]edge, 0, len(wires))
	for _, w := range wires {
		a := g.intern(w.Start)
		b := g.intern(w.End)
		if a != b {
			edges = append(edges, edge{a, b})
		}
	}

	uf := newUnionFind(len(g.points))
	for _, j := range junctions {
		var first NodeID = -1
		for id, p := range g.points {
			if p.DistanceTo(j) > tol {
				continue
			}
			if first < 0 {
				first = NodeID(id)
				continue
			}
			uf.Connect(first, NodeID(id))
		}
	}

	members := uf.Classes()
	g.classes = make([]NodeID, len(g.points))
	for root, ids := range members {
		for _, id := range ids {
			g.classes[id] = root
		}
	}

	sets := make([]map[NodeID]struct{}, len(g.points))
	for i := range sets {
		sets[i] = make(map[NodeID]struct{})
	}
	link := func(a, b NodeID) {
		if a == b {
			return
		}
		sets[a][b] = struct{}{}
		sets[b][a] = struct{}{}
	}

	for _, ids := range members {
		for i := range ids {
			for j := i + 1; j < len(ids); j++ {
				link(ids[i], ids[j])
			}
		}
	}
	for _, e := range edges {
		for _, a := range members[g.classes[e.a]] {
			for _, b := range members[g.classes[e.b]] {
				link(a, b)
			}
		}
	}

	g.neighbors = make([][]NodeID, len(g.points))
	for id, set := range sets {
		list := make([]NodeID, 0, len(set))
		for n := range set {
			list = append(list, n)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		g.neighbors[id] = list
	}

	return g
}

func (g *Graph) intern(p sexp.Position) NodeID {
	if id, ok := g.index[p]; ok {
		return id
	}
	id := NodeID(len(g.points))
	g.points = append(g.points, p)
	g.index[p] = id
	return id
}

// Len returns the number of distinct points
func (g *Graph) Len() int {
	return len(g.points)
}

// Point returns the coordinate of a node
func (g *Graph) Point(id NodeID) sexp.Position {
	return g.points[id]
}

// Lookup returns the node at exactly p
func (g *Graph) Lookup(p sexp.Position) (NodeID, bool) {
	id, ok := g.index[p]
	return id, ok
}

// Neighbors returns the nodes directly reachable from id, in ascending order
func (g *Graph) Neighbors(id NodeID) []NodeID {
	return g.neighbors[id]
}

// SameJunction reports whether a and b were merged by a junction
func (g *Graph) SameJunction(a, b NodeID) bool {
	return g.classes[a] == g.classes[b]
}

// EdgeCount returns the number of undirected edges after junction merging
func (g *Graph) EdgeCount() int {
	n := 0
	for _, list := range g.neighbors {
		n += len(list)
	}
	return n / 2
}

// Nearest returns the node closest to p. Ties go to the node seen first.
// ok is false for an empty graph.
func (g *Graph) Nearest(p sexp.Position) (id NodeID, dist float64, ok bool) {
	dist = math.Inf(1)
	for i, pt := range g.points {
		if d := p.DistanceTo(pt); d < dist {
			id, dist, ok = NodeID(i), d, true
		}
	}
	return id, dist, ok
}

// Adjacency returns the network as point -> directly reachable points
func (g *Graph) Adjacency() map[sexp.Position][]sexp.Position {
	adj := make(map[sexp.Position][]sexp.Position, len(g.points))
	for id, list := range g.neighbors {
		pts := make([]sexp.Position, len(list))
		for i, n := range list {
			pts[i] = g.points[n]
		}
		adj[g.points[id]] = pts
	}
	return adj
}
