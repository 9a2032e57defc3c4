package netgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
)

func pt(x, y float64) sexp.Position { return sexp.Position{X: x, Y: y} }

func seg(x1, y1, x2, y2 float64) schematic.Wire {
	return schematic.Wire{Start: pt(x1, y1), End: pt(x2, y2)}
}

func neighborPoints(g *Graph, p sexp.Position) []sexp.Position {
	id, ok := g.Lookup(p)
	if !ok {
		return nil
	}
	var out []sexp.Position
	for _, n := range g.Neighbors(id) {
		out = append(out, g.Point(n))
	}
	return out
}

func TestBuildSimplePath(t *testing.T) {
	g := Build([]schematic.Wire{
		seg(0, 0, 10, 0),
		seg(10, 0, 10, 10),
		seg(10, 10, 20, 10),
	}, nil, DefaultJunctionTolerance)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 3, g.EdgeCount())
	assert.ElementsMatch(t, []sexp.Position{pt(0, 0), pt(10, 10)}, neighborPoints(g, pt(10, 0)))
	assert.Equal(t, []sexp.Position{pt(10, 10)}, neighborPoints(g, pt(20, 10)))
}

func TestBuildIsDeterministic(t *testing.T) {
	wires := []schematic.Wire{
		seg(0, 0, 10, 0),
		seg(10, 0.005, 10, 10),
		seg(10, 0, 20, 0),
		seg(5, 5, 5, 5),
	}
	junctions := []sexp.Position{pt(10, 0)}

	first := Build(wires, junctions, DefaultJunctionTolerance)
	second := Build(wires, junctions, DefaultJunctionTolerance)

	assert.Equal(t, first.Adjacency(), second.Adjacency())
	assert.Equal(t, first.EdgeCount(), second.EdgeCount())
}

func TestJunctionMergesNearbyPoints(t *testing.T) {
	// Two wire ends within 0.01mm of the junction, written with different digits
	g := Build([]schematic.Wire{
		seg(0, 0, 10, 0),
		seg(10.004, 0, 10.004, 10),
		seg(20, 0, 10.05, 0),
	}, []sexp.Position{pt(10, 0)}, DefaultJunctionTolerance)

	a, ok := g.Lookup(pt(10, 0))
	require.True(t, ok)
	b, ok := g.Lookup(pt(10.004, 0))
	require.True(t, ok)
	outside, ok := g.Lookup(pt(10.05, 0))
	require.True(t, ok)

	assert.True(t, g.SameJunction(a, b))
	assert.False(t, g.SameJunction(a, outside))

	// Members reach each other in one hop, in both directions
	assert.Contains(t, g.Neighbors(a), b)
	assert.Contains(t, g.Neighbors(b), a)

	// and share neighbours
	assert.Contains(t, neighborPoints(g, pt(10, 0)), pt(10.004, 10))
	assert.Contains(t, neighborPoints(g, pt(10.004, 0)), pt(0, 0))
	assert.Contains(t, neighborPoints(g, pt(0, 0)), pt(10.004, 0))

	// The point 0.05mm away stays on its own wire
	assert.Equal(t, []sexp.Position{pt(20, 0)}, neighborPoints(g, pt(10.05, 0)))
}

func TestAdjacencyIsSymmetric(t *testing.T) {
	g := Build([]schematic.Wire{
		seg(0, 0, 10, 0),
		seg(10, 0, 10, 10),
		seg(10, 0.001, 20, 0),
		seg(30, 30, 40, 40),
	}, []sexp.Position{pt(10, 0), pt(99, 99)}, DefaultJunctionTolerance)

	adj := g.Adjacency()
	for p, list := range adj {
		for _, n := range list {
			assert.NotEqual(t, p, n, "self loop at %v", p)
			assert.Contains(t, adj[n], p, "edge %v -> %v has no reverse", p, n)
		}
	}
}

func TestTIntersectionNeedsExactCoordinates(t *testing.T) {
	// A stub ending on the middle of another wire is not joined: node
	// identity is by endpoint, not by lying on a segment
	g := Build([]schematic.Wire{
		seg(0, 0, 20, 0),
		seg(10, 0, 10, 10),
	}, nil, DefaultJunctionTolerance)

	assert.Equal(t, []sexp.Position{pt(20, 0)}, neighborPoints(g, pt(0, 0)))
	assert.Equal(t, []sexp.Position{pt(10, 10)}, neighborPoints(g, pt(10, 0)))

	// Endpoints that differ only in formatting stay apart too
	g = Build([]schematic.Wire{
		seg(0, 0, 10, 0),
		seg(10.0000001, 0, 10, 10),
	}, nil, DefaultJunctionTolerance)
	assert.Equal(t, 4, g.Len())
}

func TestNearest(t *testing.T) {
	g := Build([]schematic.Wire{seg(0, 0, 10, 0), seg(10, 0, 20, 0)}, nil, DefaultJunctionTolerance)

	id, d, ok := g.Nearest(pt(9, 1))
	require.True(t, ok)
	assert.Equal(t, pt(10, 0), g.Point(id))
	assert.InDelta(t, 1.4142, d, 1e-3)

	// Equidistant: the node seen first wins
	id, _, ok = g.Nearest(pt(5, 0))
	require.True(t, ok)
	assert.Equal(t, pt(0, 0), g.Point(id))

	_, _, ok = Build(nil, nil, DefaultJunctionTolerance).Nearest(pt(0, 0))
	assert.False(t, ok)
}
