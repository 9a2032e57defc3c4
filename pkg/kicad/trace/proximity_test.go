package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
)

func nearbyRefs(comps []NearbyComponent) []string {
	refs := make([]string, len(comps))
	for i, c := range comps {
		refs[i] = c.Reference
	}
	return refs
}

func nearbyNames(labels []NearbyLabel) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

// row places R1..R4 at x = 0, 10, 20 and 100
func row() *schematic.Document {
	return &schematic.Document{
		Components: []schematic.Component{
			resistor("R1", pt(0, 0)),
			resistor("R2", pt(10, 0)),
			resistor("R3", pt(20, 0)),
			resistor("R4", pt(100, 0)),
		},
		Labels: []schematic.Label{
			{Name: "GND", Code: 0, Position: pt(300, 0), Kind: schematic.KindPower},
			{Name: "SDA", Code: 1, Position: pt(0, 6), Kind: schematic.KindLocal},
		},
		PowerSymbols: []schematic.Label{
			{Name: "GND", Code: 0, Position: pt(300, 0), Kind: schematic.KindPower},
			{Name: "GND", Code: 1, Position: pt(0, 2), Kind: schematic.KindPower},
		},
	}
}

func TestConnections(t *testing.T) {
	report := newTracer(t, nil).Connections(row(), "R1")
	require.NoError(t, report.Err)

	assert.Equal(t, []string{"R2"}, nearbyRefs(report.NearbyComponents))
	// The second GND port is found even though the first one owns the name
	assert.Equal(t, []string{"GND", "SDA"}, nearbyNames(report.NearbyLabels))
	assert.Equal(t, pt(0, 2), report.NearbyLabels[0].Position)

	report = newTracer(t, nil).Connections(row(), "Q1")
	assert.True(t, errors.Is(report.Err, ErrComponentNotFound))
	assert.Contains(t, report.Error, "Q1")
}

func TestArea(t *testing.T) {
	tr := newTracer(t, nil)

	report := tr.Area(row(), pt(95, 0), 0)
	assert.Equal(t, DefaultAreaRadius, report.Radius)
	assert.Equal(t, []string{"R4"}, nearbyRefs(report.Components))
	assert.Empty(t, report.Labels)

	report = tr.Area(row(), pt(0, 0), 12)
	assert.Equal(t, []string{"R1", "R2"}, nearbyRefs(report.Components))
	assert.Equal(t, []string{"GND", "SDA"}, nearbyNames(report.Labels))
}

func TestClosest(t *testing.T) {
	tr := newTracer(t, nil)

	report := tr.Closest(row(), "R1", 3)
	require.NoError(t, report.Err)
	// No radius: R4 at 100mm is still one of the three nearest
	assert.Equal(t, []string{"R2", "R3", "R4"}, nearbyRefs(report.NearbyComponents))
	assert.Equal(t, []string{"GND", "SDA", "GND"}, nearbyNames(report.NearbyLabels))

	report = tr.Closest(row(), "R1", 1)
	assert.Equal(t, []string{"R2"}, nearbyRefs(report.NearbyComponents))
	assert.Equal(t, 10.0, report.NearbyComponents[0].Distance)

	report = tr.Closest(row(), "U9", 2)
	assert.True(t, errors.Is(report.Err, ErrComponentNotFound))
}

func TestSignalPath(t *testing.T) {
	tr := newTracer(t, nil)

	tests := []struct {
		depth int
		want  []string
	}{
		{1, []string{"R2"}},
		{2, []string{"R2", "R3"}},
		{5, []string{"R2", "R3"}},
	}
	for _, tt := range tests {
		report := tr.SignalPath(row(), "R1", tt.depth)
		require.NoError(t, report.Err)

		refs := make([]string, len(report.Hops))
		for i, h := range report.Hops {
			refs[i] = h.Reference
		}
		assert.Equal(t, tt.want, refs, "depth %d", tt.depth)
	}

	report := tr.SignalPath(row(), "R1", 0)
	assert.Equal(t, DefaultSignalDepth, report.MaxDepth)
	require.Len(t, report.Hops, 2)
	assert.Equal(t, SignalHop{Reference: "R3", Value: "10k", From: "R2", Depth: 2, Distance: 10}, report.Hops[1])
	// R1 has no wires, so only the nearby GND port is reported
	assert.Equal(t, []string{"PWR:GND"}, labelNames(report.Labels))

	report = tr.SignalPath(row(), "R8", 2)
	assert.True(t, errors.Is(report.Err, ErrComponentNotFound))
}
