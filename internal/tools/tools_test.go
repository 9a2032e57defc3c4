package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/doccache"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/trace"
)

const demo = "../../pkg/kicad/schematic/testdata/demo.kicad_sch"

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newToolset(t *testing.T) *Toolset {
	t.Helper()
	cache, err := doccache.New(4, nil)
	require.NoError(t, err)
	tracer, err := trace.New(nil)
	require.NoError(t, err)
	return New(cache, tracer)
}

func call(t *testing.T, h handler, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text, res.IsError
}

func TestListComponents(t *testing.T) {
	ts := newToolset(t)

	out, isErr := call(t, ts.handleListComponents, map[string]any{"file_path": demo})
	require.False(t, isErr, out)

	var comps []componentView
	require.NoError(t, json.Unmarshal([]byte(out), &comps))
	require.Len(t, comps, 2)
	assert.Equal(t, "R1", comps[0].Reference)
	assert.Equal(t, "Resistor_SMD:R_0805_2012Metric", comps[0].Footprint)

	out, _ = call(t, ts.handleListComponents, map[string]any{"file_path": demo, "value": "4k7"})
	require.NoError(t, json.Unmarshal([]byte(out), &comps))
	require.Len(t, comps, 1)
	assert.Equal(t, "R2", comps[0].Reference)
}

func TestSymbolDetails(t *testing.T) {
	ts := newToolset(t)

	out, isErr := call(t, ts.handleSymbolDetails, map[string]any{"file_path": demo, "reference": "R1"})
	require.False(t, isErr, out)

	var comp componentView
	require.NoError(t, json.Unmarshal([]byte(out), &comp))
	assert.Equal(t, "10k", comp.Value)
	assert.Equal(t, 1, comp.Unit)
	assert.Equal(t, "3f1c2a9e-5b7d-4e21-9c0a-6d8e4f2b1a33", comp.UUID)
	require.Len(t, comp.Pins, 2)
	assert.Equal(t, "passive", comp.Pins[0].Type)

	out, isErr = call(t, ts.handleSymbolDetails, map[string]any{"file_path": demo, "reference": "U7"})
	assert.True(t, isErr)
	assert.Contains(t, out, "U7")
}

func TestSearchSymbols(t *testing.T) {
	ts := newToolset(t)

	out, isErr := call(t, ts.handleSearchSymbols, map[string]any{"file_path": demo, "pattern": "device:r"})
	require.False(t, isErr, out)
	var comps []componentView
	require.NoError(t, json.Unmarshal([]byte(out), &comps))
	assert.Len(t, comps, 2)

	out, isErr = call(t, ts.handleSearchSymbols, map[string]any{"file_path": demo, "pattern": "nothing-here"})
	require.False(t, isErr)
	assert.Equal(t, "[]", out)

	out, isErr = call(t, ts.handleSearchSymbols, map[string]any{"file_path": demo, "pattern": "[unclosed"})
	assert.True(t, isErr)
	assert.Contains(t, out, "[unclosed")
}

func TestTraceTool(t *testing.T) {
	ts := newToolset(t)

	out, isErr := call(t, ts.handleTrace, map[string]any{"file_path": demo, "reference": "R1"})
	require.False(t, isErr, out)

	var report struct {
		Component       string `json:"component"`
		ConnectedLabels []struct {
			Name string `json:"name"`
		} `json:"connected_labels"`
		TracePath []map[string]float64 `json:"trace_path"`
		Error     string               `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "R1", report.Component)
	assert.Empty(t, report.Error)
	assert.Len(t, report.TracePath, 3)
	require.Len(t, report.ConnectedLabels, 2)
	assert.Equal(t, "PWR:+3V3", report.ConnectedLabels[0].Name)
	assert.Equal(t, "SENSE", report.ConnectedLabels[1].Name)

	// R2 sits about 22mm from the nearest wire point
	out, isErr = call(t, ts.handleTrace, map[string]any{"file_path": demo, "reference": "R2"})
	assert.True(t, isErr)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Contains(t, report.Error, "R2")
	assert.Contains(t, report.Error, "tolerance 20.00mm")

	out, isErr = call(t, ts.handleTrace, map[string]any{"file_path": demo, "reference": "Q1"})
	assert.True(t, isErr)
	assert.Contains(t, out, "component not found: Q1")
}

func TestConnectionsAndArea(t *testing.T) {
	ts := newToolset(t)

	out, isErr := call(t, ts.handleConnections, map[string]any{"file_path": demo, "reference": "R1"})
	require.False(t, isErr, out)
	var conn trace.ConnectionReport
	require.NoError(t, json.Unmarshal([]byte(out), &conn))
	assert.Empty(t, conn.NearbyComponents)
	require.NotEmpty(t, conn.NearbyLabels)
	assert.Equal(t, "VDIV", conn.NearbyLabels[0].Name)

	out, isErr = call(t, ts.handleConnections, map[string]any{"file_path": demo, "reference": "R1", "k": 1.0})
	require.False(t, isErr, out)
	require.NoError(t, json.Unmarshal([]byte(out), &conn))
	require.Len(t, conn.NearbyComponents, 1)
	assert.Equal(t, "R2", conn.NearbyComponents[0].Reference)
	assert.Equal(t, 40.0, conn.NearbyComponents[0].Distance)
	require.Len(t, conn.NearbyLabels, 1)
	assert.Equal(t, "VDIV", conn.NearbyLabels[0].Name)

	out, isErr = call(t, ts.handleArea, map[string]any{"file_path": demo, "x": 120.0, "y": 100.0, "radius": 25.0})
	require.False(t, isErr, out)
	var area trace.AreaReport
	require.NoError(t, json.Unmarshal([]byte(out), &area))
	assert.Equal(t, 25.0, area.Radius)
	require.Len(t, area.Components, 2)
	assert.Equal(t, 20.0, area.Components[0].Distance)

	out, isErr = call(t, ts.handleArea, map[string]any{"file_path": demo, "x": 0.0})
	assert.True(t, isErr)
	assert.Contains(t, out, "y")
}

func TestFileErrors(t *testing.T) {
	ts := newToolset(t)
	missing := filepath.Join(t.TempDir(), "gone.kicad_sch")

	out, isErr := call(t, ts.handleInfo, map[string]any{"file_path": missing})
	assert.True(t, isErr)
	assert.Contains(t, out, "gone.kicad_sch")

	out, isErr = call(t, ts.handleInfo, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, out, "file_path")

	out, isErr = call(t, ts.handleInfo, map[string]any{"file_path": demo})
	require.False(t, isErr, out)
	assert.Contains(t, out, "Sensor Front End")
	assert.Contains(t, out, "adc.kicad_sch")
}

func TestListNets(t *testing.T) {
	ts := newToolset(t)

	out, isErr := call(t, ts.handleNets, map[string]any{"file_path": demo})
	require.False(t, isErr, out)
	var nets []netView
	require.NoError(t, json.Unmarshal([]byte(out), &nets))
	require.Len(t, nets, 3)
	assert.Equal(t, netView{Name: "+3V3", Code: 2, Kind: "power"}, nets[0])
	assert.Equal(t, "SENSE", nets[1].Name)
	assert.Equal(t, "VDIV", nets[2].Name)

	out, isErr = call(t, ts.handleNets, map[string]any{"file_path": demo, "filter_power": true})
	require.False(t, isErr, out)
	require.NoError(t, json.Unmarshal([]byte(out), &nets))
	require.Len(t, nets, 1)
	assert.Equal(t, "+3V3", nets[0].Name)
}

func TestIsPowerNet(t *testing.T) {
	assert.True(t, isPowerNet(schematic.Label{Name: "AGND", Kind: schematic.KindGlobal}))
	assert.True(t, isPowerNet(schematic.Label{Name: "VDD_IO", Kind: schematic.KindLocal}))
	assert.True(t, isPowerNet(schematic.Label{Name: "RAIL", Kind: schematic.KindPower}))
	assert.False(t, isPowerNet(schematic.Label{Name: "SDA", Kind: schematic.KindLocal}))
}

func TestListComponentTypes(t *testing.T) {
	ts := newToolset(t)

	out, isErr := call(t, ts.handleComponentTypes, map[string]any{"file_path": demo})
	require.False(t, isErr, out)
	var types []typeView
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	assert.Equal(t, []typeView{{Type: "R", Count: 2, References: []string{"R1", "R2"}}}, types)
}

func TestFindComponentByValue(t *testing.T) {
	ts := newToolset(t)

	out, isErr := call(t, ts.handleByValue, map[string]any{"file_path": demo, "value_pattern": "^10"})
	require.False(t, isErr, out)
	var comps []componentView
	require.NoError(t, json.Unmarshal([]byte(out), &comps))
	require.Len(t, comps, 1)
	assert.Equal(t, "R1", comps[0].Reference)

	out, isErr = call(t, ts.handleByValue, map[string]any{"file_path": demo, "value_pattern": "K"})
	require.False(t, isErr, out)
	require.NoError(t, json.Unmarshal([]byte(out), &comps))
	assert.Len(t, comps, 2)

	out, isErr = call(t, ts.handleByValue, map[string]any{"file_path": demo, "value_pattern": "("})
	assert.True(t, isErr)
	assert.Contains(t, out, "invalid value pattern")

	out, isErr = call(t, ts.handleByValue, map[string]any{"file_path": demo})
	assert.True(t, isErr)
	assert.Contains(t, out, "value_pattern")
}

func TestSignalPathTool(t *testing.T) {
	ts := newToolset(t)

	out, isErr := call(t, ts.handleSignalPath, map[string]any{"file_path": demo, "start_reference": "R1"})
	require.False(t, isErr, out)
	var report trace.SignalReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "R1", report.Start)
	assert.Equal(t, trace.DefaultSignalDepth, report.MaxDepth)
	// R2 is 40mm away, beyond component proximity
	assert.Empty(t, report.Hops)
	require.Len(t, report.Labels, 2)
	assert.Equal(t, "SENSE", report.Labels[1].Name)

	out, isErr = call(t, ts.handleSignalPath, map[string]any{"file_path": demo, "start_reference": "Q1", "max_depth": 2.0})
	assert.True(t, isErr)
	assert.Contains(t, out, "component not found: Q1")
}
