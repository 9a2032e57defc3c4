package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
)

func (ts *Toolset) infoTool() mcp.Tool {
	return mcp.NewTool("get_schematic_info",
		mcp.WithDescription("Title block, hierarchical sheets and entity counts of a KiCad schematic."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
	)
}

func (ts *Toolset) handleInfo(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}

	gaps := make([]string, 0, len(doc.Gaps))
	for _, g := range doc.Gaps {
		gaps = append(gaps, g.String())
	}

	return jsonResult(map[string]any{
		"path":        doc.Path,
		"version":     doc.Version,
		"generator":   doc.Generator,
		"title_block": doc.TitleBlock,
		"sheets":      doc.Sheets,
		"components":  len(doc.Components),
		"labels":      doc.Labels,
		"wires":       len(doc.Wires),
		"junctions":   len(doc.Junctions),
		"skipped":     gaps,
	})
}

func (ts *Toolset) listComponentsTool() mcp.Tool {
	return mcp.NewTool("list_schematic_components",
		mcp.WithDescription("List placed components, optionally filtered by reference prefix and value."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
		mcp.WithString("type", mcp.Description("Reference prefix such as R, C or U")),
		mcp.WithString("value", mcp.Description("Case-insensitive substring of the component value")),
	)
}

func (ts *Toolset) handleListComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}

	comps := doc.FilterComponents(req.GetString("type", ""), req.GetString("value", ""))
	return jsonResult(summarizeAll(comps))
}

func (ts *Toolset) symbolDetailsTool() mcp.Tool {
	return mcp.NewTool("get_symbol_details",
		mcp.WithDescription("Full details of one component: properties, pins and placement."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
		mcp.WithString("reference", mcp.Required(), mcp.Description("Reference designator, e.g. R1")),
	)
}

func (ts *Toolset) handleSymbolDetails(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}
	ref, err := req.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	comp, ok := doc.ComponentByReference(ref)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("component %s not found in %s", ref, doc.Path)), nil
	}
	return jsonResult(detail(comp))
}

func (ts *Toolset) searchSymbolsTool() mcp.Tool {
	return mcp.NewTool("search_symbols",
		mcp.WithDescription("Search components by regular expression over reference, value and library id (case-insensitive)."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Regular expression")),
	)
}

func (ts *Toolset) handleSearchSymbols(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	found, err := doc.SearchComponents(pattern)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if found == nil {
		found = []schematic.Component{}
	}
	return jsonResult(summarizeAll(found))
}

func (ts *Toolset) netsTool() mcp.Tool {
	return mcp.NewTool("list_schematic_nets",
		mcp.WithDescription("List the net names declared by labels and power ports, sorted by name."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
		mcp.WithBoolean("filter_power", mcp.Description("Only show power nets (GND, VCC, +3V3, ...)")),
	)
}

type netView struct {
	Name string              `json:"name"`
	Code int                 `json:"code"`
	Kind schematic.LabelKind `json:"kind"`
}

var powerNetHints = []string{"gnd", "vcc", "vdd", "vss", "+", "-"}

// isPowerNet treats power ports and conventionally named supply labels as power
func isPowerNet(l schematic.Label) bool {
	if l.Kind == schematic.KindPower {
		return true
	}
	name := strings.ToLower(l.Name)
	for _, hint := range powerNetHints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

func (ts *Toolset) handleNets(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}
	powerOnly := req.GetBool("filter_power", false)

	nets := make([]netView, 0, len(doc.Labels))
	for _, l := range doc.Labels {
		if powerOnly && !isPowerNet(l) {
			continue
		}
		nets = append(nets, netView{Name: l.Name, Code: l.Code, Kind: l.Kind})
	}
	sort.Slice(nets, func(i, j int) bool { return nets[i].Name < nets[j].Name })
	return jsonResult(nets)
}

func (ts *Toolset) componentTypesTool() mcp.Tool {
	return mcp.NewTool("list_component_types",
		mcp.WithDescription("Group components by reference prefix (R, C, U, ...) with counts."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
	)
}

type typeView struct {
	Type       string   `json:"type"`
	Count      int      `json:"count"`
	References []string `json:"references"`
}

func (ts *Toolset) handleComponentTypes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}

	byPrefix := doc.ComponentTypes()
	types := make([]typeView, 0, len(byPrefix))
	for prefix, refs := range byPrefix {
		types = append(types, typeView{Type: prefix, Count: len(refs), References: refs})
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Type < types[j].Type })
	return jsonResult(types)
}

func (ts *Toolset) byValueTool() mcp.Tool {
	return mcp.NewTool("find_component_by_value",
		mcp.WithDescription("Find components whose value matches a regular expression (case-insensitive)."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
		mcp.WithString("value_pattern", mcp.Required(), mcp.Description("Regular expression, e.g. ^10k or 100n")),
	)
}

func (ts *Toolset) handleByValue(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}
	pattern, err := req.RequireString("value_pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	found, err := doc.ComponentsByValue(pattern)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summarizeAll(found))
}
