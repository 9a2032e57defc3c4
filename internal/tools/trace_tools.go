package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/trace"
)

func (ts *Toolset) traceTool() mcp.Tool {
	return mcp.NewTool("trace_component_connections",
		mcp.WithDescription("Follow the wires attached to a component and report the net labels and power rails it reaches. "+
			"Connectivity is inferred from geometry; unwired components are reported, not guessed."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
		mcp.WithString("reference", mcp.Required(), mcp.Description("Reference designator, e.g. R1")),
	)
}

func (ts *Toolset) handleTrace(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}
	ref, err := req.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report := ts.tracer.Trace(doc, ref)
	res, err := jsonResult(report)
	if err != nil {
		return nil, err
	}
	res.IsError = !report.OK()
	return res, nil
}

func (ts *Toolset) connectionsTool() mcp.Tool {
	return mcp.NewTool("get_component_connections",
		mcp.WithDescription("Components and labels placed near a component, regardless of wiring."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
		mcp.WithString("reference", mcp.Required(), mcp.Description("Reference designator, e.g. U1")),
		mcp.WithNumber("k", mcp.Description("Return the k nearest components and labels instead of a radius search")),
	)
}

func (ts *Toolset) handleConnections(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}
	ref, err := req.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var report trace.ConnectionReport
	if k := req.GetInt("k", 0); k > 0 {
		report = ts.tracer.Closest(doc, ref, k)
	} else {
		report = ts.tracer.Connections(doc, ref)
	}
	res, err := jsonResult(report)
	if err != nil {
		return nil, err
	}
	res.IsError = report.Err != nil
	return res, nil
}

func (ts *Toolset) areaTool() mcp.Tool {
	return mcp.NewTool("analyze_nets_by_area",
		mcp.WithDescription("Components and labels within a radius of a point on the sheet."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Center X in mm")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Center Y in mm")),
		mcp.WithNumber("radius", mcp.Description("Search radius in mm (default 20)")),
	)
}

func (ts *Toolset) handleArea(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}
	x, err := req.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := req.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report := ts.tracer.Area(doc, sexp.Position{X: x, Y: y}, req.GetFloat("radius", 0))
	return jsonResult(report)
}

func (ts *Toolset) signalPathTool() mcp.Tool {
	return mcp.NewTool("trace_signal_path",
		mcp.WithDescription("Trace a component's nets, then walk outward over neighbouring components hop by hop."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to a .kicad_sch file")),
		mcp.WithString("start_reference", mcp.Required(), mcp.Description("Reference designator to start from")),
		mcp.WithNumber("max_depth", mcp.Description("Maximum number of hops (default 3)")),
	)
}

func (ts *Toolset) handleSignalPath(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, fail := ts.load(req)
	if fail != nil {
		return fail, nil
	}
	ref, err := req.RequireString("start_reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report := ts.tracer.SignalPath(doc, ref, req.GetInt("max_depth", 0))
	res, err := jsonResult(report)
	if err != nil {
		return nil, err
	}
	res.IsError = report.Err != nil
	return res, nil
}
