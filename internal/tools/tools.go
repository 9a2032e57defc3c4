// Package tools exposes schematic queries and connectivity traces as MCP
// tools. Every handler reports query failures (missing file, unknown
// reference, unwired component) as tool-level errors so the client sees
// the message; transport errors are reserved for protocol problems.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/trace"
)

// Loader returns the parsed document for a schematic path.
// *doccache.Cache satisfies it.
type Loader interface {
	Load(path string) (*schematic.Document, error)
}

// Toolset holds the shared dependencies of all tool handlers
type Toolset struct {
	docs   Loader
	tracer *trace.Tracer
}

func New(docs Loader, tracer *trace.Tracer) *Toolset {
	return &Toolset{docs: docs, tracer: tracer}
}

// Register adds every tool to s
func (ts *Toolset) Register(s *server.MCPServer) {
	s.AddTool(ts.infoTool(), ts.handleInfo)
	s.AddTool(ts.listComponentsTool(), ts.handleListComponents)
	s.AddTool(ts.symbolDetailsTool(), ts.handleSymbolDetails)
	s.AddTool(ts.searchSymbolsTool(), ts.handleSearchSymbols)
	s.AddTool(ts.traceTool(), ts.handleTrace)
	s.AddTool(ts.connectionsTool(), ts.handleConnections)
	s.AddTool(ts.areaTool(), ts.handleArea)
	s.AddTool(ts.netsTool(), ts.handleNets)
	s.AddTool(ts.componentTypesTool(), ts.handleComponentTypes)
	s.AddTool(ts.byValueTool(), ts.handleByValue)
	s.AddTool(ts.signalPathTool(), ts.handleSignalPath)
}

// NewServer creates an MCP server with the toolset registered
func NewServer(name, version string, ts *Toolset) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	ts.Register(s)
	return s
}

// load reads the file_path argument and returns its document, or a tool
// error result naming the path
func (ts *Toolset) load(req mcp.CallToolRequest) (*schematic.Document, *mcp.CallToolResult) {
	path, err := req.RequireString("file_path")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	doc, err := ts.docs.Load(path)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return doc, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// componentView is the wire shape of a component
type componentView struct {
	Reference  string             `json:"reference"`
	Value      string             `json:"value"`
	LibID      string             `json:"lib_id"`
	Footprint  string             `json:"footprint,omitempty"`
	Position   schematic.Position `json:"position"`
	Rotation   float64            `json:"rotation,omitempty"`
	Unit       int                `json:"unit,omitempty"`
	UUID       string             `json:"uuid,omitempty"`
	Pins       []pinView          `json:"pins,omitempty"`
	Properties map[string]string  `json:"properties,omitempty"`
}

type pinView struct {
	Number string `json:"number"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

// summarize keeps the fields listed by the bulk queries
func summarize(c schematic.Component) componentView {
	return componentView{
		Reference: c.Reference,
		Value:     c.Value,
		LibID:     c.LibID,
		Footprint: c.Footprint,
		Position:  c.Position,
	}
}

func detail(c schematic.Component) componentView {
	v := summarize(c)
	v.Rotation = float64(c.Rotation)
	v.Unit = c.Unit
	if c.UUID != uuid.Nil {
		v.UUID = c.UUID.String()
	}
	v.Properties = c.Properties
	for _, p := range c.Pins {
		v.Pins = append(v.Pins, pinView{Number: p.Number, Name: p.Name, Type: p.Type, Hidden: p.Hidden})
	}
	return v
}

func summarizeAll(comps []schematic.Component) []componentView {
	views := make([]componentView, 0, len(comps))
	for _, c := range comps {
		views = append(views, summarize(c))
	}
	return views
}
