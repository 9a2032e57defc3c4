package trace

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/netgraph"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/spatial"
)

var (
	// ErrComponentNotFound is reported when the reference is not in the document
	ErrComponentNotFound = errors.New("component not found")
	// ErrNoWire is reported when no wire point is close enough to anchor a trace
	ErrNoWire = errors.New("no wire found")
)

// ConnectedLabel is a net name attached to the traced component
type ConnectedLabel struct {
	Name     string              `json:"name"`
	Kind     schematic.LabelKind `json:"kind"`
	Position sexp.Position       `json:"position"`
	Distance float64             `json:"distance"`
}

// Report is the outcome of one trace. When Err is set the trace failed;
// Error carries the same message for callers that only see JSON.
type Report struct {
	Component       string           `json:"component"`
	Position        sexp.Position    `json:"position"`
	ConnectedLabels []ConnectedLabel `json:"connected_labels"`
	TracePath       []sexp.Position  `json:"trace_path"`
	Anchor          *sexp.Position   `json:"anchor,omitempty"`
	AnchorDistance  float64          `json:"anchor_distance"`
	Error           string           `json:"error,omitempty"`
	Err             error            `json:"-"`
}

// OK reports whether the trace reached the wire network
func (r *Report) OK() bool {
	return r.Err == nil
}

func (r *Report) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// Option configures a Tracer
type Option func(*Tracer)

// WithLogger sets the logger used for trace diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracer) {
		if l != nil {
			t.logger = l
		}
	}
}

// Tracer runs connectivity traces against parsed documents. It holds no
// per-document state and may be reused.
type Tracer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Tracer. A nil config uses DefaultConfig.
func New(cfg *Config, opts ...Option) (*Tracer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid trace config: %w", err)
	}

	t := &Tracer{cfg: c, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Config returns the validated configuration in use
func (t *Tracer) Config() Config {
	return t.cfg
}

// Trace follows the wire network from the component with the given reference
// and reports the labels and power rails it reaches.
func (t *Tracer) Trace(doc *schematic.Document, reference string) Report {
	report := Report{Component: reference}

	comp, ok := doc.ComponentByReference(reference)
	if !ok {
		report.fail(fmt.Errorf("%w: %s", ErrComponentNotFound, reference))
		return report
	}
	report.Position = comp.Position

	recorded := make(map[string]bool)
	t.traceWires(&report, doc, comp, recorded)

	// Power proximity does not depend on wiring, so it is kept on failure
	report.ConnectedLabels = append(report.ConnectedLabels, t.powerLabels(doc, comp.Position, recorded)...)

	t.logger.Debug("traced component",
		"reference", reference,
		"anchor_distance", report.AnchorDistance,
		"visited", len(report.TracePath),
		"labels", len(report.ConnectedLabels),
		"error", report.Error)

	return report
}

// traceWires anchors the component on the wire network and walks it
func (t *Tracer) traceWires(report *Report, doc *schematic.Document, comp schematic.Component, recorded map[string]bool) {
	graph := netgraph.Build(doc.Wires, doc.Junctions, t.cfg.JunctionTolerance)

	anchor, dist, ok := graph.Nearest(comp.Position)
	if !ok {
		report.fail(fmt.Errorf("%w near %s: schematic has no wires", ErrNoWire, comp.Reference))
		return
	}
	report.AnchorDistance = dist
	if dist > t.cfg.AnchorTolerance {
		report.fail(fmt.Errorf("%w near %s: nearest wire point is %.2fmm away (tolerance %.2fmm)",
			ErrNoWire, comp.Reference, dist, t.cfg.AnchorTolerance))
		return
	}
	anchorPos := graph.Point(anchor)
	report.Anchor = &anchorPos

	visited := bfs(graph, anchor, t.cfg.MaxVisited)
	report.TracePath = make([]sexp.Position, len(visited))
	for i, id := range visited {
		report.TracePath[i] = graph.Point(id)
	}
	report.ConnectedLabels = t.wireLabels(doc, report.TracePath, recorded)
}

// bfs visits nodes breadth first from start, stopping after limit nodes.
// Nodes are marked when queued so none is visited twice.
func bfs(g *netgraph.Graph, start netgraph.NodeID, limit int) []netgraph.NodeID {
	seen := make([]bool, g.Len())
	seen[start] = true

	queue := []netgraph.NodeID{start}
	var visited []netgraph.NodeID

	for head := 0; head < len(queue) && len(visited) < limit; head++ {
		id := queue[head]
		visited = append(visited, id)

		for _, n := range g.Neighbors(id) {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}

	return visited
}

// wireLabels attaches labels and power symbols near any visited point, first
// occurrence per name, in path order. Power names carry the power prefix so a
// rail and a label of the same name are recorded separately.
func (t *Tracer) wireLabels(doc *schematic.Document, path []sexp.Position, recorded map[string]bool) []ConnectedLabel {
	var result []ConnectedLabel
	candidates := doc.PlacedLabels()

	for _, p := range path {
		for _, l := range candidates {
			name := t.displayName(l)
			if recorded[name] {
				continue
			}
			d := p.DistanceTo(l.Position)
			if d > t.cfg.LabelTolerance {
				continue
			}
			recorded[name] = true
			result = append(result, ConnectedLabel{
				Name:     name,
				Kind:     l.Kind,
				Position: l.Position,
				Distance: d,
			})
		}
	}

	return result
}

// powerLabels attaches power symbols near the component position. A rail
// already recorded is skipped; otherwise its nearest instance is reported.
func (t *Tracer) powerLabels(doc *schematic.Document, at sexp.Position, recorded map[string]bool) []ConnectedLabel {
	hits := spatial.Within(at, doc.PowerSymbols, t.cfg.PowerTolerance, labelPos)

	var result []ConnectedLabel
	for _, h := range hits {
		name := t.displayName(h.Item)
		if recorded[name] {
			continue
		}
		recorded[name] = true
		result = append(result, ConnectedLabel{
			Name:     name,
			Kind:     schematic.KindPower,
			Position: h.Item.Position,
			Distance: h.Distance,
		})
	}
	return result
}

func (t *Tracer) displayName(l schematic.Label) string {
	if l.Kind == schematic.KindPower {
		return t.cfg.PowerPrefix + l.Name
	}
	return l.Name
}

func labelPos(l schematic.Label) sexp.Position { return l.Position }

func componentPos(c schematic.Component) sexp.Position { return c.Position }
