package trace

import (
	"fmt"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/spatial"
)

// SignalHop is a component reached while walking outward from the start
type SignalHop struct {
	Reference string  `json:"reference"`
	Value     string  `json:"value"`
	From      string  `json:"from"`
	Depth     int     `json:"depth"`
	Distance  float64 `json:"distance"`
}

// SignalReport combines the wire trace of a start component with the
// components placed around it, hop by hop
type SignalReport struct {
	Start    string           `json:"start"`
	Value    string           `json:"value"`
	MaxDepth int              `json:"max_depth"`
	Labels   []ConnectedLabel `json:"labels"`
	Hops     []SignalHop      `json:"hops"`
	Error    string           `json:"error,omitempty"`
	Err      error            `json:"-"`
}

// SignalPath traces the start component and then walks outward over
// components: hop d lists the components within ComponentProximity of a
// hop d-1 component that were not listed before. A non-positive maxDepth
// means DefaultSignalDepth. An unwired start still yields its hops.
func (t *Tracer) SignalPath(doc *schematic.Document, reference string, maxDepth int) SignalReport {
	if maxDepth <= 0 {
		maxDepth = DefaultSignalDepth
	}
	report := SignalReport{Start: reference, MaxDepth: maxDepth}

	start, ok := doc.ComponentByReference(reference)
	if !ok {
		report.Err = fmt.Errorf("%w: %s", ErrComponentNotFound, reference)
		report.Error = report.Err.Error()
		return report
	}
	report.Value = start.Value
	report.Labels = t.Trace(doc, reference).ConnectedLabels

	listed := map[string]bool{start.Reference: true}
	frontier := []schematic.Component{start}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []schematic.Component
		for _, from := range frontier {
			for _, h := range spatial.Within(from.Position, doc.Components, t.cfg.ComponentProximity, componentPos) {
				if listed[h.Item.Reference] {
					continue
				}
				listed[h.Item.Reference] = true
				next = append(next, h.Item)
				report.Hops = append(report.Hops, SignalHop{
					Reference: h.Item.Reference,
					Value:     h.Item.Value,
					From:      from.Reference,
					Depth:     depth,
					Distance:  h.Distance,
				})
			}
		}
		frontier = next
	}

	t.logger.Debug("walked signal path",
		"start", reference,
		"max_depth", maxDepth,
		"hops", len(report.Hops))

	return report
}
