package trace

import (
	"fmt"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/spatial"
)

const (
	// DefaultAreaRadius is used by Area when no radius is given
	DefaultAreaRadius = 20.0
	// DefaultSignalDepth is used by SignalPath when no depth is given
	DefaultSignalDepth = 3
)

// NearbyComponent is a component found by a proximity query
type NearbyComponent struct {
	Reference string        `json:"reference"`
	Value     string        `json:"value"`
	Position  sexp.Position `json:"position"`
	Distance  float64       `json:"distance"`
}

// NearbyLabel is a label found by a proximity query
type NearbyLabel struct {
	Name     string              `json:"name"`
	Kind     schematic.LabelKind `json:"kind"`
	Position sexp.Position       `json:"position"`
	Distance float64             `json:"distance"`
}

// ConnectionReport lists what lies around a component, wired or not
type ConnectionReport struct {
	Component        string            `json:"component"`
	Position         sexp.Position     `json:"position"`
	NearbyComponents []NearbyComponent `json:"nearby_components"`
	NearbyLabels     []NearbyLabel     `json:"nearby_labels"`
	Error            string            `json:"error,omitempty"`
	Err              error             `json:"-"`
}

// AreaReport lists what lies within a circle on the sheet
type AreaReport struct {
	Center     sexp.Position     `json:"center"`
	Radius     float64           `json:"radius"`
	Components []NearbyComponent `json:"components"`
	Labels     []NearbyLabel     `json:"labels"`
}

// Connections reports components within ComponentProximity and labels within
// LabelProximity of the referenced component. This is pure proximity; use
// Trace to follow wires.
func (t *Tracer) Connections(doc *schematic.Document, reference string) ConnectionReport {
	report := ConnectionReport{Component: reference}

	comp, ok := doc.ComponentByReference(reference)
	if !ok {
		report.Err = fmt.Errorf("%w: %s", ErrComponentNotFound, reference)
		report.Error = report.Err.Error()
		return report
	}
	report.Position = comp.Position

	others := otherComponents(doc, comp.Reference)
	report.NearbyComponents = nearbyComponents(comp.Position, others, t.cfg.ComponentProximity)
	report.NearbyLabels = nearbyLabels(comp.Position, doc.PlacedLabels(), t.cfg.LabelProximity)
	return report
}

// Closest reports the k components and the k labels nearest to the
// referenced component, however far away they are
func (t *Tracer) Closest(doc *schematic.Document, reference string, k int) ConnectionReport {
	report := ConnectionReport{Component: reference}

	comp, ok := doc.ComponentByReference(reference)
	if !ok {
		report.Err = fmt.Errorf("%w: %s", ErrComponentNotFound, reference)
		report.Error = report.Err.Error()
		return report
	}
	report.Position = comp.Position

	report.NearbyComponents = componentHits(spatial.Nearest(comp.Position, otherComponents(doc, comp.Reference), k, componentPos))
	report.NearbyLabels = labelHits(spatial.Nearest(comp.Position, doc.PlacedLabels(), k, labelPos))
	return report
}

// Area reports every component and label within radius of center. A
// non-positive radius means DefaultAreaRadius.
func (t *Tracer) Area(doc *schematic.Document, center sexp.Position, radius float64) AreaReport {
	if radius <= 0 {
		radius = DefaultAreaRadius
	}

	return AreaReport{
		Center:     center,
		Radius:     radius,
		Components: nearbyComponents(center, doc.Components, radius),
		Labels:     nearbyLabels(center, doc.PlacedLabels(), radius),
	}
}

func otherComponents(doc *schematic.Document, reference string) []schematic.Component {
	others := make([]schematic.Component, 0, len(doc.Components))
	for _, c := range doc.Components {
		if c.Reference != reference {
			others = append(others, c)
		}
	}
	return others
}

func nearbyComponents(at sexp.Position, comps []schematic.Component, radius float64) []NearbyComponent {
	return componentHits(spatial.Within(at, comps, radius, componentPos))
}

func nearbyLabels(at sexp.Position, labels []schematic.Label, radius float64) []NearbyLabel {
	return labelHits(spatial.Within(at, labels, radius, labelPos))
}

func componentHits(hits []spatial.Hit[schematic.Component]) []NearbyComponent {
	result := make([]NearbyComponent, 0, len(hits))
	for _, h := range hits {
		result = append(result, NearbyComponent{
			Reference: h.Item.Reference,
			Value:     h.Item.Value,
			Position:  h.Item.Position,
			Distance:  h.Distance,
		})
	}
	return result
}

func labelHits(hits []spatial.Hit[schematic.Label]) []NearbyLabel {
	result := make([]NearbyLabel, 0, len(hits))
	for _, h := range hits {
		result = append(result, NearbyLabel{
			Name:     h.Item.Name,
			Kind:     h.Item.Kind,
			Position: h.Item.Position,
			Distance: h.Distance,
		})
	}
	return result
}
