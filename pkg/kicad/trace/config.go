package trace

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/netgraph"
)

// Config controls the proximity heuristics of the tracer. All distances are
// in schematic millimetres. The defaults are heuristics tuned on typical
// KiCad sheets, not physical constants.
type Config struct {
	// Wire tracing
	AnchorTolerance   float64 // Max distance from component to nearest wire point (default: 20)
	MaxVisited        int     // BFS stops after this many wire points (default: 20)
	LabelTolerance    float64 // Label to visited wire point (default: 5)
	PowerTolerance    float64 // Power symbol to component position (default: 15)
	JunctionTolerance float64 // Wire points merged into a junction (default: 0.01)

	// Proximity reports
	ComponentProximity float64 // Component to component (default: 15)
	LabelProximity     float64 // Component to label (default: 20)

	// Prepended to power net names in trace reports (default: "PWR:")
	PowerPrefix string
}

// DefaultConfig returns a Config with the stock heuristics.
func DefaultConfig() *Config {
	return &Config{
		AnchorTolerance:    20,
		MaxVisited:         20,
		LabelTolerance:     5,
		PowerTolerance:     15,
		JunctionTolerance:  netgraph.DefaultJunctionTolerance,
		ComponentProximity: 15,
		LabelProximity:     20,
		PowerPrefix:        "PWR:",
	}
}

// Validate rejects non-finite distances and replaces unset or negative
// values with their defaults.
func (c *Config) Validate() error {
	def := DefaultConfig()

	fields := []struct {
		name string
		val  *float64
		def  float64
	}{
		{"anchor tolerance", &c.AnchorTolerance, def.AnchorTolerance},
		{"label tolerance", &c.LabelTolerance, def.LabelTolerance},
		{"power tolerance", &c.PowerTolerance, def.PowerTolerance},
		{"junction tolerance", &c.JunctionTolerance, def.JunctionTolerance},
		{"component proximity", &c.ComponentProximity, def.ComponentProximity},
		{"label proximity", &c.LabelProximity, def.LabelProximity},
	}
	for _, f := range fields {
		if math.IsNaN(*f.val) || math.IsInf(*f.val, 0) {
			return fmt.Errorf("%s must be finite, got %v", f.name, *f.val)
		}
		if *f.val <= 0 {
			*f.val = f.def
		}
	}

	if c.MaxVisited < 1 {
		c.MaxVisited = def.MaxVisited
	}

	return nil
}
