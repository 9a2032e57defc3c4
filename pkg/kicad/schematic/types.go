// Package schematic extracts components, net labels, wires and sheets from
// KiCad schematic files (.kicad_sch)
package schematic

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
)

// Re-export shared types from sexp package for convenience
type Position = sexp.Position
type Angle = sexp.Angle

// Document is the result of one parse of one schematic file. It and
// everything it contains are read-only once returned.
type Document struct {
	Path         string
	Version      int
	Generator    string
	TitleBlock   TitleBlock
	Components   []Component // Placed symbols, library placeholders (#...) excluded
	Labels       []Label     // Deduplicated net names in discovery order
	PowerSymbols []Label     // Every power port instance in document order, Code is the index here
	Wires        []Wire
	Junctions    []Position
	Sheets       []Sheet
	Gaps         []Gap // Blocks skipped because they could not be read
}

// TitleBlock contains schematic title block information
type TitleBlock struct {
	Title    string
	Date     string
	Revision string
	Company  string
	Comments [4]string
}

// Comment returns the first non-empty comment line
func (tb TitleBlock) Comment() string {
	for _, c := range tb.Comments {
		if c != "" {
			return c
		}
	}
	return ""
}

// Component is a placed symbol instance
type Component struct {
	Reference  string
	Value      string
	LibID      string
	Footprint  string    // Empty when not assigned
	Position   Position  // Placement in mm
	Rotation   Angle     // Third (at ...) token
	Unit       int       // 0 when the instance has no (unit ...)
	UUID       uuid.UUID // uuid.Nil when absent or malformed
	Pins       []Pin
	Properties map[string]string
}

// Pin is a pin of a placed symbol
type Pin struct {
	Number string
	Name   string // From the embedded library symbol, empty if unknown
	Type   string // Electrical type (input, passive, power_in, ...), empty if unknown
	Hidden bool   // Pin is hidden in the library symbol
}

// LabelKind says which construct declared a net name
type LabelKind string

const (
	KindGlobal       LabelKind = "global"
	KindLocal        LabelKind = "local"
	KindHierarchical LabelKind = "hierarchical"
	KindPower        LabelKind = "power"
)

// Label is a named net anchor on the sheet
type Label struct {
	Name     string
	Code     int // Discovery order within the document, starting at 0
	Position Position
	Kind     LabelKind
}

// Wire is a single straight wire segment
type Wire struct {
	Start Position
	End   Position
}

// Sheet represents a hierarchical sheet reference
type Sheet struct {
	Name string
	File string
}

// Gap records a block that was skipped during extraction
type Gap struct {
	Kind   string // symbol, label, wire, junction, sheet
	Line   int
	Reason string
}

func (g Gap) String() string {
	return fmt.Sprintf("%s at line %d: %s", g.Kind, g.Line, g.Reason)
}

// ComponentByReference returns the component with the given reference designator
func (d *Document) ComponentByReference(ref string) (Component, bool) {
	for _, c := range d.Components {
		if c.Reference == ref {
			return c, true
		}
	}
	return Component{}, false
}

// LabelByName returns the label that claimed name
func (d *Document) LabelByName(name string) (Label, bool) {
	for _, l := range d.Labels {
		if l.Name == name {
			return l, true
		}
	}
	return Label{}, false
}

// LabelsOfKind returns all labels of the given kind in discovery order
func (d *Document) LabelsOfKind(kind LabelKind) []Label {
	var result []Label
	for _, l := range d.Labels {
		if l.Kind == kind {
			result = append(result, l)
		}
	}
	return result
}

// PlacedLabels returns the non-power labels followed by every power symbol
// instance. Use it for geometric queries; Labels only holds one anchor per name.
func (d *Document) PlacedLabels() []Label {
	result := make([]Label, 0, len(d.Labels)+len(d.PowerSymbols))
	for _, l := range d.Labels {
		if l.Kind != KindPower {
			result = append(result, l)
		}
	}
	return append(result, d.PowerSymbols...)
}

// SearchComponents returns components whose reference, value or library id
// matches pattern (case-insensitive regular expression)
func (d *Document) SearchComponents(pattern string) ([]Component, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}

	var result []Component
	for _, c := range d.Components {
		if re.MatchString(c.Reference) || re.MatchString(c.Value) || re.MatchString(c.LibID) {
			result = append(result, c)
		}
	}
	return result, nil
}

// ComponentsByValue returns components whose value matches pattern
// (case-insensitive regular expression)
func (d *Document) ComponentsByValue(pattern string) ([]Component, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid value pattern %q: %w", pattern, err)
	}

	var result []Component
	for _, c := range d.Components {
		if re.MatchString(c.Value) {
			result = append(result, c)
		}
	}
	return result, nil
}

// FilterComponents returns components whose reference starts with prefix
// (case-insensitive) and whose value contains value (case-insensitive).
// Empty arguments match everything.
func (d *Document) FilterComponents(prefix, value string) []Component {
	prefix = strings.ToUpper(prefix)
	value = strings.ToLower(value)

	var result []Component
	for _, c := range d.Components {
		if prefix != "" && !strings.HasPrefix(strings.ToUpper(c.Reference), prefix) {
			continue
		}
		if value != "" && !strings.Contains(strings.ToLower(c.Value), value) {
			continue
		}
		result = append(result, c)
	}
	return result
}

// ComponentTypes groups references by their letter prefix ("R", "U", ...)
func (d *Document) ComponentTypes() map[string][]string {
	byPrefix := make(map[string][]string)
	for _, c := range d.Components {
		prefix := RefPrefix(c.Reference)
		byPrefix[prefix] = append(byPrefix[prefix], c.Reference)
	}
	for _, refs := range byPrefix {
		sort.Strings(refs)
	}
	return byPrefix
}

// RefPrefix extracts the letters before the first digit of a reference
func RefPrefix(ref string) string {
	for i, c := range ref {
		if c >= '0' && c <= '9' {
			return ref[:i]
		}
	}
	return ref
}
