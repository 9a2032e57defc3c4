package sexp

import (
	"math"
	"testing"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp/kicadsexp"
)

func mustParse(t *testing.T, input string) *kicadsexp.List {
	t.Helper()
	exprs, err := kicadsexp.ParseString(input)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", input, err)
	}
	return exprs[0].(*kicadsexp.List)
}

func TestFindNode(t *testing.T) {
	node := mustParse(t, `(symbol (lib_id "Device:R") (at 1 2 0) (property "Reference" "R1") (property "Value" "10k"))`)

	at, found := FindNode(node, "at")
	if !found {
		t.Fatal("Expected to find (at ...)")
	}
	if at.Len() != 4 {
		t.Errorf("Expected 4 elements in at node, got %d", at.Len())
	}

	if _, found := FindNode(node, "missing"); found {
		t.Error("Did not expect to find (missing ...)")
	}

	props := FindAllNodes(node, "property")
	if len(props) != 2 {
		t.Errorf("Expected 2 properties, got %d", len(props))
	}
}

func TestGetPosition(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PositionAngle
		wantErr bool
	}{
		{"xy only", "(at 100 50)", PositionAngle{Position: Position{X: 100, Y: 50}}, false},
		{"with angle", "(at 10.16 -5.08 90)", PositionAngle{Position: Position{X: 10.16, Y: -5.08}, Angle: 90}, false},
		{"non numeric", "(at abc 50)", PositionAngle{}, true},
		{"missing y", "(at 1)", PositionAngle{}, true},
		{"not finite", "(at NaN 1)", PositionAngle{}, true},
		{"wrong key", "(xy 1 2)", PositionAngle{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetPosition(mustParse(t, tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetPosition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("GetPosition() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetProperty(t *testing.T) {
	prop, err := GetProperty(mustParse(t, `(property "Footprint" "Resistor_SMD:R_0805_2012Metric" (at 100 45 0) (effects (hide yes)))`))
	if err != nil {
		t.Fatalf("GetProperty() error = %v", err)
	}
	if prop.Key != "Footprint" || prop.Value != "Resistor_SMD:R_0805_2012Metric" {
		t.Errorf("Unexpected property %+v", prop)
	}
	if prop.Position.X != 100 || prop.Position.Y != 45 {
		t.Errorf("Unexpected property position %+v", prop.Position)
	}

	empty, err := GetProperty(mustParse(t, `(property "Datasheet")`))
	if err != nil {
		t.Fatalf("GetProperty() error = %v", err)
	}
	if empty.Value != "" {
		t.Errorf("Expected empty value, got %q", empty.Value)
	}
}

func TestDistanceTo(t *testing.T) {
	d := Position{X: 0, Y: 0}.DistanceTo(Position{X: 3, Y: 4})
	if math.Abs(d-5) > 1e-12 {
		t.Errorf("Expected distance 5, got %f", d)
	}
}

func TestHasSymbol(t *testing.T) {
	pin := mustParse(t, `(pin power_in line (at 0 0 90) (length 0) hide (name "VDD"))`)
	if !HasSymbol(pin, "hide") {
		t.Error("Expected bare hide flag to be found")
	}
	if HasSymbol(pin, "at") {
		t.Error("Nested list names are not bare symbols")
	}

	quoted := mustParse(t, `(pin input line (name "hide") "hide")`)
	if HasSymbol(quoted, "hide") {
		t.Error("Quoted strings are not bare symbols")
	}

	if HasSymbol(nil, "hide") {
		t.Error("Expected false for nil list")
	}
}
