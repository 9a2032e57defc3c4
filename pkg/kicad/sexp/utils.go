package sexp

import (
	"fmt"
	"math"
	"strconv"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers

// AsList returns s as a list, or nil if it is a leaf
func AsList(s kicadsexp.Sexp) *kicadsexp.List {
	if l, ok := s.(*kicadsexp.List); ok {
		return l
	}
	return nil
}

// FindNode searches the direct children of s for a list whose head is key.
// Example: FindNode(sym, "at") finds (at 100 50) in a symbol.
func FindNode(s kicadsexp.Sexp, key string) (*kicadsexp.List, bool) {
	list := AsList(s)
	if list == nil {
		return nil, false
	}

	for _, item := range list.Items() {
		if sub := AsList(item); sub != nil && sub.Name() == key {
			return sub, true
		}
	}

	return nil, false
}

// FindAllNodes finds all direct children with the given key
func FindAllNodes(s kicadsexp.Sexp, key string) []*kicadsexp.List {
	var results []*kicadsexp.List

	list := AsList(s)
	if list == nil {
		return results
	}

	for _, item := range list.Items() {
		if sub := AsList(item); sub != nil && sub.Name() == key {
			results = append(results, sub)
		}
	}

	return results
}

// Typed value extraction helpers

// GetString extracts the atom or quoted string at the given index.
// Index 0 is the key, 1 is first value, etc.
func GetString(s *kicadsexp.List, index int) (string, error) {
	if s == nil {
		return "", fmt.Errorf("expected list, got nil")
	}
	if index < 0 || index >= s.Len() {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, s.Len())
	}

	switch v := s.Get(index).(type) {
	case kicadsexp.Symbol:
		return string(v), nil
	case kicadsexp.Quoted:
		return string(v), nil
	}

	return "", fmt.Errorf("expected atom at index %d, got list", index)
}

// GetFloat extracts a finite float64 value at the given index
func GetFloat(s *kicadsexp.List, index int) (float64, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("non-finite coordinate %q", str)
	}

	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(s *kicadsexp.List, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}

	return val, nil
}

// Domain-specific extraction helpers

// GetPosition extracts position and angle from an (at X Y [angle]) node.
// Schematic coordinates are millimetres and angles are degrees.
func GetPosition(s *kicadsexp.List) (PositionAngle, error) {
	if s == nil || s.Name() != "at" {
		return PositionAngle{}, fmt.Errorf("expected (at X Y [angle]) list")
	}

	pos, err := GetPositionXY(s)
	if err != nil {
		return PositionAngle{}, err
	}

	result := PositionAngle{Position: pos}

	// Angle is optional
	if s.Len() > 3 {
		if angle, err := GetFloat(s, 3); err == nil {
			result.Angle = Angle(angle)
		}
	}

	return result, nil
}

// GetPositionXY extracts X,Y from a (keyword X Y ...) node such as (xy X Y)
func GetPositionXY(s *kicadsexp.List) (Position, error) {
	if s == nil {
		return Position{}, fmt.Errorf("expected position list")
	}

	x, err := GetFloat(s, 1)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse X: %w", err)
	}

	y, err := GetFloat(s, 2)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse Y: %w", err)
	}

	return Position{X: x, Y: y}, nil
}

// GetNodePosition finds the (at ...) child of s and parses it
func GetNodePosition(s kicadsexp.Sexp) (PositionAngle, error) {
	atNode, found := FindNode(s, "at")
	if !found {
		return PositionAngle{}, fmt.Errorf("missing (at ...)")
	}
	return GetPosition(atNode)
}

// HasSymbol checks if a list contains a specific bare symbol
func HasSymbol(s *kicadsexp.List, symbol string) bool {
	if s == nil {
		return false
	}

	for _, item := range s.Items() {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}

	return false
}

// GetProperty extracts a property from a (property "key" "value" ...) node
func GetProperty(s *kicadsexp.List) (Property, error) {
	prop := Property{}

	if s == nil || s.Name() != "property" {
		return prop, fmt.Errorf("expected (property ...) list")
	}

	key, err := GetString(s, 1)
	if err != nil {
		return prop, fmt.Errorf("failed to parse property key: %w", err)
	}
	prop.Key = key

	// Value can be missing on hand-edited files
	prop.Value, _ = GetString(s, 2)

	if atNode, ok := FindNode(s, "at"); ok {
		if pos, err := GetPosition(atNode); err == nil {
			prop.Position = pos
		}
	}

	return prop, nil
}

// GetProperties returns all well-formed properties that are direct children of s
func GetProperties(s kicadsexp.Sexp) []Property {
	var props []Property
	for _, pn := range FindAllNodes(s, "property") {
		if prop, err := GetProperty(pn); err == nil {
			props = append(props, prop)
		}
	}
	return props
}

// PropertyValue returns the value of the first property named key
func PropertyValue(props []Property, key string) (string, bool) {
	for _, p := range props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}
