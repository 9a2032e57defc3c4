package schematic

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp/kicadsexp"
)

// Embedded library symbol handling. Instances only carry pin numbers; pin
// names and electrical types live in the (lib_symbols ...) section.

// libPin is a pin definition from an embedded library symbol
type libPin struct {
	Number string
	Name   string
	Type   string
	Hidden bool
	Unit   int // 0 = shared by all units
}

// libSymbol is the part of an embedded library symbol we need
type libSymbol struct {
	Name string
	Pins []libPin
}

// parseLibSymbols indexes embedded library symbols by name
func parseLibSymbols(node *kicadsexp.List) map[string]libSymbol {
	libs := make(map[string]libSymbol)

	for _, symNode := range sexp.FindAllNodes(node, "symbol") {
		name, err := sexp.GetString(symNode, 1)
		if err != nil || name == "" {
			continue
		}

		sym := libSymbol{Name: name}
		sym.Pins = append(sym.Pins, parseLibPins(symNode, 0)...)

		// Nested units are named <symbol>_<unit>_<style>
		for _, unitNode := range sexp.FindAllNodes(symNode, "symbol") {
			unitName, _ := sexp.GetString(unitNode, 1)
			sym.Pins = append(sym.Pins, parseLibPins(unitNode, unitNumber(unitName))...)
		}

		libs[name] = sym
	}

	return libs
}

// unitNumber extracts the unit from a "<name>_<unit>_<style>" sub-symbol name
func unitNumber(name string) int {
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return 0
	}
	unit, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0
	}
	return unit
}

// parseLibPins parses (pin <type> <style> ... (name "X") (number "N")) children
func parseLibPins(node *kicadsexp.List, unit int) []libPin {
	var pins []libPin

	for _, pn := range sexp.FindAllNodes(node, "pin") {
		pin := libPin{Unit: unit}
		pin.Type, _ = sexp.GetString(pn, 1)

		if nameNode, found := sexp.FindNode(pn, "name"); found {
			pin.Name, _ = sexp.GetString(nameNode, 1)
		}
		if numNode, found := sexp.FindNode(pn, "number"); found {
			pin.Number, _ = sexp.GetString(numNode, 1)
		}
		pin.Hidden = pinHidden(pn)
		if pin.Number == "" {
			continue
		}
		// KiCad writes "~" for an unnamed pin
		if pin.Name == "~" {
			pin.Name = ""
		}

		pins = append(pins, pin)
	}

	return pins
}

// pinHidden handles both the bare "hide" flag (KiCad 6/7) and (hide yes)
func pinHidden(pn *kicadsexp.List) bool {
	if sexp.HasSymbol(pn, "hide") {
		return true
	}
	if hideNode, found := sexp.FindNode(pn, "hide"); found {
		v, _ := sexp.GetString(hideNode, 1)
		return v == "yes"
	}
	return false
}

// lookup finds the definition of a pin number for the given unit
func (l libSymbol) lookup(number string, unit int) (libPin, bool) {
	var fallback *libPin
	for i := range l.Pins {
		p := &l.Pins[i]
		if p.Number != number {
			continue
		}
		if p.Unit == 0 || unit == 0 || p.Unit == unit {
			return *p, true
		}
		if fallback == nil {
			fallback = p
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return libPin{}, false
}

// resolvePins lists the pins of an instance in document order. When the
// instance carries no (pin ...) entries the library definition is used.
func resolvePins(node *kicadsexp.List, lib libSymbol, unit int) []Pin {
	var pins []Pin

	for _, pn := range sexp.FindAllNodes(node, "pin") {
		number, err := sexp.GetString(pn, 1)
		if err != nil || number == "" {
			continue
		}
		pin := Pin{Number: number}
		if def, ok := lib.lookup(number, unit); ok {
			pin.Name = def.Name
			pin.Type = def.Type
			pin.Hidden = def.Hidden
		}
		pins = append(pins, pin)
	}

	if len(pins) > 0 {
		return pins
	}

	for _, def := range lib.Pins {
		if def.Unit == 0 || unit == 0 || def.Unit == unit {
			pins = append(pins, Pin{Number: def.Number, Name: def.Name, Type: def.Type, Hidden: def.Hidden})
		}
	}
	return pins
}
