// Package trace infers which named nets a schematic component is attached
// to, using only the geometry of wires, junctions and labels.
//
// KiCad schematics carry no netlist, so connectivity is a heuristic:
//
//  1. Anchor: the wire point nearest the component position must lie within
//     Config.AnchorTolerance, otherwise the component is reported unwired.
//  2. Traverse: breadth-first search from the anchor over the wire network,
//     stopping after Config.MaxVisited points. Large nets may be traced
//     incompletely.
//  3. Labels: any label or power symbol within Config.LabelTolerance of a
//     visited point is attached. Label text anchors sit slightly off the wire
//     they name, so this is a distance test rather than node membership.
//  4. Power: power symbols within Config.PowerTolerance of the component
//     position itself are attached. A rail is reported once, at its nearest
//     instance, and is skipped if the walk already reached it.
//
// Power rails are named with Config.PowerPrefix, so a GND power symbol and a
// GND global label appear as two entries.
//
// An unwired or unknown component is reported in the result, not as a Go
// error: absence of a connection is ordinary output for this kind of tool.
package trace
