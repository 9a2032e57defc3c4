package schematic

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp/kicadsexp"
)

// Minimum KiCad version the extractor is tested against (6.0 = 20211014).
// Older files are still read; a warning is logged.
const MinSupportedVersion = 20211014

// PowerLibPrefix marks library ids of power-port symbols
const PowerLibPrefix = "power:"

// ErrMalformed is returned when the text is not a readable KiCad schematic tree
var ErrMalformed = errors.New("malformed schematic")

// Option configures Parse and NewParser
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report skipped blocks
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Parse reads and extracts a KiCad schematic from an io.Reader
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	o := buildOptions(opts)

	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("%w: empty file or no s-expressions found", ErrMalformed)
	}

	// The root should be a (kicad_sch ...) expression
	root := sexp.AsList(sexps[0])
	if root == nil || root.Name() != "kicad_sch" {
		return nil, fmt.Errorf("%w: expected 'kicad_sch' root, got %s", ErrMalformed, describeRoot(sexps[0]))
	}

	e := &extractor{doc: &Document{}, logger: o.logger}
	e.extract(root)
	return e.doc, nil
}

func describeRoot(s kicadsexp.Sexp) string {
	if l := sexp.AsList(s); l != nil {
		return fmt.Sprintf("'%s'", l.Name())
	}
	return fmt.Sprintf("atom %s", s)
}

// extractor walks the root list once and fills a Document
type extractor struct {
	doc    *Document
	logger *slog.Logger
	seen   map[string]bool // label names already claimed
}

func (e *extractor) gap(kind string, line int, format string, args ...any) {
	g := Gap{Kind: kind, Line: line, Reason: fmt.Sprintf(format, args...)}
	e.doc.Gaps = append(e.doc.Gaps, g)
	e.logger.Debug("skipping schematic block", "kind", kind, "line", line, "reason", g.Reason)
}

func (e *extractor) extract(root *kicadsexp.List) {
	e.parseHeader(root)

	if tb, found := sexp.FindNode(root, "title_block"); found {
		e.doc.TitleBlock = parseTitleBlock(tb)
	}

	libs := map[string]libSymbol{}
	if libNode, found := sexp.FindNode(root, "lib_symbols"); found {
		libs = parseLibSymbols(libNode)
	}

	symbols := sexp.FindAllNodes(root, "symbol")
	e.doc.Components = e.parseComponents(symbols, libs)

	// Scan order decides who owns a name: global > local > hierarchical > power
	e.seen = make(map[string]bool)
	e.parseLabels(root, "global_label", KindGlobal)
	e.parseLabels(root, "label", KindLocal)
	e.parseLabels(root, "hierarchical_label", KindHierarchical)
	e.parsePowerSymbols(symbols)

	e.doc.Wires = e.parseWires(root)
	e.doc.Junctions = e.parseJunctions(root)
	e.doc.Sheets = e.parseSheets(root)
}

// parseHeader extracts version and generator information
func (e *extractor) parseHeader(root *kicadsexp.List) {
	if versionNode, found := sexp.FindNode(root, "version"); found {
		if ver, err := sexp.GetInt(versionNode, 1); err == nil {
			e.doc.Version = ver
			if ver < MinSupportedVersion {
				e.logger.Warn("schematic predates KiCad 6, extraction may be incomplete",
					"version", ver, "minimum", MinSupportedVersion)
			}
		}
	}

	if genNode, found := sexp.FindNode(root, "generator"); found {
		e.doc.Generator, _ = sexp.GetString(genNode, 1)
	}
}

// parseTitleBlock extracts title block information
func parseTitleBlock(node *kicadsexp.List) TitleBlock {
	tb := TitleBlock{}

	if titleNode, found := sexp.FindNode(node, "title"); found {
		tb.Title, _ = sexp.GetString(titleNode, 1)
	}
	if dateNode, found := sexp.FindNode(node, "date"); found {
		tb.Date, _ = sexp.GetString(dateNode, 1)
	}
	if revNode, found := sexp.FindNode(node, "rev"); found {
		tb.Revision, _ = sexp.GetString(revNode, 1)
	}
	if companyNode, found := sexp.FindNode(node, "company"); found {
		tb.Company, _ = sexp.GetString(companyNode, 1)
	}
	for _, cn := range sexp.FindAllNodes(node, "comment") {
		num, err := sexp.GetInt(cn, 1)
		if err != nil || num < 1 || num > len(tb.Comments) {
			continue
		}
		tb.Comments[num-1], _ = sexp.GetString(cn, 2)
	}

	return tb
}

// parseComponents builds components from top-level symbol instances
func (e *extractor) parseComponents(nodes []*kicadsexp.List, libs map[string]libSymbol) []Component {
	components := make([]Component, 0, len(nodes))

	for _, node := range nodes {
		comp, ok := e.parseComponent(node, libs)
		if ok {
			components = append(components, comp)
		}
	}

	return components
}

// parseComponent parses a single symbol instance. Instances without a
// usable Reference and library placeholders (#PWR, #FLG) are dropped.
func (e *extractor) parseComponent(node *kicadsexp.List, libs map[string]libSymbol) (Component, bool) {
	comp := Component{Properties: map[string]string{}}

	libNode, found := sexp.FindNode(node, "lib_id")
	if !found {
		e.gap("symbol", node.Line, "missing lib_id")
		return comp, false
	}
	comp.LibID, _ = sexp.GetString(libNode, 1)

	props := sexp.GetProperties(node)
	ref, _ := sexp.PropertyValue(props, "Reference")
	if ref == "" {
		e.gap("symbol", node.Line, "%s has no Reference", comp.LibID)
		return comp, false
	}
	if strings.HasPrefix(ref, "#") {
		return comp, false
	}
	comp.Reference = ref

	pos, err := sexp.GetNodePosition(node)
	if err != nil {
		e.gap("symbol", node.Line, "%s: bad position: %v", ref, err)
		return comp, false
	}
	comp.Position = pos.Position
	comp.Rotation = pos.Angle

	for _, p := range props {
		if p.Value != "" {
			comp.Properties[p.Key] = p.Value
		}
	}
	comp.Value = comp.Properties["Value"]
	comp.Footprint = comp.Properties["Footprint"]

	if unitNode, found := sexp.FindNode(node, "unit"); found {
		comp.Unit, _ = sexp.GetInt(unitNode, 1)
	}

	if uuidNode, found := sexp.FindNode(node, "uuid"); found {
		if raw, err := sexp.GetString(uuidNode, 1); err == nil {
			if id, err := uuid.Parse(raw); err == nil {
				comp.UUID = id
			}
		}
	}

	// Embedded library definitions may be stored under lib_name instead of lib_id
	libKey := comp.LibID
	if nameNode, found := sexp.FindNode(node, "lib_name"); found {
		if name, err := sexp.GetString(nameNode, 1); err == nil && name != "" {
			libKey = name
		}
	}
	comp.Pins = resolvePins(node, libs[libKey], comp.Unit)

	return comp, true
}

// parseLabels scans one label construct, skipping names already claimed
func (e *extractor) parseLabels(root *kicadsexp.List, key string, kind LabelKind) {
	for _, ln := range sexp.FindAllNodes(root, key) {
		name, err := sexp.GetString(ln, 1)
		if err != nil || name == "" {
			e.gap(key, ln.Line, "missing label text")
			continue
		}

		pos, err := sexp.GetNodePosition(ln)
		if err != nil {
			e.gap(key, ln.Line, "%q: bad position: %v", name, err)
			continue
		}

		e.addLabel(name, pos.Position, kind)
	}
}

// parsePowerSymbols turns power:<NAME> instances into power labels. The
// first instance of a name may claim it in Labels; all are kept in PowerSymbols.
func (e *extractor) parsePowerSymbols(nodes []*kicadsexp.List) {
	for _, node := range nodes {
		libNode, found := sexp.FindNode(node, "lib_id")
		if !found {
			continue
		}
		libID, _ := sexp.GetString(libNode, 1)
		if !strings.HasPrefix(libID, PowerLibPrefix) {
			continue
		}

		name := strings.TrimPrefix(libID, PowerLibPrefix)
		if value, ok := sexp.PropertyValue(sexp.GetProperties(node), "Value"); ok && value != "" {
			name = value
		}
		// PWR_FLAG only silences ERC, it does not name a net
		if name == "" || name == "PWR_FLAG" {
			continue
		}

		pos, err := sexp.GetNodePosition(node)
		if err != nil {
			e.gap("symbol", node.Line, "%s: bad position: %v", libID, err)
			continue
		}

		e.addLabel(name, pos.Position, KindPower)
		e.doc.PowerSymbols = append(e.doc.PowerSymbols, Label{
			Name:     name,
			Code:     len(e.doc.PowerSymbols),
			Position: pos.Position,
			Kind:     KindPower,
		})
	}
}

func (e *extractor) addLabel(name string, pos Position, kind LabelKind) {
	if e.seen[name] {
		return
	}
	e.seen[name] = true
	e.doc.Labels = append(e.doc.Labels, Label{
		Name:     name,
		Code:     len(e.doc.Labels),
		Position: pos,
		Kind:     kind,
	})
}

// parseWires parses wire connections. A polyline of n points yields n-1 segments.
func (e *extractor) parseWires(root *kicadsexp.List) []Wire {
	wireNodes := sexp.FindAllNodes(root, "wire")
	wires := make([]Wire, 0, len(wireNodes))

	for _, wn := range wireNodes {
		ptsNode, found := sexp.FindNode(wn, "pts")
		if !found {
			e.gap("wire", wn.Line, "missing pts")
			continue
		}

		var points []Position
		var bad error
		for _, xy := range sexp.FindAllNodes(ptsNode, "xy") {
			pos, err := sexp.GetPositionXY(xy)
			if err != nil {
				bad = err
				break
			}
			points = append(points, pos)
		}
		if bad != nil {
			e.gap("wire", wn.Line, "bad point: %v", bad)
			continue
		}
		if len(points) < 2 {
			e.gap("wire", wn.Line, "expected at least 2 points, got %d", len(points))
			continue
		}

		for i := 1; i < len(points); i++ {
			wires = append(wires, Wire{Start: points[i-1], End: points[i]})
		}
	}

	return wires
}

// parseJunctions parses wire junctions
func (e *extractor) parseJunctions(root *kicadsexp.List) []Position {
	juncNodes := sexp.FindAllNodes(root, "junction")
	junctions := make([]Position, 0, len(juncNodes))

	for _, jn := range juncNodes {
		pos, err := sexp.GetNodePosition(jn)
		if err != nil {
			e.gap("junction", jn.Line, "bad position: %v", err)
			continue
		}
		junctions = append(junctions, pos.Position)
	}

	return junctions
}

// parseSheets parses hierarchical sheet references
func (e *extractor) parseSheets(root *kicadsexp.List) []Sheet {
	sheetNodes := sexp.FindAllNodes(root, "sheet")
	sheets := make([]Sheet, 0, len(sheetNodes))

	for _, sn := range sheetNodes {
		props := sexp.GetProperties(sn)
		sheet := Sheet{}

		// KiCad 6 wrote "Sheet name"/"Sheet file", later versions drop the space
		if v, ok := sexp.PropertyValue(props, "Sheetname"); ok {
			sheet.Name = v
		} else {
			sheet.Name, _ = sexp.PropertyValue(props, "Sheet name")
		}
		if v, ok := sexp.PropertyValue(props, "Sheetfile"); ok {
			sheet.File = v
		} else {
			sheet.File, _ = sexp.PropertyValue(props, "Sheet file")
		}

		if sheet.Name == "" && sheet.File == "" {
			e.gap("sheet", sn.Line, "missing Sheetname and Sheetfile")
			continue
		}
		sheets = append(sheets, sheet)
	}

	return sheets
}
