package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
)

var schCmd = &cobra.Command{
	Use:   "sch",
	Short: "KiCad schematic file operations",
	Long:  `Commands for working with KiCad schematic files (.kicad_sch)`,
}

var schInfoCmd = &cobra.Command{
	Use:   "info <schematic_file> [component]",
	Short: "Show schematic information",
	Long: `Display information about a KiCad schematic file.

Without component argument: shows schematic summary
With component argument: shows details for that specific component`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSchInfo,
}

var (
	componentsType   string
	componentsValue  string
	componentsSearch string
)

var schComponentsCmd = &cobra.Command{
	Use:   "components <schematic_file>",
	Short: "List placed components",
	Long: `List placed components, optionally filtered.

--type and --value filter by reference prefix and value substring.
--search matches a case-insensitive regular expression against
reference, value and library id.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchComponents,
}

var labelsKind string

var schLabelsCmd = &cobra.Command{
	Use:   "labels <schematic_file>",
	Short: "List net labels in discovery order",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchLabels,
}

func init() {
	rootCmd.AddCommand(schCmd)
	schCmd.AddCommand(schInfoCmd)
	schCmd.AddCommand(schComponentsCmd)
	schCmd.AddCommand(schLabelsCmd)

	schComponentsCmd.Flags().StringVar(&componentsType, "type", "", "reference prefix (R, C, U, ...)")
	schComponentsCmd.Flags().StringVar(&componentsValue, "value", "", "value substring")
	schComponentsCmd.Flags().StringVar(&componentsSearch, "search", "", "regular expression over reference, value and library id")

	schLabelsCmd.Flags().StringVar(&labelsKind, "kind", "", "only labels of this kind (global, local, hierarchical, power)")
}

func runSchInfo(cmd *cobra.Command, args []string) error {
	doc, err := loadSchematic(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) >= 2 {
		// Show details for specific component
		return showComponentDetails(out, doc, args[1])
	}

	showSchemSummary(out, doc)
	return nil
}

func showSchemSummary(out io.Writer, doc *schematic.Document) {
	fmt.Fprintf(out, "Schematic: %s\n", doc.Path)
	fmt.Fprintf(out, "Version: %d\n", doc.Version)
	fmt.Fprintf(out, "Generator: %s\n", doc.Generator)
	fmt.Fprintln(out)

	// Title block
	tb := doc.TitleBlock
	if tb != (schematic.TitleBlock{}) {
		fmt.Fprintln(out, "Title Block:")
		printField(out, "Title", tb.Title)
		printField(out, "Date", tb.Date)
		printField(out, "Revision", tb.Revision)
		printField(out, "Company", tb.Company)
		for i, c := range tb.Comments {
			printField(out, fmt.Sprintf("Comment %d", i+1), c)
		}
		fmt.Fprintln(out)
	}

	// Statistics
	fmt.Fprintln(out, "Statistics:")
	fmt.Fprintf(out, "  Components: %d\n", len(doc.Components))
	fmt.Fprintf(out, "  Wires: %d\n", len(doc.Wires))
	fmt.Fprintf(out, "  Junctions: %d\n", len(doc.Junctions))
	fmt.Fprintf(out, "  Labels: %d\n", len(doc.Labels))
	fmt.Fprintf(out, "  Sheets: %d\n", len(doc.Sheets))
	fmt.Fprintf(out, "  Skipped blocks: %d\n", len(doc.Gaps))
	fmt.Fprintln(out)

	// Component list, grouped by reference prefix
	if len(doc.Components) > 0 {
		fmt.Fprintln(out, "Components:")

		byPrefix := doc.ComponentTypes()
		var prefixes []string
		for p := range byPrefix {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)

		for _, prefix := range prefixes {
			fmt.Fprintf(out, "  %s: %s\n", prefix, strings.Join(byPrefix[prefix], ", "))
		}
		fmt.Fprintln(out)
	}

	if len(doc.Labels) > 0 {
		fmt.Fprintln(out, "Net Labels:")
		for _, l := range doc.Labels {
			fmt.Fprintf(out, "  %s (%s)\n", l.Name, l.Kind)
		}
		fmt.Fprintln(out)
	}

	if len(doc.Sheets) > 0 {
		fmt.Fprintln(out, "Hierarchical Sheets:")
		for _, sheet := range doc.Sheets {
			fmt.Fprintf(out, "  %s (%s)\n", sheet.Name, sheet.File)
		}
		fmt.Fprintln(out)
	}

	if len(doc.Gaps) > 0 && verbose {
		fmt.Fprintln(out, "Skipped:")
		for _, g := range doc.Gaps {
			fmt.Fprintf(out, "  %s\n", g)
		}
	}
}

func printField(out io.Writer, name, value string) {
	if value != "" {
		fmt.Fprintf(out, "  %s: %s\n", name, value)
	}
}

func showComponentDetails(out io.Writer, doc *schematic.Document, ref string) error {
	comp, ok := doc.ComponentByReference(ref)
	if !ok {
		return fmt.Errorf("component '%s' not found in %s", ref, doc.Path)
	}

	fmt.Fprintf(out, "Component: %s\n", comp.Reference)
	fmt.Fprintf(out, "Value: %s\n", comp.Value)
	fmt.Fprintf(out, "Library: %s\n", comp.LibID)
	if comp.Footprint != "" {
		fmt.Fprintf(out, "Footprint: %s\n", comp.Footprint)
	}
	fmt.Fprintf(out, "Position: %s\n", comp.Position)
	if comp.Rotation != 0 {
		fmt.Fprintf(out, "Rotation: %.1f°\n", comp.Rotation)
	}
	if comp.Unit != 0 {
		fmt.Fprintf(out, "Unit: %d\n", comp.Unit)
	}
	fmt.Fprintln(out)

	if len(comp.Properties) > 0 {
		fmt.Fprintln(out, "Properties:")
		keys := make([]string, 0, len(comp.Properties))
		for k := range comp.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s: %s\n", k, comp.Properties[k])
		}
		fmt.Fprintln(out)
	}

	if len(comp.Pins) > 0 {
		fmt.Fprintln(out, "Pins:")
		for _, pin := range comp.Pins {
			name := pin.Name
			if name == "" {
				name = "~"
			}
			flag := ""
			if pin.Hidden {
				flag = " [hidden]"
			}
			fmt.Fprintf(out, "  %s (%s): %s%s\n", pin.Number, name, pin.Type, flag)
		}
	}

	return nil
}

func runSchComponents(cmd *cobra.Command, args []string) error {
	doc, err := loadSchematic(args[0])
	if err != nil {
		return err
	}

	comps := doc.FilterComponents(componentsType, componentsValue)
	if componentsSearch != "" {
		found, err := doc.SearchComponents(componentsSearch)
		if err != nil {
			return err
		}
		comps = intersect(comps, found)
	}

	out := cmd.OutOrStdout()
	if len(comps) == 0 {
		fmt.Fprintln(out, "No matching components")
		return nil
	}
	for _, c := range comps {
		fp := c.Footprint
		if fp == "" {
			fp = "-"
		}
		fmt.Fprintf(out, "%-8s %-12s %-24s %-36s %s\n", c.Reference, c.Value, c.LibID, fp, c.Position)
	}
	return nil
}

func intersect(a, b []schematic.Component) []schematic.Component {
	keep := make(map[string]bool, len(b))
	for _, c := range b {
		keep[c.Reference] = true
	}
	var result []schematic.Component
	for _, c := range a {
		if keep[c.Reference] {
			result = append(result, c)
		}
	}
	return result
}

func runSchLabels(cmd *cobra.Command, args []string) error {
	doc, err := loadSchematic(args[0])
	if err != nil {
		return err
	}

	labels := doc.Labels
	if labelsKind != "" {
		labels = doc.LabelsOfKind(schematic.LabelKind(strings.ToLower(labelsKind)))
	}

	out := cmd.OutOrStdout()
	for _, l := range labels {
		fmt.Fprintf(out, "%3d  %-24s %-12s %s\n", l.Code, l.Name, l.Kind, l.Position)
	}
	return nil
}
