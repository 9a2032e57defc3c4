package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/trace"
)

var (
	traceJSON            bool
	traceAnchorTolerance float64
	traceMaxVisited      int
	traceLabelTolerance  float64
	tracePowerTolerance  float64
	tracePath            bool
)

var schTraceCmd = &cobra.Command{
	Use:   "trace <schematic_file> <component>",
	Short: "Trace the nets a component is wired to",
	Long: `Follow the wires attached to a component and report the net labels
and power rails it reaches.

The nearest wire point must be within --anchor-tolerance of the component,
otherwise the component is reported as unwired. The walk stops after
--max-visited wire points, so very large nets may be traced partially.`,
	Args: cobra.ExactArgs(2),
	RunE: runSchTrace,
}

var nearClosest int

var schNearCmd = &cobra.Command{
	Use:   "near <schematic_file> <component>",
	Short: "List components and labels placed near a component",
	Long: `List components and labels placed near a component, wired or not.

With --closest N the N nearest components and labels are listed however
far away they are.`,
	Args: cobra.ExactArgs(2),
	RunE: runSchNear,
}

var (
	areaX      float64
	areaY      float64
	areaRadius float64
)

var schAreaCmd = &cobra.Command{
	Use:   "area <schematic_file>",
	Short: "List components and labels within a radius of a point",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchArea,
}

func init() {
	schCmd.AddCommand(schTraceCmd)
	schCmd.AddCommand(schNearCmd)
	schCmd.AddCommand(schAreaCmd)

	for _, c := range []*cobra.Command{schTraceCmd, schNearCmd, schAreaCmd} {
		c.Flags().BoolVar(&traceJSON, "json", false, "print the report as JSON")
	}

	f := schTraceCmd.Flags()
	f.Float64Var(&traceAnchorTolerance, "anchor-tolerance", 0, "max distance (mm) from component to nearest wire point")
	f.IntVar(&traceMaxVisited, "max-visited", 0, "max wire points visited")
	f.Float64Var(&traceLabelTolerance, "label-tolerance", 0, "max distance (mm) from a wire point to a label")
	f.Float64Var(&tracePowerTolerance, "power-tolerance", 0, "max distance (mm) from the component to a power symbol")
	f.BoolVar(&tracePath, "path", false, "print the visited wire points")

	schNearCmd.Flags().IntVar(&nearClosest, "closest", 0, "list the N nearest components and labels instead of a radius search")

	schAreaCmd.Flags().Float64Var(&areaX, "x", 0, "center X (mm)")
	schAreaCmd.Flags().Float64Var(&areaY, "y", 0, "center Y (mm)")
	schAreaCmd.Flags().Float64Var(&areaRadius, "radius", trace.DefaultAreaRadius, "radius (mm)")
	_ = schAreaCmd.MarkFlagRequired("x")
	_ = schAreaCmd.MarkFlagRequired("y")
}

// newTracer applies command-line overrides on top of the loaded config
func newTracer(cmd *cobra.Command) (*trace.Tracer, error) {
	tc := cfg.Trace
	flags := cmd.Flags()
	if flags.Changed("anchor-tolerance") {
		tc.AnchorTolerance = traceAnchorTolerance
	}
	if flags.Changed("max-visited") {
		tc.MaxVisited = traceMaxVisited
	}
	if flags.Changed("label-tolerance") {
		tc.LabelTolerance = traceLabelTolerance
	}
	if flags.Changed("power-tolerance") {
		tc.PowerTolerance = tracePowerTolerance
	}
	return trace.New(&tc, trace.WithLogger(logger))
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSchTrace(cmd *cobra.Command, args []string) error {
	doc, err := loadSchematic(args[0])
	if err != nil {
		return err
	}
	tracer, err := newTracer(cmd)
	if err != nil {
		return err
	}

	report := tracer.Trace(doc, args[1])
	out := cmd.OutOrStdout()

	if traceJSON {
		if err := printJSON(out, report); err != nil {
			return err
		}
	} else {
		printTraceReport(out, report)
	}

	if !report.OK() {
		return report.Err
	}
	return nil
}

func printTraceReport(out io.Writer, r trace.Report) {
	fmt.Fprintf(out, "Component: %s\n", r.Component)
	if r.Err != nil {
		fmt.Fprintf(out, "Error: %s\n", r.Error)
	} else {
		fmt.Fprintf(out, "Position: %s\n", r.Position)
		fmt.Fprintf(out, "Anchor: %s (%.2fmm)\n", *r.Anchor, r.AnchorDistance)
		fmt.Fprintf(out, "Visited: %d wire points\n", len(r.TracePath))
	}
	fmt.Fprintln(out)

	if len(r.ConnectedLabels) == 0 {
		fmt.Fprintln(out, "No connected labels")
	} else {
		fmt.Fprintln(out, "Connected Labels:")
		for _, l := range r.ConnectedLabels {
			fmt.Fprintf(out, "  %-24s %6.2fmm  %s\n", l.Name, l.Distance, l.Position)
		}
	}

	if tracePath && len(r.TracePath) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Trace Path:")
		for i, p := range r.TracePath {
			fmt.Fprintf(out, "  %2d %s\n", i, p)
		}
	}
}

func runSchNear(cmd *cobra.Command, args []string) error {
	doc, err := loadSchematic(args[0])
	if err != nil {
		return err
	}
	tracer, err := newTracer(cmd)
	if err != nil {
		return err
	}

	var report trace.ConnectionReport
	if nearClosest > 0 {
		report = tracer.Closest(doc, args[1], nearClosest)
	} else {
		report = tracer.Connections(doc, args[1])
	}
	if report.Err != nil {
		return report.Err
	}

	out := cmd.OutOrStdout()
	if traceJSON {
		return printJSON(out, report)
	}

	fmt.Fprintf(out, "Component: %s at %s\n\n", report.Component, report.Position)
	printNearby(out, report.NearbyComponents, report.NearbyLabels)
	return nil
}

func runSchArea(cmd *cobra.Command, args []string) error {
	doc, err := loadSchematic(args[0])
	if err != nil {
		return err
	}
	tracer, err := newTracer(cmd)
	if err != nil {
		return err
	}

	report := tracer.Area(doc, sexp.Position{X: areaX, Y: areaY}, areaRadius)

	out := cmd.OutOrStdout()
	if traceJSON {
		return printJSON(out, report)
	}

	fmt.Fprintf(out, "Center: %s, Radius: %.2fmm\n\n", report.Center, report.Radius)
	printNearby(out, report.Components, report.Labels)
	return nil
}

func printNearby(out io.Writer, comps []trace.NearbyComponent, labels []trace.NearbyLabel) {
	fmt.Fprintf(out, "Components (%d):\n", len(comps))
	for _, c := range comps {
		fmt.Fprintf(out, "  %-8s %-12s %6.2fmm  %s\n", c.Reference, c.Value, c.Distance, c.Position)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Labels (%d):\n", len(labels))
	for _, l := range labels {
		fmt.Fprintf(out, "  %-24s %-12s %6.2fmm  %s\n", l.Name, l.Kind, l.Distance, l.Position)
	}
}
