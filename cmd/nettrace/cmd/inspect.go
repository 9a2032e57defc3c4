package cmd

import (
	"fmt"
	"os"
	"sort"

	chewxy "github.com/chewxy/sexp"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp/kicadsexp"
)

var schInspectCmd = &cobra.Command{
	Use:   "inspect <schematic_file>",
	Short: "Debug the S-expression structure of a schematic",
	Long: `Show how the file tokenizes: top-level node counts, atom counts and
blocks skipped during extraction. The file is also read with the
github.com/chewxy/sexp reader and both atom counts are printed, which
helps tell a malformed file apart from a reader bug.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchInspect,
}

func init() {
	schCmd.AddCommand(schInspectCmd)
}

func runSchInspect(cmd *cobra.Command, args []string) error {
	path, err := schematic.ValidateFile(args[0], schematic.Extension)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File: %s\n", path)
	fmt.Fprintf(out, "File size: %d bytes\n\n", len(data))

	exprs, err := kicadsexp.ParseString(string(data))
	if err != nil {
		return fmt.Errorf("error parsing s-expression: %w", err)
	}

	fmt.Fprintf(out, "Number of s-expressions: %d\n", len(exprs))
	atoms := 0
	for _, e := range exprs {
		atoms += countAtoms(e)
	}
	fmt.Fprintf(out, "Atoms: %d\n", atoms)

	if len(exprs) > 0 {
		if root := sexp.AsList(exprs[0]); root != nil {
			fmt.Fprintf(out, "Root: %s\n\n", root.Name())
			printChildCounts(cmd, root)
		}
	}

	// Cross-check against an independent reader
	fmt.Fprintln(out)
	other, err := chewxy.ParseString(string(data))
	if err != nil {
		fmt.Fprintf(out, "chewxy/sexp: parse failed: %v\n", err)
	} else {
		leaves := 0
		for _, e := range other {
			if e.IsLeaf() {
				leaves++
			} else {
				leaves += e.LeafCount()
			}
		}
		fmt.Fprintf(out, "chewxy/sexp: %d s-expressions, %d leaves\n", len(other), leaves)
		if leaves != atoms {
			logger.Warn("atom counts differ between readers", "kicadsexp", atoms, "chewxy", leaves)
		}
	}

	doc, err := schematic.ParseFile(path, schematic.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSkipped blocks: %d\n", len(doc.Gaps))
	for _, g := range doc.Gaps {
		fmt.Fprintf(out, "  %s\n", g)
	}

	return nil
}

func countAtoms(s kicadsexp.Sexp) int {
	list := sexp.AsList(s)
	if list == nil {
		return 1
	}
	n := 0
	for _, item := range list.Items() {
		n += countAtoms(item)
	}
	return n
}

func printChildCounts(cmd *cobra.Command, root *kicadsexp.List) {
	counts := make(map[string]int)
	for _, item := range root.Items() {
		if l := sexp.AsList(item); l != nil {
			counts[l.Name()]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Top-level nodes:")
	for _, name := range names {
		fmt.Fprintf(out, "  %-20s %d\n", name, counts[name])
	}
}
