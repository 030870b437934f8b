package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chalimba/papertree/internal/extract"
	"github.com/chalimba/papertree/internal/numbering"
	"github.com/chalimba/papertree/internal/paper"
	"github.com/chalimba/papertree/internal/parser"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "papertree",
		Short: "Exam paper question-tree extractor",
		Long: `Papertree turns an exam paper into a hierarchical question tree.

It recognizes dotted question numbering (1, 1.1, 1.1.1), attaches the
surrounding text, tables and images to each question, resolves marks,
and reports numbering gaps, duplicates and orphans as diagnostics.`,
		Version: version,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(formatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the question tree from a paper",
		Long: `Extract parses an exam paper and prints its question tree.

Supported formats: TXT, MD, HTML, DOCX, PDF, CSV

Example:
  papertree extract paper.docx
  papertree extract paper.pdf --json
  papertree extract paper.txt --patterns patterns.yaml --marks-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patternsPath, _ := cmd.Flags().GetString("patterns")
			asJSON, _ := cmd.Flags().GetBool("json")
			marksOnly, _ := cmd.Flags().GetBool("marks-only")
			pdfFallback, _ := cmd.Flags().GetBool("pdftotext-fallback")

			filename := args[0]

			matcher, err := numbering.LoadPatterns(patternsPath)
			if err != nil {
				return fmt.Errorf("loading patterns: %w", err)
			}

			p, err := parser.ForFile(filename)
			if err != nil {
				return err
			}
			if pdfParser, ok := p.(*parser.PDFParser); ok {
				pdfParser.FallbackPdftotext = pdfFallback
			}

			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("opening %s: %w", filename, err)
			}
			defer f.Close()

			blocks, err := p.Parse(f, filename)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", filename, err)
			}

			doc := paper.RawDocument{
				PaperID: uuid.NewString(),
				Name:    parser.PaperName(filename),
				Blocks:  blocks,
			}

			engine := extract.New(matcher)
			tree, diags, err := engine.Extract(doc)
			if err != nil {
				return err
			}

			if marksOnly {
				printMissingMarks(tree)
				return nil
			}
			if asJSON {
				return printJSON(tree, diags)
			}
			printOutline(tree, diags)
			return nil
		},
	}
	cmd.Flags().String("patterns", "", "YAML heading pattern file")
	cmd.Flags().Bool("json", false, "print the tree and diagnostics as JSON")
	cmd.Flags().Bool("marks-only", false, "list only questions with undetected marks")
	cmd.Flags().Bool("pdftotext-fallback", false, "fall back to the pdftotext binary for PDFs")
	return cmd
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported input formats",
		Run: func(cmd *cobra.Command, args []string) {
			exts := make([]string, 0, len(parser.SupportedExtensions))
			for ext := range parser.SupportedExtensions {
				exts = append(exts, ext)
			}
			sort.Strings(exts)
			for _, ext := range exts {
				fmt.Println(ext)
			}
		},
	}
}

func printJSON(tree *paper.Tree, diags *paper.Diagnostics) error {
	out := struct {
		Tree        *paper.Tree        `json:"tree"`
		Diagnostics *paper.Diagnostics `json:"diagnostics"`
	}{tree, diags}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printOutline(tree *paper.Tree, diags *paper.Diagnostics) {
	fmt.Printf("%s\n", tree.Name)
	fmt.Printf("%d nodes, %d questions, %d marks\n\n",
		len(tree.Nodes), tree.QuestionCount(), tree.TotalMarks())

	for _, n := range tree.Nodes {
		label := n.Number
		if label == "" {
			label = "(" + string(n.Kind) + ")"
		}
		indent := strings.Repeat("  ", strings.Count(n.Number, "."))
		line := indent + label
		if n.Title != "" {
			line += "  " + truncate(n.Title, 60)
		}
		if n.Marks != nil {
			line += fmt.Sprintf("  [%d marks]", *n.Marks)
		}
		if n.Orphaned {
			line += "  (orphan)"
		}
		fmt.Println(line)
	}

	if !diags.Empty() {
		fmt.Println()
		printDiagList("gaps", diags.Gaps)
		printDiagList("duplicates merged", diags.DuplicatesMerged)
		printDiagList("orphans", diags.Orphans)
		printDiagList("missing marks", diags.MissingMarks)
	}
}

func printMissingMarks(tree *paper.Tree) {
	for _, n := range tree.Nodes {
		if n.Kind == paper.KindQuestion && n.Marks == nil {
			fmt.Println(n.Number)
		}
	}
}

func printDiagList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s: %s\n", label, strings.Join(items, ", "))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
