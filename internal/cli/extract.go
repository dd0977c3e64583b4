package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linkedclaims/claimresolve/internal/extract"
)

var (
	extractDocURL string
	extractOut    string
)

var extractCmd = &cobra.Command{
	Use:   "extract <document.txt|pages.json>",
	Short: "Extract claims from document text and resolve their URLs",
	Long: `Extract runs the LLM claim extractor over document text, then resolves
the URN placeholders it produces into real URLs.

The input is either a plain text file (treated as a single page) or a JSON
array of pages: [{"number": 1, "text": "..."}, ...].

Requires OPENAI_API_KEY.

Example:
  claimresolve extract report.txt --doc-url https://docs.example.org/report.pdf
  claimresolve extract pages.json --out claims.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractDocURL, "doc-url", "", "public URL of the source document")
	extractCmd.Flags().StringVar(&extractOut, "out", "resolved_claims.json", "output JSON path")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	pages, err := loadPages(args[0])
	if err != nil {
		return err
	}

	p, err := newCLIPipeline()
	if err != nil {
		return err
	}

	claims, err := p.ExtractAndResolve(ctx, pages, extractDocURL)
	if err != nil {
		return err
	}

	if err := writeJSON(extractOut, claims); err != nil {
		return err
	}

	stats := p.VerificationStats()
	fmt.Printf("Extracted %d claims from %d pages\n", len(claims), len(pages))
	if stats.Pending > 0 {
		fmt.Printf("%d URL candidates await review: claimresolve verify pending\n", stats.Pending)
	}
	fmt.Printf("Wrote: %s\n", extractOut)
	return nil
}

// loadPages reads either a JSON page array or a plain text file.
func loadPages(path string) ([]extract.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if strings.HasSuffix(path, ".json") {
		var pages []struct {
			Number int    `json:"number"`
			Text   string `json:"text"`
		}
		if err := json.Unmarshal(data, &pages); err != nil {
			return nil, fmt.Errorf("parse pages JSON: %w", err)
		}
		out := make([]extract.Page, 0, len(pages))
		for _, p := range pages {
			out = append(out, extract.Page{Number: p.Number, Text: p.Text})
		}
		return out, nil
	}

	return []extract.Page{{Number: 1, Text: string(data)}}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
