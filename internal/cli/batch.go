package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linkedclaims/claimresolve/internal/worker"
)

var (
	batchDocURL  string
	batchOutDir  string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch <list-file>",
	Short: "Resolve URLs for many extracted-claims files concurrently",
	Long: `Batch reads a list of claims files (one path per line, # for comments)
and resolves each file's claims. Every file holds a JSON array of raw
claims as produced by extraction.

Searches remain globally rate limited across all workers.

Example:
  claimresolve batch documents.txt --out-dir resolved/ --workers 3`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchDocURL, "doc-url", "", "public URL applied to all documents in the batch")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "resolved", "directory for resolved output files")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent documents (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	p, err := newCLIPipeline()
	if err != nil {
		return err
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = buildConfig().Concurrency.BatchWorkers
	}

	processor := worker.NewBatchProcessor(p, workers)
	results, err := processor.ProcessListFile(ctx, args[0], batchDocURL)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var failed int
	for _, res := range results {
		if res.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Path, res.Error)
			continue
		}
		outPath := filepath.Join(batchOutDir, resolvedName(res.Path))
		if err := writeJSON(outPath, res.Claims); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Path, err)
			continue
		}
		if verbose {
			fmt.Printf("✓ %s (%d claims)\n", outPath, len(res.Claims))
		}
	}

	stats := p.ResolutionStats()
	fmt.Printf("Processed %d documents (%d failed)\n", len(results), failed)
	fmt.Printf("Resolutions: %d successful, %.0f%% cache hits\n",
		stats.SuccessfulResolutions, stats.CacheHitRatio*100)

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func resolvedName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".resolved.json"
}
