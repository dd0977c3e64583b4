package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/linkedclaims/claimresolve/internal/model"
)

// ClaimResolver is the slice of the pipeline a batch job needs.
type ClaimResolver interface {
	ResolveClaims(ctx context.Context, claims []model.RawClaim, docContext, documentURL string) []model.ResolvedClaim
}

// DocumentJob resolves the claims of one extracted document, stored as a
// JSON array of raw claims.
type DocumentJob struct {
	Path        string
	DocumentURL string
	Resolver    ClaimResolver
}

// DocumentResult is the outcome of resolving one document's claims.
type DocumentResult struct {
	Path   string
	Claims []model.ResolvedClaim
	Error  error
}

func (r *DocumentResult) GetError() error {
	return r.Error
}

// Execute loads the document's claims and resolves their URLs.
func (j *DocumentJob) Execute(ctx context.Context) Result {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return &DocumentResult{Path: j.Path, Error: fmt.Errorf("read claims file: %w", err)}
	}

	var claims []model.RawClaim
	if err := json.Unmarshal(data, &claims); err != nil {
		return &DocumentResult{Path: j.Path, Error: fmt.Errorf("parse claims file %s: %w", j.Path, err)}
	}

	resolved := j.Resolver.ResolveClaims(ctx, claims, "", j.DocumentURL)
	return &DocumentResult{Path: j.Path, Claims: resolved}
}

// BatchProcessor resolves many documents concurrently. Searches inside the
// resolver stay globally rate limited, so concurrency here speeds up the
// cached and known-organization paths without hammering the search engine.
type BatchProcessor struct {
	resolver    ClaimResolver
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(resolver ClaimResolver, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		resolver:    resolver,
		concurrency: concurrency,
	}
}

// ProcessPaths resolves every claims file concurrently and returns results
// in completion order.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string, documentURL string) []*DocumentResult {
	if len(paths) == 0 {
		return []*DocumentResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&DocumentJob{
			Path:        path,
			DocumentURL: documentURL,
			Resolver:    b.resolver,
		})
	}

	results := pool.Wait()

	docResults := make([]*DocumentResult, len(results))
	for i, result := range results {
		docResults[i] = result.(*DocumentResult)
	}
	return docResults
}

// ProcessListFile reads a list of claims-file paths and processes them.
func (b *BatchProcessor) ProcessListFile(ctx context.Context, listPath, documentURL string) ([]*DocumentResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read path list: %w", err)
	}
	return b.ProcessPaths(ctx, paths, documentURL), nil
}

// ReadPathsFromFile reads one path per line, skipping blanks, comments,
// and duplicates.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
