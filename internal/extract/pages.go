package extract

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/linkedclaims/claimresolve/internal/model"
)

// Page is one page of document text, 1-indexed.
type Page struct {
	Number int
	Text   string
}

// PageClaims pairs extracted claims with their source page.
type PageClaims struct {
	Page   Page
	Claims []model.RawClaim
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs so page text compares and truncates
// predictably.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ExtractPages runs the extractor over every page. Pages shorter than
// minTextLength are skipped. A failed page yields no claims but does not
// stop the document, except for authentication failures, which abort
// immediately: every remaining page would fail the same way.
func ExtractPages(ctx context.Context, extractor Extractor, pages []Page, minTextLength int, logger *zap.Logger) ([]PageClaims, error) {
	var out []PageClaims
	for _, page := range pages {
		text := CleanText(page.Text)
		if len(text) < minTextLength {
			logger.Info("skipping short page",
				zap.Int("page", page.Number), zap.Int("chars", len(text)))
			continue
		}

		logger.Info("extracting claims",
			zap.Int("page", page.Number), zap.Int("chars", len(text)))

		claims, err := extractor.ExtractClaims(ctx, text)
		if err != nil {
			if errors.Is(err, ErrAuthentication) {
				return out, fmt.Errorf("page %d: %w", page.Number, err)
			}
			logger.Error("extraction failed, skipping page",
				zap.Int("page", page.Number), zap.Error(err))
			continue
		}

		if len(claims) == 0 {
			logger.Warn("no claims extracted", zap.Int("page", page.Number))
			continue
		}
		logger.Info("page extracted",
			zap.Int("page", page.Number), zap.Int("claims", len(claims)))
		out = append(out, PageClaims{Page: Page{Number: page.Number, Text: text}, Claims: claims})
	}
	return out, nil
}
