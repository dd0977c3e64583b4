// Package extract turns document text into raw claims via an LLM. The
// extractor is constrained to emit URN placeholders instead of URLs; URL
// resolution is a separate, deterministic pass.
package extract

import (
	"context"
	"errors"

	"github.com/linkedclaims/claimresolve/internal/model"
)

// ErrAuthentication marks API-key failures. Unlike transient extraction
// errors, which degrade to an empty claim list, an authentication failure
// aborts the whole document: retrying other pages with the same key cannot
// succeed.
var ErrAuthentication = errors.New("extractor authentication failed")

// Extractor produces claims from a chunk of document text.
type Extractor interface {
	// ExtractClaims returns the claims found in text. An empty slice is a
	// normal outcome for text with no claim-like content.
	ExtractClaims(ctx context.Context, text string) ([]model.RawClaim, error)

	// Name identifies the backing provider.
	Name() string
}
