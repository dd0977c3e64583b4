package urlgen

import (
	"strings"

	"go.uber.org/zap"

	"github.com/linkedclaims/claimresolve/internal/model"
)

// Improver rewrites claim subjects and objects that are bare entity names
// or placeholder URLs into real links.
type Improver struct {
	logger *zap.Logger
}

func NewImprover(logger *zap.Logger) *Improver {
	return &Improver{logger: logger}
}

// Improve replaces non-URL and placeholder subject/object values on the
// claim with generated URLs, recording the suggestion and entity type for
// each. Claims touched by a heuristic guess are flagged for verification.
func (i *Improver) Improve(claim *model.ResolvedClaim, context string) {
	if generated, ok := i.improveField(claim.Subject, context); ok {
		claim.Subject = generated.url
		claim.SubjectSuggested = generated.url
		claim.SubjectEntityType = generated.typ
		if generated.guessed {
			claim.NeedsVerification = true
		}
	}

	if claim.Object == "" {
		return
	}
	if generated, ok := i.improveField(claim.Object, context); ok {
		claim.Object = generated.url
		claim.ObjectSuggested = generated.url
		claim.ObjectEntityType = generated.typ
		if generated.guessed {
			claim.NeedsVerification = true
		}
	}
}

type generatedURL struct {
	url     string
	guessed bool
	typ     model.EntityType
}

// improveField returns a replacement for value, or ok=false when the value
// is already a real URL and should be left alone.
func (i *Improver) improveField(value, context string) (generatedURL, bool) {
	if value == "" {
		return generatedURL{}, false
	}

	// URN placeholders belong to organization resolution, not generation.
	if strings.HasPrefix(value, "urn:") {
		return generatedURL{}, false
	}

	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		u, guessed, typ := GenerateURL(value, context)
		i.logger.Debug("generated URL for entity",
			zap.String("entity", value), zap.String("url", u), zap.String("type", string(typ)))
		return generatedURL{url: u, guessed: guessed, typ: typ}, true
	}

	if !IsRealURL(value) {
		entity := EntityFromURL(value)
		u, guessed, typ := GenerateURL(entity, context)
		i.logger.Debug("replaced placeholder URL",
			zap.String("placeholder", value), zap.String("entity", entity), zap.String("url", u))
		return generatedURL{url: u, guessed: guessed, typ: typ}, true
	}

	return generatedURL{}, false
}
