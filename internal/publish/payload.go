// Package publish shapes approved claims into the payload the LinkedTrust
// API accepts and defines the client surface for sending them.
package publish

import (
	"context"
	"time"

	"github.com/linkedclaims/claimresolve/internal/model"
)

const (
	defaultIssuerID     = "https://extract.linkedtrust.us"
	defaultIssuerIDType = "URL"
	defaultHowKnown     = "DOCUMENT"
)

// Document describes the source document a claim came from.
type Document struct {
	PublicURL     string
	EffectiveDate time.Time
}

// Payload is the wire shape for claim creation. Optional numeric fields
// are pointers so absent and zero stay distinguishable in JSON.
type Payload struct {
	Subject       string   `json:"subject"`
	Statement     string   `json:"statement"`
	Object        string   `json:"object,omitempty"`
	SourceURI     string   `json:"sourceURI"`
	EffectiveDate string   `json:"effectiveDate"`
	HowKnown      string   `json:"howKnown"`
	IssuerID      string   `json:"issuerId"`
	IssuerIDType  string   `json:"issuerIdType"`
	Confidence    *float64 `json:"confidence,omitempty"`
	Aspect        string   `json:"aspect,omitempty"`
	Score         *float64 `json:"score,omitempty"`
	Stars         *int     `json:"stars,omitempty"`
	Amount        *float64 `json:"amt,omitempty"`
	Unit          string   `json:"unit,omitempty"`
	HowMeasured   string   `json:"howMeasured,omitempty"`
}

// BuildPayload assembles the API payload for an approved claim.
func BuildPayload(claim *model.ResolvedClaim, doc Document) Payload {
	howKnown := claim.HowKnown
	if howKnown == "" {
		howKnown = defaultHowKnown
	}

	return Payload{
		Subject:       claim.Subject,
		Statement:     claim.Statement,
		Object:        claim.Object,
		SourceURI:     doc.PublicURL,
		EffectiveDate: doc.EffectiveDate.Format(time.RFC3339),
		HowKnown:      howKnown,
		IssuerID:      defaultIssuerID,
		IssuerIDType:  defaultIssuerIDType,
		Confidence:    claim.Confidence,
		Aspect:        claim.Aspect,
		Score:         claim.Score,
		Stars:         claim.Stars,
		Amount:        claim.Amount,
		Unit:          claim.Unit,
		HowMeasured:   claim.HowMeasured,
	}
}

// Client publishes claims. The concrete HTTP implementation lives with the
// deployment that owns credentials; this package only fixes the contract.
type Client interface {
	CreateClaim(ctx context.Context, payload Payload) error
}
