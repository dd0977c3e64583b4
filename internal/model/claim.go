package model

// RawClaim is a subject-predicate-object triple as produced by the extractor,
// before any URL resolution. Subject and Object may be URN placeholders
// (urn:local:org:Name), bare entity names, or already-resolved URLs.
type RawClaim struct {
	Subject           string   `json:"subject"`
	Predicate         string   `json:"claim"` // e.g. "impact", "rated", "same_as"
	Object            string   `json:"object,omitempty"`
	Statement         string   `json:"statement"`
	HowKnown          string   `json:"howKnown,omitempty"`
	Confidence        *float64 `json:"confidence,omitempty"` // extractor's own confidence
	Aspect            string   `json:"aspect,omitempty"`
	Score             *float64 `json:"score,omitempty"`
	Stars             *int     `json:"stars,omitempty"`
	Amount            *float64 `json:"amt,omitempty"`
	Unit              string   `json:"unit,omitempty"`
	HowMeasured       string   `json:"howMeasured,omitempty"`
	TestimonialSource string   `json:"testimonial_source,omitempty"`
}

// ResolvedClaim is a RawClaim after the URL resolution pass. Subject/Object
// hold resolved URLs where resolution succeeded; otherwise the original
// placeholder is kept and the candidate lists carry what was found.
type ResolvedClaim struct {
	RawClaim

	SubjectVerified    bool            `json:"subject_url_verified"`
	ObjectVerified     bool            `json:"object_url_verified"`
	NeedsVerification  bool            `json:"urls_need_verification"`
	SubjectCandidates  []CandidateView `json:"subject_url_candidates,omitempty"`
	ObjectCandidates   []CandidateView `json:"object_url_candidates,omitempty"`
	SubjectDisplayName string          `json:"subject_organization_display,omitempty"`
	ObjectDisplayName  string          `json:"object_organization_display,omitempty"`
	SubjectConfidence  float64         `json:"subject_url_confidence,omitempty"`
	ObjectConfidence   float64         `json:"object_url_confidence,omitempty"`
	SubjectSuggested   string          `json:"subject_suggested,omitempty"`
	ObjectSuggested    string          `json:"object_suggested,omitempty"`
	SubjectEntityType  EntityType      `json:"subject_entity_type,omitempty"`
	ObjectEntityType   EntityType      `json:"object_entity_type,omitempty"`
	ObjectURLSource    string          `json:"object_url_source,omitempty"` // "document" when rewritten to the source URL
	Status             ClaimStatus     `json:"status"`
	PageNumber         int             `json:"page_number,omitempty"`
	PageSnippet        string          `json:"page_text_snippet,omitempty"`
}

// ClaimStatus tracks a claim's position in the review workflow.
type ClaimStatus string

const (
	ClaimStatusDraft     ClaimStatus = "draft"
	ClaimStatusApproved  ClaimStatus = "approved"
	ClaimStatusPublished ClaimStatus = "published"
	ClaimStatusRejected  ClaimStatus = "rejected"
)

// EntityType is the heuristic classification of a non-organization entity.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityLocation     EntityType = "location"
	EntityConcept      EntityType = "concept"
	EntityUnknown      EntityType = "unknown"
)
