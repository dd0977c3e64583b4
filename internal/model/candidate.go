package model

import "time"

// URLCandidate is a proposed official URL for an organization, awaiting
// human approval or rejection. Candidates are never deleted; terminal
// states are kept as an audit trail.
type URLCandidate struct {
	ID              string          `json:"candidate_id"`
	Organization    string          `json:"organization"` // normalized key
	URL             string          `json:"url"`
	Title           string          `json:"title"`
	Confidence      float64         `json:"confidence"`
	Status          CandidateStatus `json:"status"`
	FoundAt         time.Time       `json:"found_at"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	VerifiedBy      string          `json:"verified_by,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	Inaccessible    bool            `json:"inaccessible,omitempty"` // link check failed; annotation only
}

// CandidateStatus is the candidate lifecycle state. UNVERIFIED may move to
// APPROVED or REJECTED; both are terminal.
type CandidateStatus string

const (
	CandidateUnverified CandidateStatus = "unverified"
	CandidateApproved   CandidateStatus = "approved"
	CandidateRejected   CandidateStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed.
func (s CandidateStatus) Terminal() bool {
	switch s {
	case CandidateApproved, CandidateRejected:
		return true
	case CandidateUnverified:
		return false
	}
	return false
}

// CandidateView is the reviewer-facing serialization of a candidate.
type CandidateView struct {
	CandidateID string  `json:"candidate_id"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Confidence  float64 `json:"confidence"`
	Status      string  `json:"status,omitempty"`
	FoundAt     string  `json:"found_at,omitempty"`
}

// PendingOrganization groups an organization's remaining unverified
// candidates for the review queue.
type PendingOrganization struct {
	Organization   string          `json:"organization"`
	DisplayName    string          `json:"display_name"`
	Candidates     []CandidateView `json:"candidates"`
	CandidateCount int             `json:"candidate_count"`
}

// VerificationStats summarizes candidate lifecycle counts.
type VerificationStats struct {
	TotalCandidates       int `json:"total_candidates"`
	Approved              int `json:"approved"`
	Rejected              int `json:"rejected"`
	Pending               int `json:"pending"`
	VerifiedOrganizations int `json:"verified_organizations"`
	PendingOrganizations  int `json:"pending_organizations"`
}

// ResolutionStats summarizes resolver cache behavior.
type ResolutionStats struct {
	KnownOrgs             int     `json:"known_orgs"`
	CachedSearches        int     `json:"cached_searches"`
	SuccessfulResolutions int     `json:"successful_resolutions"`
	SuccessRate           float64 `json:"success_rate"`
	CacheHitRatio         float64 `json:"cache_hit_ratio"`
}
