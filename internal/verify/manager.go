// Package verify owns the URL-candidate lifecycle: candidates found by
// search wait here until a human approves or rejects them. At most one
// candidate per organization can ever be approved.
package verify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkedclaims/claimresolve/internal/model"
)

// siblingRejectionReason is recorded on candidates auto-rejected because a
// different URL won the approval for the same organization.
const siblingRejectionReason = "another URL was approved for this organization"

// Candidate is one proposed (title, url, confidence) result, as handed over
// by the resolver.
type Candidate struct {
	Title      string
	URL        string
	Confidence float64
}

// Manager holds candidates and verified URLs in memory. All methods are
// safe for concurrent use; candidates are never removed, so rejected and
// approved entries remain as an audit trail.
type Manager struct {
	mu         sync.Mutex
	candidates map[string]*model.URLCandidate // candidate id -> candidate
	verified   map[string]string              // org key -> approved URL
	pending    map[string][]string            // org key -> candidate ids
	store      OrganizationStore              // durable tier, may be nil
	statePath  string                         // queue snapshot file, empty disables persistence
	logger     *zap.Logger
	now        func() time.Time
}

// NewManager creates a manager. store may be nil when no durable tier is
// configured.
func NewManager(store OrganizationStore, logger *zap.Logger) *Manager {
	return &Manager{
		candidates: make(map[string]*model.URLCandidate),
		verified:   make(map[string]string),
		pending:    make(map[string][]string),
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// NewPersistentManager creates a manager whose candidate queue survives
// process restarts via a JSON snapshot at statePath. A missing snapshot is
// a fresh start, not an error.
func NewPersistentManager(store OrganizationStore, statePath string, logger *zap.Logger) (*Manager, error) {
	m := NewManager(store, logger)
	m.statePath = statePath
	if err := m.loadState(); err != nil {
		return nil, err
	}
	return m, nil
}

// AddCandidates registers search results as unverified candidates for
// orgKey and returns them with their fresh ids.
func (m *Manager) AddCandidates(orgKey string, found []Candidate) []model.URLCandidate {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.URLCandidate, 0, len(found))
	for _, f := range found {
		c := &model.URLCandidate{
			ID:           uuid.NewString(),
			Organization: orgKey,
			URL:          f.URL,
			Title:        f.Title,
			Confidence:   f.Confidence,
			Status:       model.CandidateUnverified,
			FoundAt:      m.now().UTC(),
		}
		m.candidates[c.ID] = c
		m.pending[orgKey] = append(m.pending[orgKey], c.ID)
		out = append(out, *c)
	}

	m.persistLocked()
	m.logger.Info("registered URL candidates",
		zap.String("organization", orgKey), zap.Int("count", len(out)))
	return out
}

// Approve marks the candidate as the organization's verified URL. Returns
// false when the id is unknown or the candidate is already in a terminal
// state. Every other still-unverified candidate for the same organization
// is rejected, which is what enforces the at-most-one-approved invariant.
func (m *Manager) Approve(candidateID, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.candidates[candidateID]
	if !ok {
		m.logger.Warn("approve: unknown candidate", zap.String("candidate_id", candidateID))
		return false
	}
	if c.Status.Terminal() {
		m.logger.Warn("approve: candidate already finalized",
			zap.String("candidate_id", candidateID), zap.String("status", string(c.Status)))
		return false
	}

	now := m.now().UTC()
	c.Status = model.CandidateApproved
	c.VerifiedAt = &now
	c.VerifiedBy = userID
	m.verified[c.Organization] = c.URL

	for _, otherID := range m.pending[c.Organization] {
		if otherID == candidateID {
			continue
		}
		other := m.candidates[otherID]
		if other.Status != model.CandidateUnverified {
			continue
		}
		other.Status = model.CandidateRejected
		other.RejectionReason = siblingRejectionReason
		other.VerifiedAt = &now
	}
	m.pending[c.Organization] = nil

	if m.store != nil {
		if err := m.store.Add(c.Organization, c.URL, userID, ""); err != nil {
			m.logger.Warn("durable store write failed",
				zap.String("organization", c.Organization), zap.Error(err))
		}
	}

	m.persistLocked()
	m.logger.Info("approved URL candidate",
		zap.String("organization", c.Organization),
		zap.String("url", c.URL),
		zap.String("user", userID))
	return true
}

// Reject marks a candidate as wrong with the given reason. Siblings are
// untouched. Returns false for unknown ids or finalized candidates.
func (m *Manager) Reject(candidateID, reason, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.candidates[candidateID]
	if !ok {
		m.logger.Warn("reject: unknown candidate", zap.String("candidate_id", candidateID))
		return false
	}
	if c.Status.Terminal() {
		return false
	}

	now := m.now().UTC()
	c.Status = model.CandidateRejected
	c.RejectionReason = reason
	c.VerifiedAt = &now
	c.VerifiedBy = userID

	ids := m.pending[c.Organization]
	for i, id := range ids {
		if id == candidateID {
			m.pending[c.Organization] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	m.persistLocked()
	m.logger.Info("rejected URL candidate",
		zap.String("organization", c.Organization),
		zap.String("url", c.URL),
		zap.String("reason", reason))
	return true
}

// Candidate returns a copy of the candidate with the given id.
func (m *Manager) Candidate(candidateID string) (model.URLCandidate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[candidateID]
	if !ok {
		return model.URLCandidate{}, false
	}
	return *c, true
}

// VerifiedURL returns the approved URL for orgKey, or "" when none exists.
func (m *Manager) VerifiedURL(orgKey string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verified[orgKey]
}

// Pending lists organizations that still have unverified candidates,
// ordered by the best remaining confidence, truncated to limit.
func (m *Manager) Pending(limit int) []model.PendingOrganization {
	m.mu.Lock()
	defer m.mu.Unlock()

	var orgs []model.PendingOrganization
	for orgKey, ids := range m.pending {
		var views []model.CandidateView
		for _, id := range ids {
			c, ok := m.candidates[id]
			if !ok || c.Status != model.CandidateUnverified {
				continue
			}
			views = append(views, model.CandidateView{
				CandidateID: c.ID,
				URL:         c.URL,
				Title:       c.Title,
				Confidence:  c.Confidence,
				FoundAt:     c.FoundAt.Format(time.RFC3339),
			})
		}
		if len(views) == 0 {
			continue
		}
		orgs = append(orgs, model.PendingOrganization{
			Organization:   orgKey,
			DisplayName:    displayName(orgKey),
			Candidates:     views,
			CandidateCount: len(views),
		})
	}

	sort.Slice(orgs, func(i, j int) bool {
		return bestConfidence(orgs[i]) > bestConfidence(orgs[j])
	})

	if limit > 0 && len(orgs) > limit {
		orgs = orgs[:limit]
	}
	return orgs
}

// Stats reports lifecycle counts for operational visibility.
func (m *Manager) Stats() model.VerificationStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := model.VerificationStats{
		TotalCandidates:       len(m.candidates),
		VerifiedOrganizations: len(m.verified),
	}
	for _, c := range m.candidates {
		switch c.Status {
		case model.CandidateApproved:
			stats.Approved++
		case model.CandidateRejected:
			stats.Rejected++
		case model.CandidateUnverified:
			stats.Pending++
		}
	}
	for _, ids := range m.pending {
		if len(ids) > 0 {
			stats.PendingOrganizations++
		}
	}
	return stats
}

// managerState is the on-disk snapshot of the verification queue.
type managerState struct {
	Candidates map[string]*model.URLCandidate `json:"candidates"`
	Verified   map[string]string              `json:"verified"`
	Pending    map[string][]string            `json:"pending"`
}

func (m *Manager) loadState() error {
	data, err := os.ReadFile(m.statePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read verification state: %w", err)
	}

	var state managerState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parse verification state %s: %w", m.statePath, err)
	}
	if state.Candidates != nil {
		m.candidates = state.Candidates
	}
	if state.Verified != nil {
		m.verified = state.Verified
	}
	if state.Pending != nil {
		m.pending = state.Pending
	}
	return nil
}

// persistLocked snapshots the queue. Best effort: a failed write costs the
// queue on restart, not correctness now.
func (m *Manager) persistLocked() {
	if m.statePath == "" {
		return
	}
	state := managerState{
		Candidates: m.candidates,
		Verified:   m.verified,
		Pending:    m.pending,
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		m.logger.Warn("encode verification state failed", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(m.statePath), 0o755); err != nil {
		m.logger.Warn("create state directory failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(m.statePath, data, 0o644); err != nil {
		m.logger.Warn("write verification state failed", zap.Error(err))
	}
}

func bestConfidence(org model.PendingOrganization) float64 {
	best := 0.0
	for _, c := range org.Candidates {
		if c.Confidence > best {
			best = c.Confidence
		}
	}
	return best
}

// displayName turns a normalized key back into something readable.
func displayName(orgKey string) string {
	words := strings.Fields(strings.ReplaceAll(orgKey, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
