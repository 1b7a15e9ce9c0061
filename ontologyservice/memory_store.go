package ontologyservice

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process ProposalStore test double, grounded on
// graphrepo.MemoryGraph's mutex-guarded map style, used by Service's
// tests and as the default store for deployments with no Postgres
// dependency configured.
type MemoryStore struct {
	mu        sync.Mutex
	proposals map[string]Proposal
}

var _ ProposalStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory proposal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{proposals: map[string]Proposal{}}
}

func (s *MemoryStore) Save(ctx context.Context, p Proposal, evidenceQuestion string) (Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.proposals {
		if strings.EqualFold(existing.Term, p.Term) && strings.EqualFold(existing.Category, p.Category) {
			existing.Version++
			existing.Frequency++
			if evidenceQuestion != "" && !contains(existing.EvidenceQuestions, evidenceQuestion) {
				existing.EvidenceQuestions = append(existing.EvidenceQuestions, evidenceQuestion)
			}
			s.proposals[id] = existing
			return existing, nil
		}
	}

	if evidenceQuestion != "" && !contains(p.EvidenceQuestions, evidenceQuestion) {
		p.EvidenceQuestions = append(p.EvidenceQuestions, evidenceQuestion)
	}
	if p.Frequency < 1 {
		p.Frequency = 1
	}
	return s.createLocked(p)
}

func (s *MemoryStore) Create(ctx context.Context, p Proposal) (Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(p)
}

func (s *MemoryStore) createLocked(p Proposal) (Proposal, error) {
	p.Version = 1
	s.proposals[p.ID] = p
	return p, nil
}

func (s *MemoryStore) FindByTermCategory(ctx context.Context, term, category string) (Proposal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.proposals {
		if strings.EqualFold(p.Term, term) && strings.EqualFold(p.Category, category) {
			return p, true, nil
		}
	}
	return Proposal{}, false, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (Proposal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	return p, ok, nil
}

func (s *MemoryStore) CurrentVersion(ctx context.Context, id string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return 0, false, nil
	}
	return p.Version, true, nil
}

func (s *MemoryStore) UpdateFrequency(ctx context.Context, id, question string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return errNotFound(id)
	}
	p.Frequency++
	if question != "" && !contains(p.EvidenceQuestions, question) {
		p.EvidenceQuestions = append(p.EvidenceQuestions, question)
	}
	s.proposals[id] = p
	return nil
}

func (s *MemoryStore) UpdateWithVersion(ctx context.Context, id string, expectedVersion int, updates map[string]any) (Proposal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok || p.Version != expectedVersion {
		return Proposal{}, false, nil
	}
	applyUpdates(&p, updates)
	p.Version++
	s.proposals[id] = p
	return p, true, nil
}

func (s *MemoryStore) TryAutoApproveWithLimit(ctx context.Context, id string, expectedVersion, dailyLimit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok || p.Version != expectedVersion || p.Status != StatusPending {
		return false, nil
	}
	if dailyLimit > 0 {
		today := 0
		for _, other := range s.proposals {
			if other.Status == StatusAutoApproved && other.ReviewedAt != nil && isToday(*other.ReviewedAt) {
				today++
			}
		}
		if today >= dailyLimit {
			return false, nil
		}
	}
	p.Status = StatusAutoApproved
	p.ReviewedBy = "system"
	now := nowUTC()
	p.ReviewedAt = &now
	p.Version++
	s.proposals[id] = p
	return true, nil
}

func (s *MemoryStore) ListPaginated(ctx context.Context, filter ListFilter) ([]Proposal, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []Proposal
	for _, p := range s.proposals {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.Source != "" && p.Source != filter.Source {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.TermSearch != "" && !strings.Contains(strings.ToLower(p.Term), strings.ToLower(filter.TermSearch)) {
			continue
		}
		matched = append(matched, p)
	}

	sortBy := filter.SortBy
	if !allowedSortFields[sortBy] {
		sortBy = "created_at"
	}
	asc := strings.EqualFold(filter.SortOrder, "asc")
	sort.Slice(matched, func(i, j int) bool {
		if asc {
			return lessByField(matched[i], matched[j], sortBy)
		}
		return lessByField(matched[j], matched[i], sortBy)
	})

	total := len(matched)
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if offset >= total {
		return []Proposal{}, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func lessByField(a, b Proposal, field string) bool {
	switch field {
	case "frequency":
		return a.Frequency < b.Frequency
	case "confidence":
		return a.Confidence < b.Confidence
	case "updated_at":
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{CategoryDist: map[string]int{}}
	var pending []Proposal
	for _, p := range s.proposals {
		stats.TotalProposals++
		switch p.Status {
		case StatusPending:
			stats.PendingCount++
			pending = append(pending, p)
		case StatusApproved:
			stats.ApprovedCount++
		case StatusAutoApproved:
			stats.AutoApprovedCount++
		case StatusRejected:
			stats.RejectedCount++
		}
		if p.Category != "" {
			stats.CategoryDist[p.Category]++
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Frequency != pending[j].Frequency {
			return pending[i].Frequency > pending[j].Frequency
		}
		return pending[i].Confidence > pending[j].Confidence
	})
	for i, p := range pending {
		if i >= 10 {
			break
		}
		stats.TopUnresolvedTerms = append(stats.TopUnresolvedTerms, TermFrequency{
			Term: p.Term, Category: p.Category, Frequency: p.Frequency, Confidence: p.Confidence,
		})
	}
	return stats, nil
}

func (s *MemoryStore) BatchUpdateStatus(ctx context.Context, ids []string, newStatus ProposalStatus, reviewedBy, rejectionReason string) ([]string, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var succeeded, failed []string
	now := nowUTC()
	for _, id := range ids {
		p, ok := s.proposals[id]
		if !ok || p.Status != StatusPending {
			failed = append(failed, id)
			continue
		}
		p.Status = newStatus
		p.Version++
		p.ReviewedBy = reviewedBy
		p.ReviewedAt = &now
		p.RejectionReason = rejectionReason
		s.proposals[id] = p
		succeeded = append(succeeded, id)
	}
	return succeeded, failed, nil
}

func (s *MemoryStore) MarkApplied(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return errNotFound(id)
	}
	now := nowUTC()
	p.AppliedAt = &now
	s.proposals[id] = p
	return nil
}

func applyUpdates(p *Proposal, updates map[string]any) {
	for field, value := range updates {
		if !allowedUpdateFields[field] {
			continue
		}
		s, ok := value.(string)
		if !ok {
			continue
		}
		switch field {
		case "suggested_parent":
			p.SuggestedParent = s
		case "suggested_canonical":
			p.SuggestedCanonical = s
		case "category":
			p.Category = s
		case "suggested_action":
			p.SuggestedAction = s
		case "status":
			p.Status = ProposalStatus(s)
		case "reviewed_at":
			// ignored: MemoryStore tracks ReviewedAt as time.Time and
			// sets it to the current time whenever status is updated
			// (see below).
		case "reviewed_by":
			p.ReviewedBy = s
		case "rejection_reason":
			p.RejectionReason = s
		}
	}
	if _, setStatus := updates["status"]; setStatus {
		now := nowUTC()
		p.ReviewedAt = &now
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func errNotFound(id string) error {
	return &notFoundError{id: id}
}

type notFoundError struct{ id string }

func (e *notFoundError) Error() string { return "ontologyservice: proposal not found: " + e.id }
