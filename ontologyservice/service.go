package ontologyservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/graphrag-pipeline/corepipeline/graphrepo"
	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/ontology"
	"github.com/graphrag-pipeline/corepipeline/pipelineerr"
)

// Service is the CRUD/approve/reject/apply boundary over proposals,
// grounded on OntologyService (original_source/src/services/ontology_service.py):
// same method set, same preconditions, same nested
// apply-after-approve-never-fails-the-approval rule.
type Service struct {
	Store    ProposalStore
	Graph    graphrepo.Repository
	Registry *ontology.Registry
}

// NewService wires a Service over an already-constructed store and the
// graph repository apply_proposal_to_ontology writes into. Registry may
// be nil; when set, a successful approve/batch-approve best-effort
// refreshes it so the next query sees the change immediately.
func NewService(store ProposalStore, graph graphrepo.Repository, registry *ontology.Registry) *Service {
	return &Service{Store: store, Graph: graph, Registry: registry}
}

// GetProposal fetches a single proposal by ID.
func (s *Service) GetProposal(ctx context.Context, id string) (Proposal, error) {
	p, ok, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return Proposal{}, fmt.Errorf("ontologyservice: get proposal: %w", err)
	}
	if !ok {
		return Proposal{}, pipelineerr.Wrap(pipelineerr.KindNotFound, "proposal not found", pipelineerr.ErrProposalNotFound)
	}
	return p, nil
}

// ListProposals returns a filtered, paginated slice plus the total
// matching count, normalising the "all" sentinel to an unfiltered zero
// value the way list_proposals does.
func (s *Service) ListProposals(ctx context.Context, filter ListFilter) ([]Proposal, int, error) {
	if string(filter.Status) == "all" {
		filter.Status = ""
	}
	if string(filter.Type) == "all" {
		filter.Type = ""
	}
	if string(filter.Source) == "all" {
		filter.Source = ""
	}
	return s.Store.ListPaginated(ctx, filter)
}

// GetStats returns the aggregate reporting view.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	return s.Store.Stats(ctx)
}

// CreateProposal manually creates a high-confidence admin-sourced
// proposal, matching create_proposal's defaults (frequency 1,
// confidence 1.0, status pending, source admin).
func (s *Service) CreateProposal(ctx context.Context, term, category string, ptype ProposalType, suggestedParent, suggestedCanonical, relationType, note string) (Proposal, error) {
	action := note
	if action == "" {
		action = fmt.Sprintf("Manual proposal: %s for '%s'", ptype, term)
	}
	p := Proposal{
		ID:                    uuid.NewString(),
		Type:                  ptype,
		Term:                  term,
		Category:              category,
		SuggestedAction:       action,
		SuggestedParent:       suggestedParent,
		SuggestedCanonical:    suggestedCanonical,
		SuggestedRelationType: relationType,
		Frequency:             1,
		Confidence:            1.0,
		Status:                StatusPending,
		Source:                SourceAdmin,
	}
	created, err := s.Store.Create(ctx, p)
	if err != nil {
		return Proposal{}, fmt.Errorf("ontologyservice: create proposal: %w", err)
	}
	return created, nil
}

// UpdateProposal applies a version-checked partial update.
func (s *Service) UpdateProposal(ctx context.Context, id string, expectedVersion int, updates map[string]any) (Proposal, error) {
	current, ok, err := s.Store.CurrentVersion(ctx, id)
	if err != nil {
		return Proposal{}, fmt.Errorf("ontologyservice: update proposal: %w", err)
	}
	if !ok {
		return Proposal{}, pipelineerr.Wrap(pipelineerr.KindNotFound, "proposal not found", pipelineerr.ErrProposalNotFound)
	}
	if current != expectedVersion {
		return Proposal{}, pipelineerr.VersionMismatch(expectedVersion, current)
	}

	filtered := make(map[string]any, len(updates))
	for k, v := range updates {
		if v != nil {
			filtered[k] = v
		}
	}

	updated, ok, err := s.Store.UpdateWithVersion(ctx, id, expectedVersion, filtered)
	if err != nil {
		return Proposal{}, fmt.Errorf("ontologyservice: update proposal: %w", err)
	}
	if !ok {
		return Proposal{}, pipelineerr.Wrap(pipelineerr.KindConflict, "concurrent modification detected", nil)
	}
	return updated, nil
}

// ApproveProposal transitions a pending proposal to approved, then
// attempts to apply it to the live concept graph. Application failure
// never unwinds the approval — the proposal stays approved and the
// failure is the caller's problem to retry, matching the original's
// try/except around apply_proposal_to_ontology.
func (s *Service) ApproveProposal(ctx context.Context, id string, expectedVersion int, reviewer, canonical, parent, note string) (Proposal, error) {
	proposal, err := s.GetProposal(ctx, id)
	if err != nil {
		return Proposal{}, err
	}
	if proposal.Status != StatusPending {
		return Proposal{}, pipelineerr.New(pipelineerr.KindInvalidState, fmt.Sprintf("cannot approve proposal with status %q", proposal.Status))
	}
	if proposal.Version != expectedVersion {
		return Proposal{}, pipelineerr.VersionMismatch(expectedVersion, proposal.Version)
	}

	reviewedBy := reviewer
	if reviewedBy == "" {
		reviewedBy = "admin"
	}
	updates := map[string]any{
		"status":      string(StatusApproved),
		"reviewed_by": reviewedBy,
	}
	if canonical != "" {
		updates["suggested_canonical"] = canonical
	}
	if parent != "" {
		updates["suggested_parent"] = parent
	}
	if note != "" {
		action := strings.TrimSpace(proposal.SuggestedAction + "\n[Approved] " + note)
		updates["suggested_action"] = action
	}

	result, ok, err := s.Store.UpdateWithVersion(ctx, id, expectedVersion, updates)
	if err != nil {
		return Proposal{}, fmt.Errorf("ontologyservice: approve proposal: %w", err)
	}
	if !ok {
		return Proposal{}, pipelineerr.Wrap(pipelineerr.KindConflict, "concurrent modification detected", nil)
	}

	if applied, applyErr := s.ApplyProposalToOntology(ctx, result); applyErr == nil && applied {
		_ = s.Store.MarkApplied(ctx, id)
		safeRefreshRegistry(ctx, s.Registry)
	}

	return result, nil
}

// RejectProposal transitions a pending proposal to rejected.
func (s *Service) RejectProposal(ctx context.Context, id string, expectedVersion int, reviewer, reason string) (Proposal, error) {
	proposal, err := s.GetProposal(ctx, id)
	if err != nil {
		return Proposal{}, err
	}
	if proposal.Status != StatusPending {
		return Proposal{}, pipelineerr.New(pipelineerr.KindInvalidState, fmt.Sprintf("cannot reject proposal with status %q", proposal.Status))
	}
	if proposal.Version != expectedVersion {
		return Proposal{}, pipelineerr.VersionMismatch(expectedVersion, proposal.Version)
	}

	reviewedBy := reviewer
	if reviewedBy == "" {
		reviewedBy = "admin"
	}
	updates := map[string]any{
		"status":           string(StatusRejected),
		"reviewed_by":      reviewedBy,
		"rejection_reason": reason,
	}
	result, ok, err := s.Store.UpdateWithVersion(ctx, id, expectedVersion, updates)
	if err != nil {
		return Proposal{}, fmt.Errorf("ontologyservice: reject proposal: %w", err)
	}
	if !ok {
		return Proposal{}, pipelineerr.Wrap(pipelineerr.KindConflict, "concurrent modification detected", nil)
	}
	return result, nil
}

// BatchApprove approves every pending proposal named in ids, skipping
// (and reporting) any that are not currently pending.
func (s *Service) BatchApprove(ctx context.Context, ids []string, reviewer, note string) (BatchResult, error) {
	reviewedBy := reviewer
	if reviewedBy == "" {
		reviewedBy = "admin"
	}
	succeeded, failed, err := s.Store.BatchUpdateStatus(ctx, ids, StatusApproved, reviewedBy, "")
	if err != nil {
		return BatchResult{}, fmt.Errorf("ontologyservice: batch approve: %w", err)
	}
	if len(succeeded) > 0 {
		safeRefreshRegistry(ctx, s.Registry)
	}
	return batchResultOf(succeeded, failed), nil
}

// BatchReject rejects every pending proposal named in ids.
func (s *Service) BatchReject(ctx context.Context, ids []string, reviewer, reason string) (BatchResult, error) {
	reviewedBy := reviewer
	if reviewedBy == "" {
		reviewedBy = "admin"
	}
	succeeded, failed, err := s.Store.BatchUpdateStatus(ctx, ids, StatusRejected, reviewedBy, reason)
	if err != nil {
		return BatchResult{}, fmt.Errorf("ontologyservice: batch reject: %w", err)
	}
	return batchResultOf(succeeded, failed), nil
}

func batchResultOf(succeeded, failed []string) BatchResult {
	errs := make([]BatchError, 0, len(failed))
	for _, id := range failed {
		errs = append(errs, BatchError{ID: id, Message: "not in pending state or not found"})
	}
	return BatchResult{SuccessCount: len(succeeded), FailedCount: len(failed), FailedIDs: failed, Errors: errs}
}

func safeRefreshRegistry(ctx context.Context, registry *ontology.Registry) {
	if registry == nil {
		return
	}
	_ = registry.Refresh(ctx)
}

// -----------------------------------------------------------------
// Chat-initiated foreground path (implements pipeline/nodes's
// ProposalCreator interface)
// -----------------------------------------------------------------

// CreateFromUpdateRequest turns a parsed OntologyUpdateRequest into a
// pending proposal, mapping the chat vocabulary (add_concept,
// add_synonym, add_relation) onto the three proposal types.
func (s *Service) CreateFromUpdateRequest(ctx context.Context, req llmprovider.OntologyUpdateRequest) (string, error) {
	ptype, ok := proposalTypeForAction[req.Action]
	if !ok {
		return "", fmt.Errorf("ontologyservice: unknown update action %q", req.Action)
	}

	p := Proposal{
		ID:                    uuid.NewString(),
		Type:                  ptype,
		Term:                  req.Term,
		Category:              req.Category,
		SuggestedAction:       req.Reasoning,
		SuggestedParent:       req.Target,
		SuggestedCanonical:    req.Target,
		SuggestedRelationType: req.RelationType,
		Frequency:             1,
		Confidence:            req.Confidence,
		Status:                StatusPending,
		Source:                SourceChat,
	}
	if ptype != ProposalTypeNewSynonym {
		p.SuggestedCanonical = ""
	}
	if ptype != ProposalTypeNewConcept && ptype != ProposalTypeNewRelation {
		p.SuggestedParent = ""
	}

	created, err := s.Store.Create(ctx, p)
	if err != nil {
		return "", fmt.Errorf("ontologyservice: create from update request: %w", err)
	}
	return created.ID, nil
}

var proposalTypeForAction = map[string]ProposalType{
	"add_concept":  ProposalTypeNewConcept,
	"add_synonym":  ProposalTypeNewSynonym,
	"add_relation": ProposalTypeNewRelation,
}

// ApproveAndApply approves proposalID on behalf of reviewer and applies
// it in the same call, the synchronous foreground-path shortcut
// OntologyUpdateHandler needs; ApproveProposal already folds
// application into the approval.
func (s *Service) ApproveAndApply(ctx context.Context, proposalID, reviewer string) error {
	proposal, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	_, err = s.ApproveProposal(ctx, proposalID, proposal.Version, reviewer, "", "", "")
	return err
}
