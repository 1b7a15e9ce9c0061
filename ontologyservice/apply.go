package ontologyservice

import (
	"context"
	"fmt"

	"github.com/graphrag-pipeline/corepipeline/graphrepo"
	"github.com/graphrag-pipeline/corepipeline/pipelineerr"
)

// ApplyProposalToOntology writes an approved proposal's change into
// the concept graph, dispatching on proposal type exactly as
// apply_proposal_to_ontology does: NEW_CONCEPT creates a concept (plus
// an IS_A edge to its parent), NEW_SYNONYM creates an alias concept
// plus a SAME_AS edge, NEW_RELATION creates an IS_A, SAME_AS, REQUIRES
// or PART_OF edge (IS_A when none is named); for any other relationship
// type both concepts are merged but no edge is created and it returns
// false.
func (s *Service) ApplyProposalToOntology(ctx context.Context, p Proposal) (bool, error) {
	if p.Status != StatusApproved && p.Status != StatusAutoApproved {
		return false, pipelineerr.New(pipelineerr.KindInvalidState, fmt.Sprintf("only approved proposals can be applied (current: %s)", p.Status))
	}
	if s.Graph == nil {
		return false, nil
	}

	switch p.Type {
	case ProposalTypeNewConcept:
		return s.applyNewConcept(ctx, p)
	case ProposalTypeNewSynonym:
		return s.applyNewSynonym(ctx, p)
	case ProposalTypeNewRelation:
		return s.applyNewRelation(ctx, p)
	default:
		return false, nil
	}
}

func (s *Service) applyNewConcept(ctx context.Context, p Proposal) (bool, error) {
	if _, err := s.mergeConcept(ctx, p.Term, p.Category, true, p.SuggestedAction, "proposal:"+p.ID); err != nil {
		return false, fmt.Errorf("ontologyservice: apply new concept: %w", err)
	}

	if p.SuggestedParent == "" {
		return true, nil
	}

	if _, err := s.mergeConcept(ctx, p.SuggestedParent, p.Category, true, fmt.Sprintf("Auto-created parent for '%s'", p.Term), "auto_parent_of:"+p.ID); err != nil {
		return false, fmt.Errorf("ontologyservice: apply new concept parent: %w", err)
	}

	if err := s.mergeRelation(ctx, p.Term, p.SuggestedParent, p.Category, "IS_A", p.ID); err != nil {
		return false, fmt.Errorf("ontologyservice: apply new concept IS_A edge: %w", err)
	}
	return true, nil
}

func (s *Service) applyNewSynonym(ctx context.Context, p Proposal) (bool, error) {
	if p.SuggestedCanonical == "" {
		return false, pipelineerr.New(pipelineerr.KindValidation, "NEW_SYNONYM proposal requires suggested_canonical")
	}

	if _, err := s.mergeConcept(ctx, p.SuggestedCanonical, p.Category, true, fmt.Sprintf("Auto-created canonical for '%s'", p.Term), "auto_canonical_for:"+p.ID); err != nil {
		return false, fmt.Errorf("ontologyservice: apply new synonym canonical: %w", err)
	}
	if _, err := s.mergeConcept(ctx, p.Term, p.Category, false, "Alias for "+p.SuggestedCanonical, "proposal:"+p.ID); err != nil {
		return false, fmt.Errorf("ontologyservice: apply new synonym alias: %w", err)
	}
	if err := s.mergeRelation(ctx, p.Term, p.SuggestedCanonical, p.Category, "SAME_AS", p.ID); err != nil {
		return false, fmt.Errorf("ontologyservice: apply new synonym SAME_AS edge: %w", err)
	}
	return true, nil
}

func (s *Service) applyNewRelation(ctx context.Context, p Proposal) (bool, error) {
	relType := p.SuggestedRelationType
	if relType == "" {
		relType = "IS_A"
	}

	target := p.SuggestedParent
	if target == "" {
		target = p.SuggestedCanonical
	}
	if target == "" {
		return false, pipelineerr.New(pipelineerr.KindValidation, "NEW_RELATION proposal requires suggested_parent or suggested_canonical")
	}

	if _, err := s.mergeConcept(ctx, p.Term, p.Category, true, fmt.Sprintf("Auto-created for %s relation to '%s'", relType, target), "auto_source_for:"+p.ID); err != nil {
		return false, fmt.Errorf("ontologyservice: apply new relation source: %w", err)
	}
	if _, err := s.mergeConcept(ctx, target, p.Category, true, fmt.Sprintf("Auto-created as %s target from '%s'", relType, p.Term), "auto_target_for:"+p.ID); err != nil {
		return false, fmt.Errorf("ontologyservice: apply new relation target: %w", err)
	}

	switch relType {
	case "IS_A", "SAME_AS", "REQUIRES", "PART_OF":
		if err := s.mergeRelation(ctx, p.Term, target, p.Category, relType, p.ID); err != nil {
			return false, fmt.Errorf("ontologyservice: apply new relation %s edge: %w", relType, err)
		}
		return true, nil
	default:
		return false, nil
	}
}

// mergeConcept ensures a Concept node exists, tagged canonical or alias.
func (s *Service) mergeConcept(ctx context.Context, name, category string, canonical bool, description, source string) (graphrepo.Node, error) {
	return s.Graph.MergeNode(ctx,
		"Concept",
		map[string]any{"name": name, "category": category},
		map[string]any{"isCanonical": canonical, "description": description, "source": source},
	)
}

// mergeRelation connects two concepts by name via relType, looking each
// up first since MergeRelationship addresses nodes by ID.
func (s *Service) mergeRelation(ctx context.Context, fromName, toName, category, relType, proposalID string) error {
	from, ok, err := s.Graph.FindByExactName(ctx, "Concept", fromName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("concept %q not found", fromName)
	}
	to, ok, err := s.Graph.FindByExactName(ctx, "Concept", toName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("concept %q not found", toName)
	}
	_, err = s.Graph.MergeRelationship(ctx, from.ID, to.ID, relType, map[string]any{"proposalId": proposalID})
	return err
}
