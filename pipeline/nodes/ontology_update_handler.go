package nodes

import (
	"context"
	"fmt"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/ontology"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// foregroundAutoApproveConfidence is the confidence floor §4.12's
// foreground path requires before it will even attempt a proposal.
const foregroundAutoApproveConfidence = 0.7

// ProposalCreator is the slice of ontologyservice's surface the
// foreground chat-initiated path needs: create, then immediately
// approve-and-apply on behalf of the synthetic "chat_user" reviewer.
type ProposalCreator interface {
	CreateFromUpdateRequest(ctx context.Context, req llmprovider.OntologyUpdateRequest) (proposalID string, err error)
	ApproveAndApply(ctx context.Context, proposalID, reviewer string) error
}

// OntologyUpdateHandler is the foreground, chat-initiated half of the
// adaptive control loop: when intent=ontology_update, it parses the
// user's request, and on high enough confidence persists, approves and
// applies the change in one pass, then refreshes the registry cache so
// the very next turn sees it.
type OntologyUpdateHandler struct {
	LLM       llmprovider.Provider
	Proposals ProposalCreator
	Registry  *ontology.Registry
}

func (n *OntologyUpdateHandler) Name() string { return "ontology_update_handler" }

func (n *OntologyUpdateHandler) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	req, err := n.LLM.OntologyUpdateParser(ctx, state.Question)
	if err != nil {
		errMsg := err.Error()
		response := "요청을 이해하지 못했습니다. 다시 말씀해 주시겠어요?"
		return pipeline.Patch{
			Response:      &response,
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	if req.Confidence < foregroundAutoApproveConfidence || req.Action == "" {
		response := "요청하신 변경 사항을 확신할 수 없어 적용하지 않았습니다. 더 구체적으로 말씀해 주세요."
		return pipeline.Patch{
			Response:      &response,
			ExecutionPath: []string{n.Name() + "_low_confidence"},
		}, nil
	}

	proposalID, err := n.Proposals.CreateFromUpdateRequest(ctx, req)
	if err != nil {
		errMsg := err.Error()
		response := "변경 사항을 저장하는 중 오류가 발생했습니다."
		return pipeline.Patch{
			Response:      &response,
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	if err := n.Proposals.ApproveAndApply(ctx, proposalID, "chat_user"); err != nil {
		errMsg := err.Error()
		response := "변경 사항을 적용하는 중 오류가 발생했습니다."
		return pipeline.Patch{
			Response:      &response,
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	if n.Registry != nil {
		_ = n.Registry.Refresh(ctx)
	}

	response := confirmationMessage(req)
	return pipeline.Patch{
		Response:      &response,
		ExecutionPath: []string{n.Name()},
	}, nil
}

// confirmationMessage renders the per-type confirmation the user sees
// after a chat-initiated change is applied: which term changed and how,
// not just that something changed.
func confirmationMessage(req llmprovider.OntologyUpdateRequest) string {
	switch req.Action {
	case "add_synonym":
		canonical := req.Target
		if canonical == "" {
			canonical = "?"
		}
		return fmt.Sprintf("'%s'을(를) '%s'의 동의어로 등록했습니다.", req.Term, canonical)
	case "add_relation":
		target := req.Target
		if target == "" {
			target = "?"
		}
		relType := req.RelationType
		if relType == "" {
			relType = "관계"
		}
		return fmt.Sprintf("'%s'과(와) '%s' 사이에 %s 관계를 추가했습니다.", req.Term, target, relType)
	default: // add_concept
		if req.Target != "" {
			return fmt.Sprintf("'%s'을(를) %s에 추가했습니다 (상위: %s).", req.Term, req.Category, req.Target)
		}
		return fmt.Sprintf("'%s'을(를) %s에 추가했습니다.", req.Term, req.Category)
	}
}
