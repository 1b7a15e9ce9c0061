package nodes

import (
	"context"
	"strings"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// ClarificationHandler composes a question naming every unresolved
// surface form and terminates the pipeline at this node. The caller
// (the DAG's conditional edge) only routes here when a resolved-entity
// record has no graphId and the intent is not one of the aggregate
// intents that tolerate partial resolution.
type ClarificationHandler struct {
	LLM llmprovider.Provider
}

func (n *ClarificationHandler) Name() string { return "clarification_handler" }

func (n *ClarificationHandler) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	terms := unresolvedSurfaceForms(state.ResolvedEntities)

	response, err := n.LLM.GenerateClarification(ctx, state.Question, terms)
	if err != nil {
		fallback := "다음 항목을 정확히 지칭해 주시겠어요? " + strings.Join(terms, ", ")
		errMsg := err.Error()
		return pipeline.Patch{
			Response:      &fallback,
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	return pipeline.Patch{
		Response:      &response,
		ExecutionPath: []string{n.Name()},
	}, nil
}

func unresolvedSurfaceForms(resolved []pipeline.ResolvedEntity) []string {
	var terms []string
	for _, r := range resolved {
		if r.GraphID == "" {
			terms = appendUnique(terms, r.OriginalValue)
		}
	}
	return terms
}
