package nodes

import (
	"context"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// decomposableIntents is the set QueryDecomposer actually calls the LLM
// for; every other intent gets a trivial single-hop plan, per §4.8.
var decomposableIntents = map[pipeline.Intent]bool{
	pipeline.IntentPathAnalysis:       true,
	pipeline.IntentRelationshipSearch: true,
	pipeline.IntentMentoringNetwork:   true,
}

// QueryDecomposer produces a multi-hop query plan for the three
// traversal-heavy intents, falling back to a trivial single-hop plan
// on any LLM failure or for out-of-scope intents.
type QueryDecomposer struct {
	LLM llmprovider.Provider
}

func (n *QueryDecomposer) Name() string { return "query_decomposer" }

func (n *QueryDecomposer) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	if !decomposableIntents[state.Intent] {
		return pipeline.Patch{
			QueryPlan:     trivialPlan(),
			ExecutionPath: []string{n.Name()},
		}, nil
	}

	result, err := n.LLM.DecomposeQuery(ctx, state.Question, llmprovider.TierHeavy)
	if err != nil {
		errMsg := err.Error()
		return pipeline.Patch{
			QueryPlan:     trivialPlan(),
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	hops := make([]pipeline.QueryHop, 0, len(result.Hops))
	for _, h := range result.Hops {
		hops = append(hops, pipeline.QueryHop{
			Description:  h.Description,
			Relationship: h.Relationship,
			Direction:    h.Direction,
			Filter:       h.Filter,
		})
	}

	plan := &pipeline.QueryPlan{
		IsMultiHop:  result.IsMultiHop,
		HopCount:    result.HopCount,
		Hops:        hops,
		FinalReturn: result.FinalReturn,
		Explanation: result.Explanation,
	}

	return pipeline.Patch{
		QueryPlan:     plan,
		ExecutionPath: []string{n.Name()},
	}, nil
}

func trivialPlan() *pipeline.QueryPlan {
	return &pipeline.QueryPlan{IsMultiHop: false, HopCount: 1}
}
