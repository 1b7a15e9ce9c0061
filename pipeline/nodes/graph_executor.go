package nodes

import (
	"context"

	"github.com/graphrag-pipeline/corepipeline/graphrepo"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// GraphExecutor runs the generated Cypher and serialises the result;
// empty results are not an error, per §4.10.
type GraphExecutor struct {
	Repo graphrepo.Repository
}

func (n *GraphExecutor) Name() string { return "graph_executor" }

func (n *GraphExecutor) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	if state.CypherQuery == "" {
		errMsg := "graph_executor: no query to run"
		return pipeline.Patch{
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	result, err := n.Repo.Execute(ctx, state.CypherQuery, state.CypherParameters)
	if err != nil {
		errMsg := err.Error()
		return pipeline.Patch{
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	count := len(result.Rows)
	return pipeline.Patch{
		GraphResults:  result.Rows,
		ResultCount:   &count,
		ExecutionPath: []string{n.Name()},
	}, nil
}
