package nodes

import (
	"context"
	"fmt"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// ResponseGenerator produces the final natural-language answer,
// branching on three outcomes per §4.10's table.
type ResponseGenerator struct {
	LLM llmprovider.Provider
}

func (n *ResponseGenerator) Name() string { return "response_generator" }

func (n *ResponseGenerator) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	if state.Error != "" {
		response := fmt.Sprintf("죄송합니다, 요청을 처리하는 중 문제가 발생했습니다: %s", state.Error)
		return pipeline.Patch{
			Response:      &response,
			ExecutionPath: []string{n.Name() + "_error_handler"},
		}, nil
	}

	if len(state.GraphResults) == 0 {
		response := "조건에 맞는 결과를 찾을 수 없습니다."
		return pipeline.Patch{
			Response:      &response,
			ExecutionPath: []string{n.Name() + "_empty"},
		}, nil
	}

	response, err := n.LLM.GenerateResponse(ctx, state.Question, state.GraphResults, state.CypherQuery)
	if err != nil {
		errMsg := err.Error()
		apology := fmt.Sprintf("죄송합니다, 요청을 처리하는 중 문제가 발생했습니다: %s", errMsg)
		return pipeline.Patch{
			Response:      &apology,
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error_handler"},
		}, nil
	}

	return pipeline.Patch{
		Response:      &response,
		ExecutionPath: []string{n.Name()},
	}, nil
}
