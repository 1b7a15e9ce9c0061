package nodes

import (
	"context"
	"testing"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryDecomposer_OutOfScopeIntentSkipsLLM(t *testing.T) {
	state := pipeline.NewState("q", "s", "t")
	state.Intent = pipeline.IntentPersonnelSearch

	n := &QueryDecomposer{LLM: &fakeLLM{decomposeErr: errFake}}
	patch, err := n.Process(context.Background(), state)
	require.NoError(t, err)
	require.NotNil(t, patch.QueryPlan)
	assert.False(t, patch.QueryPlan.IsMultiHop)
	assert.Equal(t, 1, patch.QueryPlan.HopCount)
	assert.Equal(t, []string{"query_decomposer"}, patch.ExecutionPath)
}

func TestQueryDecomposer_MultiHopIntentCallsLLM(t *testing.T) {
	state := pipeline.NewState("q", "s", "t")
	state.Intent = pipeline.IntentPathAnalysis

	llm := &fakeLLM{decomposeResult: llmprovider.DecomposeResult{
		IsMultiHop: true,
		HopCount:   2,
		Hops: []llmprovider.QueryHop{
			{Description: "find manager", Relationship: "MANAGES", Direction: "incoming"},
		},
	}}
	n := &QueryDecomposer{LLM: llm}
	patch, err := n.Process(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, patch.QueryPlan.IsMultiHop)
	assert.Equal(t, 2, patch.QueryPlan.HopCount)
}

func TestQueryDecomposer_LLMFailureFallsBackToTrivialPlan(t *testing.T) {
	state := pipeline.NewState("q", "s", "t")
	state.Intent = pipeline.IntentRelationshipSearch

	n := &QueryDecomposer{LLM: &fakeLLM{decomposeErr: errFake}}
	patch, err := n.Process(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, patch.QueryPlan.IsMultiHop)
	assert.Equal(t, []string{"query_decomposer_error"}, patch.ExecutionPath)
}
