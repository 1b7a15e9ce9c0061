package nodes

import (
	"context"
	"testing"

	"github.com/graphrag-pipeline/corepipeline/graphrepo"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphExecutor_NoQueryIsAnError(t *testing.T) {
	n := &GraphExecutor{Repo: newFakeRepo()}
	patch, err := n.Process(context.Background(), pipeline.NewState("q", "s", "t"))
	require.NoError(t, err)
	require.NotNil(t, patch.Error)
}

func TestGraphExecutor_EmptyResultsAreNotAnError(t *testing.T) {
	repo := newFakeRepo()
	repo.execResult = graphrepo.QueryResult{Rows: nil}
	state := pipeline.NewState("q", "s", "t")
	state.CypherQuery = "MATCH (n) RETURN n"

	n := &GraphExecutor{Repo: repo}
	patch, err := n.Process(context.Background(), state)
	require.NoError(t, err)
	assert.Nil(t, patch.Error)
	require.NotNil(t, patch.ResultCount)
	assert.Equal(t, 0, *patch.ResultCount)
}

func TestGraphExecutor_SerialisesRows(t *testing.T) {
	repo := newFakeRepo()
	repo.execResult = graphrepo.QueryResult{Rows: []map[string]any{{"name": "홍길동"}}}
	state := pipeline.NewState("q", "s", "t")
	state.CypherQuery = "MATCH (p:Person) RETURN p.name AS name"

	n := &GraphExecutor{Repo: repo}
	patch, err := n.Process(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, patch.GraphResults, 1)
	assert.Equal(t, "홍길동", patch.GraphResults[0]["name"])
}
