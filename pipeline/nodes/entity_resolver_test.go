package nodes

import (
	"context"
	"testing"

	"github.com/graphrag-pipeline/corepipeline/graphrepo"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityResolver_ExactMatchWinsFirst(t *testing.T) {
	repo := newFakeRepo()
	repo.exact["Person|홍길동"] = graphrepo.Node{ID: "123", Labels: []string{"Person"}, Properties: map[string]any{"name": "홍길동"}}

	state := pipeline.NewState("홍길동 부서는?", "s", "t")
	state.ExpandedEntities = map[string][]string{"Person": {"홍길동"}}

	n := &EntityResolver{Repo: repo}
	patch, err := n.Process(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, patch.ResolvedEntities, 1)
	assert.Equal(t, "123", patch.ResolvedEntities[0].GraphID)
	assert.Equal(t, 1.0, patch.ResolvedEntities[0].MatchScore)
	assert.Empty(t, patch.UnresolvedEntities)
}

func TestEntityResolver_FallsThroughStrategiesInOrder(t *testing.T) {
	repo := newFakeRepo()
	repo.stripped["Project|그래프 RAG 프로젝트"] = graphrepo.Node{ID: "p1", Labels: []string{"Project"}}

	state := pipeline.NewState("q", "s", "t")
	state.ExpandedEntities = map[string][]string{"Project": {"그래프 RAG 프로젝트"}}

	n := &EntityResolver{Repo: repo}
	patch, err := n.Process(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, patch.ResolvedEntities, 1)
	assert.Equal(t, "p1", patch.ResolvedEntities[0].GraphID)
}

func TestEntityResolver_NoMatchBecomesUnresolved(t *testing.T) {
	repo := newFakeRepo()
	state := pipeline.NewState("q", "s", "t")
	state.ExpandedEntities = map[string][]string{"Person": {"없는사람"}}

	n := &EntityResolver{Repo: repo}
	patch, err := n.Process(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, patch.UnresolvedEntities, 1)
	assert.Equal(t, "없는사람", patch.UnresolvedEntities[0].Term)
	require.Len(t, patch.ResolvedEntities, 1)
	assert.Equal(t, "", patch.ResolvedEntities[0].GraphID)
}

func TestEntityResolver_LookupErrorTreatedAsUnresolved(t *testing.T) {
	repo := newFakeRepo()
	repo.lookupErr = errFake
	state := pipeline.NewState("q", "s", "t")
	state.ExpandedEntities = map[string][]string{"Person": {"홍길동"}}

	n := &EntityResolver{Repo: repo}
	patch, err := n.Process(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, patch.UnresolvedEntities, 1)
}
