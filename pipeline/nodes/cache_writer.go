package nodes

import (
	"context"

	"github.com/graphrag-pipeline/corepipeline/pipeline"
	"github.com/graphrag-pipeline/corepipeline/querycache"
)

// CacheWriter backfills the Cypher a cache miss resolved to, once
// cypher_generator has run, so the next question with a matching
// fingerprint embedding hits the cache instead of generating again.
// It sits between cypher_generator and graph_executor and is a no-op
// on a cache hit (nothing new to backfill) or when there is no
// embedding to key the update by.
type CacheWriter struct {
	Cache querycache.Repository
}

func (n *CacheWriter) Name() string { return "cache_writer" }

func (n *CacheWriter) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	if state.CacheHit || len(state.QuestionEmbedding) == 0 || state.CypherQuery == "" {
		return pipeline.Patch{ExecutionPath: []string{n.Name() + "_skipped"}}, nil
	}

	if err := n.Cache.UpdateQuery(ctx, state.QuestionEmbedding, state.CypherQuery, state.CypherParameters); err != nil {
		errMsg := err.Error()
		return pipeline.Patch{
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	return pipeline.Patch{ExecutionPath: []string{n.Name()}}, nil
}
