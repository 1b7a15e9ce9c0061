package nodes

import (
	"context"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
	"github.com/graphrag-pipeline/corepipeline/querycache"
)

// CacheChecker implements §4.6's behaviour matrix: disabled skips
// entirely, an embedding failure degrades gracefully, and a
// high-similarity hit carries the cached query forward so the run
// skips concept expansion, entity resolution and query generation.
type CacheChecker struct {
	Enabled   bool
	Threshold float64
	LLM       llmprovider.Provider
	Cache     querycache.Repository
}

func (n *CacheChecker) Name() string { return "cache_checker" }

func (n *CacheChecker) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	if !n.Enabled {
		return pipeline.Patch{ExecutionPath: []string{n.Name() + "_skipped"}}, nil
	}

	embedding, err := n.LLM.Embed(ctx, state.Question)
	if err != nil {
		errMsg := err.Error()
		return pipeline.Patch{
			Error:         &errMsg,
			ExecutionPath: []string{n.Name() + "_error"},
		}, nil
	}

	match, ok, err := n.Cache.Nearest(ctx, embedding)
	if err != nil || !ok || match.Score < n.Threshold {
		if err := n.Cache.Store(ctx, querycache.CachedQuery{
			FingerprintEmbedding: embedding,
			Question:             state.Question,
		}); err != nil {
			errMsg := err.Error()
			return pipeline.Patch{
				QuestionEmbedding: embedding,
				Error:             &errMsg,
				ExecutionPath:     []string{n.Name() + "_miss"},
			}, nil
		}
		return pipeline.Patch{
			QuestionEmbedding: embedding,
			ExecutionPath:     []string{n.Name() + "_miss"},
		}, nil
	}

	hit := true
	skip := true
	score := match.Score
	cypherQuery := match.Query.CypherQuery

	return pipeline.Patch{
		QuestionEmbedding: embedding,
		CacheHit:          &hit,
		CacheScore:        &score,
		CypherQuery:       &cypherQuery,
		CypherParameters:  match.Query.CypherParameters,
		SkipGeneration:    &skip,
		ExecutionPath:     []string{n.Name() + "_hit"},
	}, nil
}
