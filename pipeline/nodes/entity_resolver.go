package nodes

import (
	"context"
	"time"

	"github.com/graphrag-pipeline/corepipeline/graphrepo"
	"github.com/graphrag-pipeline/corepipeline/log"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// koreanSuffixes are domain-specific suffixes EntityResolver's third
// strategy strips before retrying a lookup, per §4.7.
var koreanSuffixes = []string{"프로젝트", "팀", "부서", "본부", "실"}

// EntityResolver matches each expanded entity against the graph using
// three ordered strategies, falling back to the next only when the
// previous returns no rows. A strategy's first match wins with score
// 1.0; entities every strategy misses become UnresolvedEntity records
// for the background learner.
type EntityResolver struct {
	Repo   graphrepo.Repository
	Logger log.Logger
}

func (n *EntityResolver) Name() string { return "entity_resolver" }

func (n *EntityResolver) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	logger := n.Logger
	if logger == nil {
		logger = &log.NoOpLogger{}
	}

	source := state.ExpandedEntities
	if len(source) == 0 {
		source = state.Entities
	}

	var resolved []pipeline.ResolvedEntity
	var unresolved []pipeline.UnresolvedEntity

	for entityType, values := range source {
		for _, value := range values {
			node, score, err := n.resolveOne(ctx, entityType, value)
			if err != nil {
				logger.Warn("entity_resolver: lookup failed for %q (%s): %v", value, entityType, err)
				unresolved = append(unresolved, pipeline.UnresolvedEntity{
					Term:         value,
					Category:     entityType,
					Question:     state.Question,
					TimestampUTC: time.Now().UTC(),
				})
				resolved = append(resolved, pipeline.ResolvedEntity{OriginalValue: value})
				continue
			}
			if score == 0 {
				unresolved = append(unresolved, pipeline.UnresolvedEntity{
					Term:         value,
					Category:     entityType,
					Question:     state.Question,
					TimestampUTC: time.Now().UTC(),
				})
				resolved = append(resolved, pipeline.ResolvedEntity{OriginalValue: value})
				continue
			}
			resolved = append(resolved, pipeline.ResolvedEntity{
				GraphID:       node.ID,
				Labels:        node.Labels,
				CanonicalName: nameProperty(node),
				Properties:    node.Properties,
				MatchScore:    score,
				OriginalValue: value,
			})
		}
	}

	return pipeline.Patch{
		ResolvedEntities:   resolved,
		UnresolvedEntities: unresolved,
		ExecutionPath:      []string{n.Name()},
	}, nil
}

// resolveOne tries the three strategies in order, returning a zero
// score (not an error) when every strategy legitimately finds nothing.
func (n *EntityResolver) resolveOne(ctx context.Context, label, value string) (graphrepo.Node, float64, error) {
	node, ok, err := n.Repo.FindByExactName(ctx, label, value)
	if err != nil {
		return graphrepo.Node{}, 0, err
	}
	if ok {
		return node, 1.0, nil
	}

	node, ok, err = n.Repo.FindByCollapsedWhitespace(ctx, label, value)
	if err != nil {
		return graphrepo.Node{}, 0, err
	}
	if ok {
		return node, 1.0, nil
	}

	node, ok, err = n.Repo.FindByStrippedSuffix(ctx, label, value, koreanSuffixes)
	if err != nil {
		return graphrepo.Node{}, 0, err
	}
	if ok {
		return node, 1.0, nil
	}

	return graphrepo.Node{}, 0, nil
}

func nameProperty(node graphrepo.Node) string {
	if v, ok := node.Properties["name"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
