package nodes

import (
	"context"
	"strings"

	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// EntityExtractor runs downstream of IntentClassifier, in parallel with
// SchemaFetcher (§5's structured fan-out/fan-in). Since the fused
// classify-intent-and-extract call already populated state.Entities,
// this node's job is to normalise the surface forms (trim, drop
// empties) rather than issue a second LLM call.
type EntityExtractor struct{}

func (n *EntityExtractor) Name() string { return "entity_extractor" }

func (n *EntityExtractor) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	normalized := make(map[string][]string, len(state.Entities))
	for entityType, values := range state.Entities {
		var cleaned []string
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			cleaned = appendUnique(cleaned, v)
		}
		if len(cleaned) > 0 {
			normalized[entityType] = cleaned
		}
	}

	return pipeline.Patch{
		Entities:      normalized,
		ExecutionPath: []string{n.Name()},
	}, nil
}
