package nodes

import (
	"context"

	"github.com/graphrag-pipeline/corepipeline/ontology"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// entityCategory maps the closed entity-type vocabulary onto the
// ontology categories expandConcept understands; unmapped types pass
// through untouched per §4.5.
var entityCategory = map[string]string{
	"Skill":      "skills",
	"Position":   "positions",
	"Department": "departments",
}

// ConceptExpander broadens entities through the ontology registry's
// active loader before entity resolution, so resolution can match a
// synonym or child concept the user never typed.
type ConceptExpander struct {
	Registry *ontology.Registry
	Config   ontology.ExpansionConfig
}

func (n *ConceptExpander) Name() string { return "concept_expander" }

func (n *ConceptExpander) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	original := copyEntityMap(state.Entities)
	expanded := map[string][]string{}
	byOriginal := map[string]map[string][]string{}

	loader := n.Registry.Loader()
	beforeTotal := uniqueValueCount(original)

	for entityType, values := range state.Entities {
		category, ok := entityCategory[entityType]
		if !ok {
			expanded[entityType] = append([]string{}, values...)
			continue
		}

		perValue := map[string][]string{}
		var union []string
		for _, value := range values {
			result, err := loader.Expand(ctx, value, category, n.Config)
			if err != nil {
				// Degrade to the unexpanded surface form rather than
				// failing the whole node; §4.3 forbids exception leakage.
				result = []string{value}
			}
			perValue[value] = result
			for _, r := range result {
				union = appendUnique(union, r)
			}
		}
		expanded[entityType] = union
		byOriginal[entityType] = perValue
	}

	afterTotal := uniqueValueCount(expanded)
	expansionCount := afterTotal - beforeTotal
	if expansionCount < 0 {
		expansionCount = 0
	}

	strategy := pipeline.ExpansionNormal

	return pipeline.Patch{
		OriginalEntities:           original,
		ExpandedEntities:           expanded,
		ExpandedEntitiesByOriginal: byOriginal,
		ExpansionCount:             &expansionCount,
		ExpansionStrategy:          &strategy,
		ExecutionPath:              []string{n.Name()},
	}, nil
}

func copyEntityMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string{}, v...)
	}
	return out
}

func uniqueValueCount(m map[string][]string) int {
	total := 0
	for _, values := range m {
		seen := map[string]bool{}
		for _, v := range values {
			seen[v] = true
		}
		total += len(seen)
	}
	return total
}
