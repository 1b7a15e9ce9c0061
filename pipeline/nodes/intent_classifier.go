// Package nodes implements the thirteen pipeline.Node steps §4
// describes: intent/entity classification, concept expansion, cache
// checking, schema introspection, entity resolution, query
// decomposition, Cypher generation, graph execution, response and
// clarification generation, community summarisation, and the
// foreground ontology-update handler.
package nodes

import (
	"context"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/pipeline"
)

// availableIntents is the closed vocabulary §3 enumerates, sent to the
// LLM as a whitelist; anything else the model returns normalises to
// IntentUnknown.
var availableIntents = map[string]pipeline.Intent{
	string(pipeline.IntentPersonnelSearch):    pipeline.IntentPersonnelSearch,
	string(pipeline.IntentProjectMatching):    pipeline.IntentProjectMatching,
	string(pipeline.IntentRelationshipSearch): pipeline.IntentRelationshipSearch,
	string(pipeline.IntentOrgAnalysis):        pipeline.IntentOrgAnalysis,
	string(pipeline.IntentMentoringNetwork):   pipeline.IntentMentoringNetwork,
	string(pipeline.IntentCertificateSearch):  pipeline.IntentCertificateSearch,
	string(pipeline.IntentPathAnalysis):       pipeline.IntentPathAnalysis,
	string(pipeline.IntentOntologyUpdate):     pipeline.IntentOntologyUpdate,
	string(pipeline.IntentGlobalAnalysis):     pipeline.IntentGlobalAnalysis,
}

// IntentClassifier submits the fused classify-intent-and-extract call:
// one LLM round trip returns both the intent and the raw entity list,
// per §4.4's "usually fused" note. A failure of any kind collapses to
// intent=unknown with empty entities rather than raising.
type IntentClassifier struct {
	LLM llmprovider.Provider
}

func (n *IntentClassifier) Name() string { return "intent_classifier" }

func (n *IntentClassifier) Process(ctx context.Context, state pipeline.State) (pipeline.Patch, error) {
	if state.Question == "" {
		unknown := pipeline.IntentUnknown
		zero := 0.0
		return pipeline.Patch{
			Intent:           &unknown,
			IntentConfidence: &zero,
			Entities:         map[string][]string{},
			ExecutionPath:    []string{n.Name()},
		}, nil
	}

	result, err := n.LLM.ClassifyIntentAndExtract(ctx, state.Question, llmprovider.TierLight)
	if err != nil {
		unknown := pipeline.IntentUnknown
		zero := 0.0
		errMsg := err.Error()
		return pipeline.Patch{
			Intent:           &unknown,
			IntentConfidence: &zero,
			Entities:         map[string][]string{},
			Error:            &errMsg,
			ExecutionPath:    []string{n.Name() + "_error"},
		}, nil
	}

	intent, ok := availableIntents[result.Intent]
	if !ok {
		intent = pipeline.IntentUnknown
	}

	entities := map[string][]string{}
	for _, e := range result.Entities {
		value := e.Value
		if e.Normalized != "" {
			value = e.Normalized
		}
		entities[e.Type] = appendUnique(entities[e.Type], value)
	}

	confidence := result.Confidence

	return pipeline.Patch{
		Intent:           &intent,
		IntentConfidence: &confidence,
		Entities:         entities,
		ExecutionPath:    []string{n.Name()},
	}, nil
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
