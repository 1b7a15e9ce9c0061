package pipeline

import (
	"context"

	"github.com/graphrag-pipeline/corepipeline/graph"
	"github.com/graphrag-pipeline/corepipeline/log"
)

// Nodes bundles every pipeline.Node implementation Build needs to wire
// the DAG; callers construct one instance of each concrete node type
// from the nodes subpackage and pass them here, keeping pipeline free
// of a direct dependency on llmprovider/graphrepo/ontology.
type Nodes struct {
	IntentClassifier      Node
	EntityExtractor       Node
	ConceptExpander       Node
	CacheChecker          Node
	SchemaFetcher         Node
	EntityResolver        Node
	QueryDecomposer       Node
	CypherGenerator       Node
	CacheWriter           Node
	GraphExecutor         Node
	ResponseGenerator     Node
	ClarificationHandler  Node
	CommunitySummarizer   Node
	OntologyUpdateHandler Node
}

// Build wires the fourteen nodes into the DAG §4 and §8 describe:
// intent classification first; then either the ontology-update or
// community-summary side path, or the mainline cache-check → parallel
// entity-extraction/schema-fetch → entity-resolution → (clarification
// | decomposition → cypher generation → execution → response) chain.
func Build(nodes Nodes, logger log.Logger) (*graph.StateRunnable[State], error) {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}

	g := graph.NewStateGraph[State]()

	g.AddNode("intent_classifier", "classify intent and extract raw entities", adapt(nodes.IntentClassifier, logger))
	g.AddNode("ontology_update_handler", "apply a chat-initiated ontology change", adapt(nodes.OntologyUpdateHandler, logger))
	g.AddNode("community_summarizer", "answer an organisation-wide aggregate question", adapt(nodes.CommunitySummarizer, logger))
	g.AddNode("cache_checker", "short-circuit on a cached query fingerprint", adapt(nodes.CacheChecker, logger))
	g.AddNode("entity_extractor", "normalise the raw entity surface forms", adapt(nodes.EntityExtractor, logger))
	g.AddNode("concept_expander", "broaden entities via ontology synonyms/children", adapt(nodes.ConceptExpander, logger))
	g.AddNode("schema_fetcher", "introspect graph labels/relationships", adapt(nodes.SchemaFetcher, logger))
	g.AddNode("entity_resolver", "match entities against the graph", adapt(nodes.EntityResolver, logger))
	g.AddNode("clarification_handler", "ask the user to disambiguate", adapt(nodes.ClarificationHandler, logger))
	g.AddNode("query_decomposer", "plan a multi-hop traversal", adapt(nodes.QueryDecomposer, logger))
	g.AddNode("cypher_generator", "synthesise the graph query", adapt(nodes.CypherGenerator, logger))
	g.AddNode("cache_writer", "backfill the cache entry with the generated query", adapt(nodes.CacheWriter, logger))
	g.AddNode("graph_executor", "run the query against the graph", adapt(nodes.GraphExecutor, logger))
	g.AddNode("response_generator", "produce the final natural-language answer", adapt(nodes.ResponseGenerator, logger))

	g.SetEntryPoint("intent_classifier")

	g.AddConditionalEdge("intent_classifier", routeAfterIntentClassification)

	g.AddEdge("ontology_update_handler", graph.END)
	g.AddEdge("community_summarizer", graph.END)

	g.AddConditionalEdge("cache_checker", routeAfterCacheCheck)

	// Structured fan-out/fan-in: entity_extractor and schema_fetcher run
	// in parallel downstream of concept_expander, joining at
	// entity_resolver (§5).
	g.AddEdge("concept_expander", "entity_extractor")
	g.AddEdge("concept_expander", "schema_fetcher")
	g.AddEdge("entity_extractor", "entity_resolver")
	g.AddEdge("schema_fetcher", "entity_resolver")

	g.AddConditionalEdge("entity_resolver", routeAfterEntityResolution)

	g.AddEdge("clarification_handler", graph.END)

	g.AddEdge("query_decomposer", "cypher_generator")
	g.AddConditionalEdge("cypher_generator", routeAfterCypherGeneration)
	g.AddEdge("cache_writer", "graph_executor")

	g.AddEdge("graph_executor", "response_generator")
	g.AddEdge("response_generator", graph.END)

	return g.Compile()
}

// routeAfterIntentClassification dispatches on the closed intent
// vocabulary: ontology_update and global_analysis bypass the mainline
// entity/query machinery entirely; an empty/unknown question routes
// straight to response-generation for the polite fallback; everything
// else enters the cache-check stage.
func routeAfterIntentClassification(ctx context.Context, state State) string {
	switch state.Intent {
	case IntentOntologyUpdate:
		return "ontology_update_handler"
	case IntentGlobalAnalysis:
		return "community_summarizer"
	case IntentUnknown:
		return "response_generator"
	default:
		return "cache_checker"
	}
}

// routeAfterCacheCheck skips entity extraction, expansion and
// resolution entirely on a cache hit: the DAG still routes through
// cypher_generator's cache-pass-through branch and on to the executor
// (§4.10's "always routes through the executor"), but never re-derives
// entities the cached query didn't need.
func routeAfterCacheCheck(ctx context.Context, state State) string {
	if state.SkipGeneration {
		return "cypher_generator"
	}
	return "concept_expander"
}

// routeAfterEntityResolution sends unresolved, non-aggregate-intent
// runs to clarification and everything else into query decomposition.
func routeAfterEntityResolution(ctx context.Context, state State) string {
	if hasUnresolvedEntity(state.ResolvedEntities) && !state.Intent.IsAggregate() {
		return "clarification_handler"
	}
	return "query_decomposer"
}

// routeAfterCypherGeneration sends an empty/errored query straight to
// response-generation for the apologetic path instead of running it.
// A freshly generated query still needs to pass through cache_writer
// to backfill the entry cache_checker stored on the miss; a cache-hit
// query that passed through unchanged has nothing new to backfill, so
// it goes straight to the executor.
func routeAfterCypherGeneration(ctx context.Context, state State) string {
	if state.CypherQuery == "" {
		return "response_generator"
	}
	if state.CacheHit {
		return "graph_executor"
	}
	return "cache_writer"
}

func hasUnresolvedEntity(resolved []ResolvedEntity) bool {
	for _, r := range resolved {
		if r.GraphID == "" {
			return true
		}
	}
	return false
}
