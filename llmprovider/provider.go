// Package llmprovider declares the LLM operations the pipeline nodes
// call, with three concrete backends: openaiprovider (sashabaranov/
// go-openai), langchainprovider (tmc/langchaingo, adapted from the
// teacher's rag/adapters.go), and ernieprovider (adapted from the
// teacher's llms/ernie, a bespoke non-langchaingo HTTP client).
package llmprovider

import "context"

// Tier selects which model deployment answers a call; CypherGenerator
// and the classifier pick light for cheap/fast calls and heavy for
// multi-hop or high-stakes generation.
type Tier string

const (
	TierLight Tier = "light"
	TierHeavy Tier = "heavy"
)

// ExtractedEntity mirrors pipeline.ExtractedEntity without importing
// the pipeline package, keeping llmprovider a leaf dependency.
type ExtractedEntity struct {
	Type       string
	Value      string
	Normalized string
}

// IntentResult is classify-intent-and-extract's output contract.
type IntentResult struct {
	Intent     string
	Confidence float64
	Entities   []ExtractedEntity
}

// QueryHop is one edge of a decomposed multi-hop plan.
type QueryHop struct {
	Description  string
	Relationship string
	Direction    string
	Filter       string
}

// DecomposeResult is decompose-query's output contract.
type DecomposeResult struct {
	IsMultiHop  bool
	HopCount    int
	Hops        []QueryHop
	FinalReturn string
	Explanation string
}

// CypherResult is generate-cypher's output contract.
type CypherResult struct {
	Query       string
	Parameters  map[string]any
	Explanation string
}

// OntologyAnalysis is ontology-analysis's output contract, used by the
// background learner to classify an unresolved term.
type OntologyAnalysis struct {
	Type       string // NEW_CONCEPT | NEW_SYNONYM | NEW_RELATION
	Action     string
	Parent     string
	Canonical  string
	Confidence float64
}

// OntologyUpdateRequest is ontology-update-parser's output contract,
// used by the chat-initiated foreground path.
type OntologyUpdateRequest struct {
	Action       string // add_concept | add_synonym | add_relation
	Term         string
	Category     string
	Target       string
	RelationType string
	Confidence   float64
	Reasoning    string
}

// Provider is the full set of LLM operations §6 enumerates. Every
// operation takes a context so HTTP calls respect the caller's
// deadline and cancellation per §5's cancellation-propagation rule.
type Provider interface {
	ClassifyIntentAndExtract(ctx context.Context, question string, tier Tier) (IntentResult, error)
	DecomposeQuery(ctx context.Context, question string, tier Tier) (DecomposeResult, error)
	GenerateCypher(ctx context.Context, question string, schema any, entities map[string][]string, plan *DecomposeResult, tier Tier) (CypherResult, error)
	GenerateResponse(ctx context.Context, question string, results []map[string]any, cypher string) (string, error)
	GenerateClarification(ctx context.Context, question string, unresolved []string) (string, error)
	CommunitySummary(ctx context.Context, context, question string) (string, error)
	OntologyAnalysis(ctx context.Context, term, category, question string) (OntologyAnalysis, error)
	OntologyUpdateParser(ctx context.Context, question string) (OntologyUpdateRequest, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
