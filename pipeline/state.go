// Package pipeline wires the Graph-RAG query pipeline's nodes into a
// graph.StateGraph[State] DAG: intent classification, entity
// resolution, Cypher synthesis, graph execution and response
// generation, plus the cache-checker and ontology-update side paths.
package pipeline

import "time"

// Intent is a closed vocabulary the classifier normalises into.
type Intent string

const (
	IntentPersonnelSearch    Intent = "personnel_search"
	IntentProjectMatching    Intent = "project_matching"
	IntentRelationshipSearch Intent = "relationship_search"
	IntentOrgAnalysis        Intent = "org_analysis"
	IntentMentoringNetwork   Intent = "mentoring_network"
	IntentCertificateSearch  Intent = "certificate_search"
	IntentPathAnalysis       Intent = "path_analysis"
	IntentOntologyUpdate     Intent = "ontology_update"
	IntentGlobalAnalysis     Intent = "global_analysis"
	IntentUnknown            Intent = "unknown"
)

// aggregateIntents proceed with partial entity resolution rather than
// routing to ClarificationHandler.
var aggregateIntents = map[Intent]bool{
	IntentGlobalAnalysis:    true,
	IntentOrgAnalysis:       true,
	IntentMentoringNetwork:  true,
	IntentCertificateSearch: true,
}

// IsAggregate reports whether intent tolerates partial resolution.
func (i Intent) IsAggregate() bool {
	return aggregateIntents[i]
}

// ExpansionStrategy records which ConceptExpander profile produced
// expandedEntities, for auditing.
type ExpansionStrategy string

const (
	ExpansionStrict ExpansionStrategy = "strict"
	ExpansionNormal ExpansionStrategy = "normal"
	ExpansionBroad  ExpansionStrategy = "broad"
)

// Message is one turn of chat history, append-only across a thread.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// ExtractedEntity is one entity surfaced by IntentClassifier before
// resolution against the graph.
type ExtractedEntity struct {
	Type       string
	Value      string
	Normalized string
}

// ResolvedEntity is a graph match (or non-match) for an extracted
// surface form. GraphID == "" denotes an unresolved entity.
type ResolvedEntity struct {
	GraphID       string
	Labels        []string
	CanonicalName string
	Properties    map[string]any
	MatchScore    float64
	OriginalValue string
}

// UnresolvedEntity is a surface form EntityResolver could not match,
// fed to the background OntologyLearner.
type UnresolvedEntity struct {
	Term         string
	Category     string
	Question     string
	TimestampUTC time.Time
}

// QueryHop is one edge traversal in a decomposed multi-hop query plan.
type QueryHop struct {
	Description  string
	Relationship string
	Direction    string // "outgoing" or "incoming"
	Filter       string
}

// QueryPlan is QueryDecomposer's output.
type QueryPlan struct {
	IsMultiHop  bool
	HopCount    int
	Hops        []QueryHop
	FinalReturn string
	Explanation string
}

// SchemaSnapshot is SchemaFetcher's cached introspection result.
type SchemaSnapshot struct {
	Labels                 []string
	RelationshipTypes      []string
	NodeProperties         map[string][]string
	RelationshipProperties map[string][]string
	Indexes                []string
	Constraints            []string
	FetchedAt              time.Time
}

// UserContext carries the access-control scope CypherGenerator must
// respect when filtering schema and injecting scope predicates.
type UserContext struct {
	Roles           []string
	DepartmentScope string
}

// State is the typed structured value threaded through every pipeline
// node, corresponding one-to-one with the duck-typed state map the
// source pipeline carries.
type State struct {
	// Input
	Messages  []Message
	Question  string
	SessionID string
	ThreadID  string

	// Query understanding
	Intent             Intent
	IntentConfidence   float64
	Entities           map[string][]string
	ExpandedEntities   map[string][]string
	ResolvedEntities   []ResolvedEntity
	UnresolvedEntities []UnresolvedEntity
	QueryPlan          *QueryPlan

	// Concept-expansion provenance
	ExpandedEntitiesByOriginal map[string]map[string][]string
	OriginalEntities           map[string][]string
	ExpansionCount             int
	ExpansionStrategy          ExpansionStrategy

	// Graph retrieval
	Schema           *SchemaSnapshot
	CypherQuery      string
	CypherParameters map[string]any
	GraphResults     []map[string]any
	ResultCount      int

	// Response
	Response string

	// Metadata / error handling
	Error         string
	ExecutionPath []string

	// Vector search / cache
	QuestionEmbedding []float32
	CacheHit          bool
	CacheScore        float64
	SkipGeneration    bool

	// Access control
	UserContext *UserContext
}

// NewState seeds a State for a fresh turn.
func NewState(question, sessionID, threadID string) State {
	return State{
		Question:         question,
		SessionID:        sessionID,
		ThreadID:         threadID,
		Entities:         map[string][]string{},
		ExpandedEntities: map[string][]string{},
		CypherParameters: map[string]any{},
	}
}
