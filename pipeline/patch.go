package pipeline

// Patch is the partial update a Node returns: only the fields a node
// actually touched are set, everything else is left at its zero value
// and ignored by merge. Append-only fields (Messages, ExecutionPath)
// are additive; every other field overwrites.
type Patch struct {
	Messages []Message

	Intent             *Intent
	IntentConfidence   *float64
	Entities           map[string][]string
	ExpandedEntities   map[string][]string
	ResolvedEntities   []ResolvedEntity
	UnresolvedEntities []UnresolvedEntity
	QueryPlan          *QueryPlan

	ExpandedEntitiesByOriginal map[string]map[string][]string
	OriginalEntities           map[string][]string
	ExpansionCount             *int
	ExpansionStrategy          *ExpansionStrategy

	Schema           *SchemaSnapshot
	CypherQuery      *string
	CypherParameters map[string]any
	GraphResults     []map[string]any
	ResultCount      *int

	Response *string

	Error         *string
	ExecutionPath []string

	QuestionEmbedding []float32
	CacheHit          *bool
	CacheScore        *float64
	SkipGeneration    *bool

	UserContext *UserContext
}

// strPtr and similar helpers return a pointer to their argument, for the
// pointer fields of a Patch. They are unexported, so only code in this
// package can use them.
func strPtr(s string) *string                            { return &s }
func floatPtr(f float64) *float64                        { return &f }
func intPtr(i int) *int                                  { return &i }
func boolPtr(b bool) *bool                               { return &b }
func intentPtr(i Intent) *Intent                         { return &i }
func strategyPtr(s ExpansionStrategy) *ExpansionStrategy { return &s }
