// Package graphrepo is the GraphRepository facade: schema introspection,
// entity lookup, query execution, vector search and concept/proposal
// persistence against a property-graph store. FalkorDBGraph is grounded
// on the teacher's rag/store/falkordb*.go wire-protocol helpers
// (GRAPH.QUERY over go-redis); MemoryGraph is an in-process test double
// grounded on the teacher's rag/store/knowledge_graph.go.
package graphrepo

import (
	"context"
	"fmt"
	"regexp"
)

// Node is the wire shape §6 specifies for a graph node result.
type Node struct {
	ID         string
	ElementID  string
	Labels     []string
	Properties map[string]any
}

// Relationship is the wire shape §6 specifies for a relationship result.
type Relationship struct {
	ID         string
	Type       string
	StartID    string
	EndID      string
	Properties map[string]any
}

// Path is the wire shape §6 specifies for a traversal result.
type Path struct {
	Nodes         []Node
	Relationships []Relationship
}

// SchemaInfo is SchemaFetcher's introspection result.
type SchemaInfo struct {
	Labels                 []string
	RelationshipTypes      []string
	NodeProperties         map[string][]string
	RelationshipProperties map[string][]string
	Indexes                []string
	Constraints            []string
}

// QueryResult is GraphExecutor's raw, pre-serialisation result: every
// row is a map from the Cypher RETURN alias to a Node, Relationship,
// Path, or a scalar/list/map value.
type QueryResult struct {
	Rows []map[string]any
}

// Repository is the GraphRepository facade §2 and §6 describe.
type Repository interface {
	// Introspection
	FetchSchema(ctx context.Context) (SchemaInfo, error)

	// Query execution. query must already be parameter-checked by
	// ValidateIdentifier at every identifier position; Execute itself
	// only forwards query+parameters to the store.
	Execute(ctx context.Context, query string, parameters map[string]any) (QueryResult, error)

	// Entity / name lookup used by EntityResolver's three strategies.
	FindByExactName(ctx context.Context, label, name string) (Node, bool, error)
	FindByCollapsedWhitespace(ctx context.Context, label, name string) (Node, bool, error)
	FindByStrippedSuffix(ctx context.Context, label, name string, suffixes []string) (Node, bool, error)

	// Vector similarity search over a named index. The pipeline's caches
	// do not call it: CacheChecker looks up querycache, and the
	// CommunitySummarizer cache matches questions by keyword overlap.
	VectorSearch(ctx context.Context, indexName string, embedding []float32, k int) ([]VectorMatch, error)

	// Generic upsert/CRUD used by OntologyLearner applying an approved
	// proposal: ensure a concept node exists, then connect it.
	MergeNode(ctx context.Context, label string, matchProps, setProps map[string]any) (Node, error)
	MergeRelationship(ctx context.Context, fromID, toID, relType string, props map[string]any) (Relationship, error)

	// ConceptSource (see ontology.ConceptSource) — lets graph-mode and
	// hybrid-mode ontology loaders query the live concept graph.
	CanonicalConcept(ctx context.Context, term, category string) (string, error)
	ConceptSynonyms(ctx context.Context, term, category string) ([]string, error)
	ConceptChildren(ctx context.Context, concept, category string) ([]string, error)
}

// VectorMatch is one result row from VectorSearch.
type VectorMatch struct {
	Node  Node
	Score float64
}

// identifierPattern enforces §6's Cypher-injection defence: every label,
// relationship type, and property name must be alphanumeric, underscore,
// or a Unicode letter. This is strictly wider than the teacher's
// falkordb.go sanitizer (which only excludes `[^a-zA-Z0-9_]`, rejecting
// Korean identifiers the domain actually uses) and strictly narrower
// than "anything goes" — no quotes, no Cypher keywords injected via a
// label name.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_\p{L}]+$`)

// ErrInvalidIdentifier is returned by ValidateIdentifier.
type ErrInvalidIdentifier struct {
	Identifier string
}

func (e *ErrInvalidIdentifier) Error() string {
	return fmt.Sprintf("graphrepo: invalid identifier %q: must match [A-Za-z0-9_\\p{L}]+", e.Identifier)
}

// ValidateIdentifier rejects any label, relationship type or property
// name containing a character outside [A-Za-z0-9_\p{L}], before the
// identifier is ever interpolated into query text.
func ValidateIdentifier(id string) error {
	if id == "" || !identifierPattern.MatchString(id) {
		return &ErrInvalidIdentifier{Identifier: id}
	}
	return nil
}
