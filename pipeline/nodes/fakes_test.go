package nodes

import (
	"context"
	"errors"

	"github.com/graphrag-pipeline/corepipeline/graphrepo"
	"github.com/graphrag-pipeline/corepipeline/llmprovider"
)

// fakeLLM is a scriptable llmprovider.Provider test double: each
// operation returns its configured result/error, defaulting to a
// zero-value success so tests only need to set what they exercise.
type fakeLLM struct {
	intentResult llmprovider.IntentResult
	intentErr    error

	decomposeResult llmprovider.DecomposeResult
	decomposeErr    error

	cypherResult llmprovider.CypherResult
	cypherErr    error

	response    string
	responseErr error

	clarification    string
	clarificationErr error

	communitySummary string
	communityErr     error

	ontologyAnalysis llmprovider.OntologyAnalysis
	ontologyErr      error

	updateRequest llmprovider.OntologyUpdateRequest
	updateErr     error

	embedding []float32
	embedErr  error
}

func (f *fakeLLM) ClassifyIntentAndExtract(ctx context.Context, question string, tier llmprovider.Tier) (llmprovider.IntentResult, error) {
	return f.intentResult, f.intentErr
}

func (f *fakeLLM) DecomposeQuery(ctx context.Context, question string, tier llmprovider.Tier) (llmprovider.DecomposeResult, error) {
	return f.decomposeResult, f.decomposeErr
}

func (f *fakeLLM) GenerateCypher(ctx context.Context, question string, schema any, entities map[string][]string, plan *llmprovider.DecomposeResult, tier llmprovider.Tier) (llmprovider.CypherResult, error) {
	return f.cypherResult, f.cypherErr
}

func (f *fakeLLM) GenerateResponse(ctx context.Context, question string, results []map[string]any, cypher string) (string, error) {
	return f.response, f.responseErr
}

func (f *fakeLLM) GenerateClarification(ctx context.Context, question string, unresolved []string) (string, error) {
	return f.clarification, f.clarificationErr
}

func (f *fakeLLM) CommunitySummary(ctx context.Context, context, question string) (string, error) {
	return f.communitySummary, f.communityErr
}

func (f *fakeLLM) OntologyAnalysis(ctx context.Context, term, category, question string) (llmprovider.OntologyAnalysis, error) {
	return f.ontologyAnalysis, f.ontologyErr
}

func (f *fakeLLM) OntologyUpdateParser(ctx context.Context, question string) (llmprovider.OntologyUpdateRequest, error) {
	return f.updateRequest, f.updateErr
}

func (f *fakeLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.embedding, f.embedErr
}

var errFake = errors.New("fake: failure")

// fakeRepo is a scriptable graphrepo.Repository test double.
type fakeRepo struct {
	schema    graphrepo.SchemaInfo
	schemaErr error

	execResult graphrepo.QueryResult
	execErr    error

	exact      map[string]graphrepo.Node
	collapsed  map[string]graphrepo.Node
	stripped   map[string]graphrepo.Node
	lookupErr  error

	mergeNodeResult graphrepo.Node
	mergeNodeErr    error
	mergeRelErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		exact:     map[string]graphrepo.Node{},
		collapsed: map[string]graphrepo.Node{},
		stripped:  map[string]graphrepo.Node{},
	}
}

func (f *fakeRepo) FetchSchema(ctx context.Context) (graphrepo.SchemaInfo, error) {
	return f.schema, f.schemaErr
}

func (f *fakeRepo) Execute(ctx context.Context, query string, parameters map[string]any) (graphrepo.QueryResult, error) {
	return f.execResult, f.execErr
}

func (f *fakeRepo) FindByExactName(ctx context.Context, label, name string) (graphrepo.Node, bool, error) {
	if f.lookupErr != nil {
		return graphrepo.Node{}, false, f.lookupErr
	}
	n, ok := f.exact[label+"|"+name]
	return n, ok, nil
}

func (f *fakeRepo) FindByCollapsedWhitespace(ctx context.Context, label, name string) (graphrepo.Node, bool, error) {
	if f.lookupErr != nil {
		return graphrepo.Node{}, false, f.lookupErr
	}
	n, ok := f.collapsed[label+"|"+name]
	return n, ok, nil
}

func (f *fakeRepo) FindByStrippedSuffix(ctx context.Context, label, name string, suffixes []string) (graphrepo.Node, bool, error) {
	if f.lookupErr != nil {
		return graphrepo.Node{}, false, f.lookupErr
	}
	n, ok := f.stripped[label+"|"+name]
	return n, ok, nil
}

func (f *fakeRepo) VectorSearch(ctx context.Context, indexName string, embedding []float32, k int) ([]graphrepo.VectorMatch, error) {
	return nil, nil
}

func (f *fakeRepo) MergeNode(ctx context.Context, label string, matchProps, setProps map[string]any) (graphrepo.Node, error) {
	return f.mergeNodeResult, f.mergeNodeErr
}

func (f *fakeRepo) MergeRelationship(ctx context.Context, fromID, toID, relType string, props map[string]any) (graphrepo.Relationship, error) {
	return graphrepo.Relationship{}, f.mergeRelErr
}

func (f *fakeRepo) CanonicalConcept(ctx context.Context, term, category string) (string, error) {
	return term, nil
}

func (f *fakeRepo) ConceptSynonyms(ctx context.Context, term, category string) ([]string, error) {
	return []string{term}, nil
}

func (f *fakeRepo) ConceptChildren(ctx context.Context, concept, category string) ([]string, error) {
	return nil, nil
}

var _ graphrepo.Repository = (*fakeRepo)(nil)
