package langchainprovider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
)

// fakeModel is a scripted llms.Model test double: every GenerateContent
// call returns the next entry of responses in order.
type fakeModel struct {
	responses []string
	calls     int
}

var _ llms.Model = (*fakeModel)(nil)

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	panic("not used by langchainprovider")
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	content := m.responses[m.calls]
	m.calls++
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}, nil
}

// fakeEmbedder is a scripted embeddings.Embedder test double.
type fakeEmbedder struct {
	vector []float32
}

func (e *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vector
	}
	return out, nil
}

func (e *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.vector, nil
}

func TestNew_DefaultsHeavyModelToLight(t *testing.T) {
	model := &fakeModel{}
	p := New(model, nil, nil)
	assert.Same(t, model, p.LightModel)
	assert.Same(t, model, p.HeavyModel)
}

func TestClassifyIntentAndExtract(t *testing.T) {
	model := &fakeModel{responses: []string{
		`{"intent":"person_lookup","confidence":0.91,"entities":[{"type":"person","value":"Alice","normalized":"alice"}]}`,
	}}
	p := New(model, model, nil)

	result, err := p.ClassifyIntentAndExtract(context.Background(), "Who is Alice?", llmprovider.TierLight)
	require.NoError(t, err)
	assert.Equal(t, "person_lookup", result.Intent)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "Alice", result.Entities[0].Value)
}

func TestClassifyIntentAndExtract_TrimsSurroundingProse(t *testing.T) {
	model := &fakeModel{responses: []string{
		"Sure, here is the JSON: {\"intent\":\"out_of_scope\",\"confidence\":0.4,\"entities\":[]} Hope that helps!",
	}}
	p := New(model, model, nil)

	result, err := p.ClassifyIntentAndExtract(context.Background(), "What's the weather?", llmprovider.TierLight)
	require.NoError(t, err)
	assert.Equal(t, "out_of_scope", result.Intent)
}

func TestDecomposeQuery(t *testing.T) {
	model := &fakeModel{responses: []string{
		`{"is_multi_hop":false,"hop_count":1,"hops":[{"description":"d","relationship":"r","direction":"outgoing","filter":""}],"final_return":"p","explanation":"e"}`,
	}}
	p := New(model, nil, nil)

	result, err := p.DecomposeQuery(context.Background(), "Who is Alice?", llmprovider.TierHeavy)
	require.NoError(t, err)
	assert.False(t, result.IsMultiHop)
	require.Len(t, result.Hops, 1)
}

func TestGenerateCypher(t *testing.T) {
	model := &fakeModel{responses: []string{
		`{"query":"MATCH (p:Person {name: $name}) RETURN p","parameters":{"name":"Alice"},"explanation":"direct lookup"}`,
	}}
	p := New(model, nil, nil)

	result, err := p.GenerateCypher(context.Background(), "Who is Alice?", nil, nil, nil, llmprovider.TierLight)
	require.NoError(t, err)
	assert.Contains(t, result.Query, "$name")
}

func TestOntologyAnalysis(t *testing.T) {
	model := &fakeModel{responses: []string{
		`{"type":"NEW_SYNONYM","action":"treat as synonym","parent":"","canonical":"쿠버네티스","confidence":0.93}`,
	}}
	p := New(model, nil, nil)

	result, err := p.OntologyAnalysis(context.Background(), "K8s", "skills", "question")
	require.NoError(t, err)
	assert.Equal(t, "NEW_SYNONYM", result.Type)
}

func TestOntologyUpdateParser(t *testing.T) {
	model := &fakeModel{responses: []string{
		`{"action":"add_synonym","term":"K8s","category":"skills","target":"쿠버네티스","relation_type":"","confidence":0.9,"reasoning":"r"}`,
	}}
	p := New(model, nil, nil)

	result, err := p.OntologyUpdateParser(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "add_synonym", result.Action)
}

func TestGenerateResponse(t *testing.T) {
	model := &fakeModel{responses: []string{"Alice is on the Platform team."}}
	p := New(model, nil, nil)

	text, err := p.GenerateResponse(context.Background(), "Who is Alice?", []map[string]any{{"name": "Alice"}}, "MATCH (p) RETURN p")
	require.NoError(t, err)
	assert.Contains(t, text, "Alice")
}

func TestGenerateClarification(t *testing.T) {
	model := &fakeModel{responses: []string{"What do you mean by K8s?"}}
	p := New(model, nil, nil)

	text, err := p.GenerateClarification(context.Background(), "q", []string{"K8s"})
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

func TestCommunitySummary(t *testing.T) {
	model := &fakeModel{responses: []string{"The team has 12 members."}}
	p := New(model, nil, nil)

	text, err := p.CommunitySummary(context.Background(), "context", "How big is the team?")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

func TestEmbed(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	p := New(&fakeModel{}, nil, embedder)

	vec, err := p.Embed(context.Background(), "FastAPI")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
}

func TestEmbed_NoEmbedderConfigured(t *testing.T) {
	p := New(&fakeModel{}, nil, nil)

	_, err := p.Embed(context.Background(), "FastAPI")
	assert.Error(t, err)
}
