package openaiprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatResponse builds a minimal OpenAI-shaped chat completion response
// carrying content as the sole choice's message.
func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func embeddingResponse(vector []float32) map[string]any {
	return map[string]any{
		"object": "list",
		"model":  "text-embedding-3-small",
		"data": []map[string]any{
			{"object": "embedding", "index": 0, "embedding": vector},
		},
	}
}

// newTestProvider spins up an httptest server returning body for every
// request and wires a Provider to it.
func newTestProvider(t *testing.T, body map[string]any) *Provider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(server.Close)

	p, err := New(WithAPIKey("test-key"), WithBaseURL(server.URL+"/v1"))
	require.NoError(t, err)
	return p
}

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := New()
	assert.Error(t, err)
}

func TestClassifyIntentAndExtract(t *testing.T) {
	p := newTestProvider(t, chatResponse(`{"intent":"person_lookup","confidence":0.91,"entities":[{"type":"person","value":"Alice","normalized":"alice"}]}`))

	result, err := p.ClassifyIntentAndExtract(context.Background(), "Who is Alice?", "light")
	require.NoError(t, err)
	assert.Equal(t, "person_lookup", result.Intent)
	assert.InDelta(t, 0.91, result.Confidence, 0.001)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "Alice", result.Entities[0].Value)
}

func TestDecomposeQuery(t *testing.T) {
	p := newTestProvider(t, chatResponse(`{"is_multi_hop":true,"hop_count":2,"hops":[{"description":"find team","relationship":"MEMBER_OF","direction":"outgoing","filter":""},{"description":"find manager","relationship":"REPORTS_TO","direction":"outgoing","filter":""}],"final_return":"manager","explanation":"two hops"}`))

	result, err := p.DecomposeQuery(context.Background(), "Who manages Alice's team?", "heavy")
	require.NoError(t, err)
	assert.True(t, result.IsMultiHop)
	assert.Equal(t, 2, result.HopCount)
	require.Len(t, result.Hops, 2)
	assert.Equal(t, "MEMBER_OF", result.Hops[0].Relationship)
}

func TestGenerateCypher(t *testing.T) {
	p := newTestProvider(t, chatResponse(`{"query":"MATCH (p:Person {name: $name}) RETURN p","parameters":{"name":"Alice"},"explanation":"direct lookup"}`))

	result, err := p.GenerateCypher(context.Background(), "Who is Alice?", map[string]any{"labels": []string{"Person"}}, nil, nil, "light")
	require.NoError(t, err)
	assert.Contains(t, result.Query, "$name")
	assert.Equal(t, "Alice", result.Parameters["name"])
}

func TestOntologyAnalysis(t *testing.T) {
	p := newTestProvider(t, chatResponse(`{"type":"NEW_SYNONYM","action":"treat as synonym","parent":"","canonical":"쿠버네티스","confidence":0.93}`))

	result, err := p.OntologyAnalysis(context.Background(), "K8s", "skills", "K8s 경험 있으신가요?")
	require.NoError(t, err)
	assert.Equal(t, "NEW_SYNONYM", result.Type)
	assert.Equal(t, "쿠버네티스", result.Canonical)
}

func TestOntologyUpdateParser(t *testing.T) {
	p := newTestProvider(t, chatResponse(`{"action":"add_synonym","term":"K8s","category":"skills","target":"쿠버네티스","relation_type":"","confidence":0.9,"reasoning":"common abbreviation"}`))

	result, err := p.OntologyUpdateParser(context.Background(), "K8s should be a synonym for 쿠버네티스")
	require.NoError(t, err)
	assert.Equal(t, "add_synonym", result.Action)
	assert.Equal(t, "쿠버네티스", result.Target)
}

func TestGenerateResponse(t *testing.T) {
	p := newTestProvider(t, chatResponse("Alice is a backend engineer on the Platform team."))

	text, err := p.GenerateResponse(context.Background(), "Who is Alice?", []map[string]any{{"name": "Alice"}}, "MATCH (p:Person) RETURN p")
	require.NoError(t, err)
	assert.Contains(t, text, "Alice")
}

func TestGenerateClarification(t *testing.T) {
	p := newTestProvider(t, chatResponse("Could you clarify what you mean by 'K8s'?"))

	text, err := p.GenerateClarification(context.Background(), "Does anyone know K8s?", []string{"K8s"})
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

func TestCommunitySummary(t *testing.T) {
	p := newTestProvider(t, chatResponse("The Platform team has 12 members across 3 sub-teams."))

	text, err := p.CommunitySummary(context.Background(), "community stats", "How big is the Platform team?")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

func TestEmbed(t *testing.T) {
	p := newTestProvider(t, embeddingResponse([]float32{0.1, 0.2, 0.3}))

	vec, err := p.Embed(context.Background(), "FastAPI")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}
