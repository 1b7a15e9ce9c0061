// Package langchainprovider adapts langchaingo's llms.Model and
// embeddings.Embedder to llmprovider.Provider, in the style of
// rag/adapters.go's "LangChainX adapts langchaingo's X to our Y
// interface" wrappers. Unlike openaiprovider, which talks to a single
// named vendor API, this adapter works with any langchaingo-compatible
// llms.Model — including the teacher's own llms/ernie.LLM, which
// already satisfies that interface — so it doubles as the generic
// fallback backend for any model langchaingo supports.
package langchainprovider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
)

// Provider is a llmprovider.Provider backed by a langchaingo llms.Model
// for generation and a langchaingo embeddings.Embedder for embeddings.
// LightModel and HeavyModel may be the same value when the underlying
// model doesn't distinguish tiers (e.g. ernie.LLM, which is configured
// with a single model name at construction).
type Provider struct {
	LightModel llms.Model
	HeavyModel llms.Model
	Embedder   embeddings.Embedder
}

var _ llmprovider.Provider = (*Provider)(nil)

// New builds a Provider. heavyModel may be nil, in which case it
// defaults to lightModel (the common case for a single-deployment
// model like ernie.LLM).
func New(lightModel, heavyModel llms.Model, embedder embeddings.Embedder) *Provider {
	if heavyModel == nil {
		heavyModel = lightModel
	}
	return &Provider{LightModel: lightModel, HeavyModel: heavyModel, Embedder: embedder}
}

func (p *Provider) modelFor(tier llmprovider.Tier) llms.Model {
	if tier == llmprovider.TierHeavy {
		return p.HeavyModel
	}
	return p.LightModel
}

// jsonComplete prompts model with a system+user message pair and
// decodes the response content as JSON into out. langchaingo's Model
// interface has no first-class JSON-mode switch the way OpenAI's REST
// API does, so the system prompt itself instructs the model to reply
// with JSON only; this mirrors how llms/ernie/erniellm.go drives
// GenerateContent with plain message content since the Baidu Qianfan
// API has no response-format parameter either.
func jsonComplete(ctx context.Context, model llms.Model, system, user string, out any) error {
	resp, err := model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	})
	if err != nil {
		return fmt.Errorf("langchainprovider: generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("langchainprovider: generate content returned no choices")
	}
	content := extractJSON(resp.Choices[0].Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("langchainprovider: decoding JSON response: %w", err)
	}
	return nil
}

// extractJSON trims any leading/trailing prose a model might add around
// a JSON object despite being instructed not to, by slicing from the
// first '{' to the last '}'.
func extractJSON(content string) string {
	start := -1
	end := -1
	for i, r := range content {
		if r == '{' && start == -1 {
			start = i
		}
		if r == '}' {
			end = i
		}
	}
	if start == -1 || end == -1 || end < start {
		return content
	}
	return content[start : end+1]
}

func complete(ctx context.Context, model llms.Model, system, user string) (string, error) {
	resp, err := model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	})
	if err != nil {
		return "", fmt.Errorf("langchainprovider: generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("langchainprovider: generate content returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.Embedder == nil {
		return nil, fmt.Errorf("langchainprovider: no embedder configured")
	}
	vec, err := p.Embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("langchainprovider: embed query: %w", err)
	}
	return vec, nil
}
