package openaiprovider

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: p.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("openaiprovider: create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openaiprovider: embeddings response returned no data")
	}
	return resp.Data[0].Embedding, nil
}
