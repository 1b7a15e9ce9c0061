// Package ernieprovider wires the teacher's bespoke Baidu Qianfan
// (Ernie) client — llms/ernie, a non-langchaingo HTTP client built on
// client.New(opts...) + CreateCompletion/CreateEmbedding — into
// llmprovider.Provider. Since ernie.LLM already implements
// langchaingo's llms.Model, the adaptation is a thin composition over
// langchainprovider rather than a second hand-rolled JSON-prompting
// layer: this package's only job is constructing the Ernie client(s)
// and its embedder, demonstrating a second LLM vendor with its own
// auth/request shape behind the same Provider contract.
package ernieprovider

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
	"github.com/graphrag-pipeline/corepipeline/llmprovider/langchainprovider"
	"github.com/graphrag-pipeline/corepipeline/llms/ernie"
)

// New builds a llmprovider.Provider backed by Ernie. lightOpts
// configures the model used for llmprovider.TierLight calls; heavyOpts
// configures the model used for llmprovider.TierHeavy calls (pass nil
// to reuse the light model for both tiers, the common single-deployment
// case). embedOpts configures the client used for Embed.
func New(lightOpts, heavyOpts, embedOpts []ernie.Option) (llmprovider.Provider, error) {
	lightLLM, err := ernie.New(lightOpts...)
	if err != nil {
		return nil, fmt.Errorf("ernieprovider: building light model: %w", err)
	}

	heavyLLM := lightLLM
	if heavyOpts != nil {
		heavyLLM, err = ernie.New(heavyOpts...)
		if err != nil {
			return nil, fmt.Errorf("ernieprovider: building heavy model: %w", err)
		}
	}

	embedLLM := lightLLM
	if embedOpts != nil {
		embedLLM, err = ernie.New(embedOpts...)
		if err != nil {
			return nil, fmt.Errorf("ernieprovider: building embedding model: %w", err)
		}
	}

	embedder, err := embeddings.NewEmbedder(embedLLM)
	if err != nil {
		return nil, fmt.Errorf("ernieprovider: building embedder: %w", err)
	}

	return langchainprovider.New(lightLLM, heavyLLM, embedder), nil
}
