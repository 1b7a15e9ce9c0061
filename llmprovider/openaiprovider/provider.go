// Package openaiprovider implements llmprovider.Provider directly atop
// github.com/sashabaranov/go-openai, the teacher's own direct (not
// langchaingo-routed) OpenAI dependency. Structured calls request
// OpenAI's JSON response format and decode the result into the
// llmprovider result types; free-text calls use plain chat completion.
//
// Grounded on llms/ernie/erniellm.go + llms/ernie/options.go's
// functional-options construction idiom (env-var default, New(opts...)
// validating the API key), generalised from a Baidu Qianfan client to
// a sashabaranov/go-openai client.
package openaiprovider

import (
	"fmt"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/graphrag-pipeline/corepipeline/llmprovider"
)

const (
	defaultLightModel     = openai.GPT4oMini
	defaultHeavyModel     = openai.GPT4o
	defaultEmbeddingModel = openai.SmallEmbedding3
)

// Provider is a llmprovider.Provider backed by the OpenAI chat and
// embedding APIs.
type Provider struct {
	client         *openai.Client
	lightModel     string
	heavyModel     string
	embeddingModel openai.EmbeddingModel
}

var _ llmprovider.Provider = (*Provider)(nil)

type options struct {
	apiKey         string
	baseURL        string
	httpClient     *http.Client
	lightModel     string
	heavyModel     string
	embeddingModel openai.EmbeddingModel
}

// Option configures a Provider at construction time.
type Option func(*options)

// WithAPIKey sets the OpenAI API key, overriding OPENAI_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(o *options) { o.apiKey = apiKey }
}

// WithBaseURL points the client at a non-default endpoint (an
// Azure/OpenAI-compatible gateway, or a test server).
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithHTTPClient overrides the client's transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) { o.httpClient = httpClient }
}

// WithLightModel overrides the model used for llmprovider.TierLight calls.
func WithLightModel(model string) Option {
	return func(o *options) { o.lightModel = model }
}

// WithHeavyModel overrides the model used for llmprovider.TierHeavy calls.
func WithHeavyModel(model string) Option {
	return func(o *options) { o.heavyModel = model }
}

// WithEmbeddingModel overrides the embedding model.
func WithEmbeddingModel(model openai.EmbeddingModel) Option {
	return func(o *options) { o.embeddingModel = model }
}

// New builds a Provider, defaulting the API key to OPENAI_API_KEY.
func New(opts ...Option) (*Provider, error) {
	o := &options{
		apiKey:         os.Getenv("OPENAI_API_KEY"),
		lightModel:     defaultLightModel,
		heavyModel:     defaultHeavyModel,
		embeddingModel: defaultEmbeddingModel,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.apiKey == "" {
		return nil, fmt.Errorf("openaiprovider: no API key; pass openaiprovider.WithAPIKey or set OPENAI_API_KEY")
	}

	cfg := openai.DefaultConfig(o.apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &Provider{
		client:         openai.NewClientWithConfig(cfg),
		lightModel:     o.lightModel,
		heavyModel:     o.heavyModel,
		embeddingModel: o.embeddingModel,
	}, nil
}
