package index

import (
	"fmt"
	"os"

	"github.com/philippgille/chromem-go"
)

// NewEmbedding builds the embedding function for the configured
// provider. The endpoint is optional for both providers: OpenAI falls
// back to its public API and ollama to the local daemon.
func NewEmbedding(provider, model, endpoint string) (chromem.EmbeddingFunc, error) {
	switch provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		if endpoint != "" {
			return chromem.NewEmbeddingFuncOpenAICompat(endpoint, apiKey, model, nil), nil
		}
		return chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI(model)), nil

	case "ollama":
		return chromem.NewEmbeddingFuncOllama(model, endpoint), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}
