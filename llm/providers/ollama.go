package providers

import (
	"github.com/esglens/esglens/llm"
)

// OllamaProvider implements the OpenAI-compatible API served by Ollama,
// vLLM and similar local runtimes. It shares the request/response format
// with OpenAIProvider but defaults to the local endpoint.
type OllamaProvider struct {
	OpenAIProvider // shared request/response format
}

func init() {
	llm.RegisterProvider(&OllamaProvider{})
}

// Name returns the provider identifier.
func (o *OllamaProvider) Name() string {
	return "ollama"
}

// BuildURL constructs the chat completions endpoint.
func (o *OllamaProvider) BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	return o.OpenAIProvider.BuildURL(baseURL)
}
