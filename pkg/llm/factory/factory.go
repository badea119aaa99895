package factory

import (
	"fmt"
	"net/http"

	"aura-be/pkg/llm"
	"aura-be/pkg/llm/gemini"
	"aura-be/pkg/llm/openai"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewLLMProvider builds a provider by name. For "openai" against Gemini,
// pass the Gemini base URL with the "/openai" suffix.
func NewLLMProvider(providerType, apiKey, baseURL, modelName string, client *http.Client) (llm.LLMProvider, error) {
	switch providerType {
	case ProviderGemini:
		return gemini.NewGeminiProvider(apiKey, baseURL, modelName, client), nil
	case ProviderOpenAI:
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName, client), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
