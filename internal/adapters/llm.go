package adapters

import (
	"github.com/gage-technologies/mistral-go"

	"senti_ttt/internal/bootstrap"
)

// The chat endpoint is OpenAI compatible, so the mistral client talks to any
// provider serving /v1/chat/completions. Its HTTP timeout is
// SUGGESTION_TIMEOUT.
type LlmAdapter struct {
	Client *mistral.MistralClient
	Model  string
}

func NewLlmAdapter(cfg *bootstrap.Config) *LlmAdapter {
	return &LlmAdapter{
		Client: mistral.NewMistralClient(cfg.LlmApiKey, cfg.LlmEndpoint, 1, cfg.SuggestionTimeout),
		Model:  cfg.LlmModel,
	}
}
