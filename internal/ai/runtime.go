package ai

import (
	"context"
	"strings"
)

// Runtime is implemented by chat-completion backends such as OpenRouter and
// local runtimes (Ollama).
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// NormalizeProvider maps aliases to a registered provider name.
func NormalizeProvider(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "openrouter", "openai", "anthropic", "google", "gemini", "meta", "llama":
		return ProviderOpenRouter
	case "ollama", "local":
		return ProviderOllama
	}
	return strings.ToLower(strings.TrimSpace(name))
}
