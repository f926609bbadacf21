package ai

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// DefaultModel is used when neither flags nor config choose a model.
const DefaultModel = "openai/gpt-3.5-turbo"

// ModelInfo holds context size and illustrative pricing for cost warnings.
// Prices should be verified against the provider before relying on them.
type ModelInfo struct {
	Name          string  `json:"name"`
	Provider      string  `json:"provider,omitempty"`
	ContextTokens int     `json:"context_tokens"`
	InputPerK     float64 `json:"input_per_k"`
	OutputPerK    float64 `json:"output_per_k"`
}

var (
	catalogMu sync.RWMutex
	models    = map[string]ModelInfo{
		"openai/gpt-3.5-turbo":             {Name: "openai/gpt-3.5-turbo", Provider: ProviderOpenRouter, ContextTokens: 16385, InputPerK: 0.0005, OutputPerK: 0.0015},
		"openai/gpt-4o-mini":               {Name: "openai/gpt-4o-mini", Provider: ProviderOpenRouter, ContextTokens: 128000, InputPerK: 0.00015, OutputPerK: 0.0006},
		"openai/gpt-4o":                    {Name: "openai/gpt-4o", Provider: ProviderOpenRouter, ContextTokens: 128000, InputPerK: 0.0025, OutputPerK: 0.01},
		"anthropic/claude-3-haiku":         {Name: "anthropic/claude-3-haiku", Provider: ProviderOpenRouter, ContextTokens: 200000, InputPerK: 0.00025, OutputPerK: 0.00125},
		"google/gemini-flash-1.5":          {Name: "google/gemini-flash-1.5", Provider: ProviderOpenRouter, ContextTokens: 1000000, InputPerK: 0.000075, OutputPerK: 0.0003},
		"mistralai/mistral-7b-instruct":    {Name: "mistralai/mistral-7b-instruct", Provider: ProviderOpenRouter, ContextTokens: 32768, InputPerK: 0.00006, OutputPerK: 0.00006},
		"meta-llama/llama-3.1-8b-instruct": {Name: "meta-llama/llama-3.1-8b-instruct", Provider: ProviderOpenRouter, ContextTokens: 131072},
		"llama3.1:8b":                      {Name: "llama3.1:8b", Provider: ProviderOllama, ContextTokens: 8192},
		"mistral:7b-instruct":              {Name: "mistral:7b-instruct", Provider: ProviderOllama, ContextTokens: 8192},
	}
)

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	mi, ok := models[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
//
//	{ "openai/gpt-4o-mini": {"name":"openai/gpt-4o-mini","context_tokens":128000,"input_per_k":0.00015,"output_per_k":0.0006} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m map[string]ModelInfo
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for k, v := range m {
		if v.Name == "" {
			v.Name = k
			m[k] = v
		}
	}
	return m, nil
}

// OverrideCatalog replaces the in-memory catalog entirely.
func OverrideCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	catalogMu.Lock()
	defer catalogMu.Unlock()
	models = m
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	for k, v := range m {
		models[k] = v
	}
}

// Catalog returns a copy of the current model catalog.
func Catalog() map[string]ModelInfo {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	out := make(map[string]ModelInfo, len(models))
	for k, v := range models {
		out[k] = v
	}
	return out
}

// ModelNames returns catalog model ids, optionally limited to one provider, sorted.
func ModelNames(provider string) []string {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	var out []string
	for k, v := range models {
		if provider != "" && v.Provider != "" && v.Provider != provider {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
