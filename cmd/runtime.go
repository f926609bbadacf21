package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/ai"
	"github.com/KaramelBytes/medintel-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/medintel-cli/internal/config"
	"go.uber.org/zap"
)

type runtimeOptions struct {
	ProviderFlag string
	OllamaHost   string
}

func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	httpTimeout := 60 * time.Second
	retryMax := 3
	baseDelay := 500 * time.Millisecond
	maxDelay := 4 * time.Second
	if cfg != nil {
		if cfg.HTTPTimeoutSec > 0 {
			httpTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		}
		if cfg.RetryMaxAttempts > 0 {
			retryMax = cfg.RetryMaxAttempts
		}
		if cfg.RetryBaseDelayMs > 0 {
			baseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
		}
		if cfg.RetryMaxDelayMs > 0 {
			maxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
		}
	}

	providerName := opts.ProviderFlag
	if strings.TrimSpace(providerName) == "" && cfg != nil {
		providerName = cfg.DefaultProvider
	}
	providerName = ai.NormalizeProvider(providerName)

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" && cfg != nil {
		apiKey = cfg.APIKey
	}

	rc := ai.RuntimeConfig{
		HTTPTimeout: httpTimeout,
		RetryMax:    retryMax,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		APIKey:      apiKey,
		BaseURL:     os.Getenv("MEDINTEL_OPENROUTER_BASE_URL"),
		Logger:      logger,
	}

	if providerName == ai.ProviderOllama {
		host := strings.TrimSpace(opts.OllamaHost)
		if host == "" {
			host = os.Getenv("MEDINTEL_OLLAMA_HOST")
		}
		if host == "" && cfg != nil {
			host = cfg.OllamaHost
		}
		if host == "" {
			host = "http://127.0.0.1:11434"
		}
		rc.Host = host
		if v := os.Getenv("MEDINTEL_OLLAMA_TIMEOUT_SEC"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				rc.HTTPTimeout = time.Duration(n) * time.Second
			}
		}
		if cfg != nil && cfg.OllamaTimeoutSec > 0 {
			rc.HTTPTimeout = time.Duration(cfg.OllamaTimeoutSec) * time.Second
		}
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s (use openrouter or ollama)", providerName)
	}
	return client, providerName, nil
}

func selectModel(cfg *cfgpkg.Global, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg != nil && cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return ai.DefaultModel
}

func enforceBudget(estCost, limit float64) error {
	if limit > 0 && estCost > 0 && estCost > limit {
		return fmt.Errorf("estimated cost ~$%.4f exceeds budget limit ~$%.4f", estCost, limit)
	}
	return nil
}

type externalOptions struct {
	Provider   string
	Model      string
	OllamaHost string
	TimeoutSec int
	SampleRows int
}

// newExternalAnalyzer resolves provider, model and limits from flags and config.
func newExternalAnalyzer(cfg *cfgpkg.Global, opts externalOptions) (*analysis.ExternalAnalyzer, string, error) {
	rt, provider, err := buildRuntime(cfg, runtimeOptions{ProviderFlag: opts.Provider, OllamaHost: opts.OllamaHost})
	if err != nil {
		return nil, provider, err
	}
	ec := analysis.ExternalConfig{
		Model:      selectModel(cfg, opts.Model),
		SampleSize: opts.SampleRows,
		Logger:     logger.With(zap.String("provider", provider)),
	}
	timeout := opts.TimeoutSec
	if cfg != nil {
		if timeout <= 0 {
			timeout = cfg.AnalysisTimeoutSec
		}
		if ec.SampleSize <= 0 {
			ec.SampleSize = cfg.SampleRows
		}
		ec.MaxTokens = cfg.MaxTokens
	}
	if timeout > 0 {
		ec.Timeout = time.Duration(timeout) * time.Second
	}
	return analysis.NewExternalAnalyzer(rt, ec), provider, nil
}

// externalHint returns a follow-up suggestion for a failed external analysis.
func externalHint(err error, provider, model string) string {
	var (
		xe      *analysis.ExternalError
		rlErr   *ai.RateLimitError
		nfErr   *ai.ModelNotFoundError
		qErr    *ai.QuotaExceededError
		unreach *ai.UnreachableError
	)
	if !errors.As(err, &xe) {
		return ""
	}
	switch xe.Kind {
	case analysis.KindAuth:
		return "set OPENROUTER_API_KEY (environment or .env) or run 'medintel config set api_key <key>'"
	case analysis.KindTimeout:
		return "raise --timeout-sec or analysis_timeout_sec, or reduce --sample-rows"
	case analysis.KindNetwork:
		if errors.As(err, &unreach) && provider == ai.ProviderOllama {
			return fmt.Sprintf("ensure Ollama is running at %s (or set MEDINTEL_OLLAMA_HOST / ollama_host)", unreach.Host)
		}
		return "check your network connection and provider settings"
	case analysis.KindMalformed:
		return "the model did not return the expected JSON; retry or choose another model with --model"
	case analysis.KindNoData:
		return "widen the filters so at least one record remains"
	}
	switch {
	case errors.As(err, &rlErr) && rlErr.RetryAfter > 0:
		return fmt.Sprintf("rate limited, try again in ~%ds", int(rlErr.RetryAfter.Seconds()))
	case errors.As(err, &rlErr):
		return "rate limited by provider, please retry"
	case errors.As(err, &nfErr) && provider == ai.ProviderOllama:
		return fmt.Sprintf("install the model with 'ollama pull %s' or choose another", model)
	case errors.As(err, &nfErr):
		return fmt.Sprintf("model %s not found; see 'medintel models show'", model)
	case errors.As(err, &qErr):
		return "quota/billing issue, check your provider account"
	}
	return ""
}
