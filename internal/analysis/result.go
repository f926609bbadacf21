package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/google/uuid"
)

// Source tags which producer created a Result.
type Source string

const (
	SourceRuleBased Source = "rule-based"
	SourceExternal  Source = "external"
)

// ParseSource accepts a source tag or a loose alias.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rules", "rule-based", "local", "builtin":
		return SourceRuleBased, nil
	case "external", "ai", "llm", "openrouter", "ollama":
		return SourceExternal, nil
	}
	return "", fmt.Errorf("unknown analysis source %q (use rules|external)", s)
}

// Result is a summary paragraph plus ordered recommendations.
type Result struct {
	ID              string    `json:"id"`
	Source          Source    `json:"source"`
	Model           string    `json:"model,omitempty"`
	Summary         string    `json:"summary"`
	Recommendations []string  `json:"recommendations"`
	GeneratedAt     time.Time `json:"generated_at"`
}

func newResult(src Source, summary string, recs []string) *Result {
	if recs == nil {
		recs = []string{}
	}
	return &Result{
		ID:              uuid.NewString(),
		Source:          src,
		Summary:         summary,
		Recommendations: recs,
		GeneratedAt:     time.Now().UTC(),
	}
}

// Analyzer produces a Result for a filtered dataset.
type Analyzer interface {
	Source() Source
	Analyze(ctx context.Context, d dataset.Dataset) (*Result, error)
}
