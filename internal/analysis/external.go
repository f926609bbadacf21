package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/ai"
	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"go.uber.org/zap"
)

// Defaults for the external analyzer.
const (
	DefaultSampleSize      = 50
	DefaultExternalTimeout = 60 * time.Second
)

// ErrorKind classifies an external analysis failure.
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"
	KindTimeout   ErrorKind = "timeout"
	KindNetwork   ErrorKind = "network"
	KindMalformed ErrorKind = "malformed-response"
	KindProvider  ErrorKind = "provider"
	KindCanceled  ErrorKind = "canceled"
	KindNoData    ErrorKind = "no-data"
)

// ExternalError is returned for every failed external analysis.
type ExternalError struct {
	Kind ErrorKind
	Err  error
}

func (e *ExternalError) Error() string {
	switch e.Kind {
	case KindAuth:
		return fmt.Sprintf("external analysis: authentication missing or rejected (set OPENROUTER_API_KEY or api_key): %v", e.Err)
	case KindTimeout:
		return "external analysis timed out, please try again"
	case KindNetwork:
		return fmt.Sprintf("external analysis request failed: %v; check API key and network", e.Err)
	case KindMalformed:
		return fmt.Sprintf("external analysis returned a malformed response: %v", e.Err)
	case KindCanceled:
		return "external analysis canceled"
	case KindNoData:
		return "external analysis: no data available to send"
	}
	return fmt.Sprintf("external analysis provider error: %v", e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// ExternalConfig configures an ExternalAnalyzer.
type ExternalConfig struct {
	Model      string
	SampleSize int
	Timeout    time.Duration
	MaxTokens  int
	Logger     *zap.Logger
}

// ExternalAnalyzer delegates analysis to a chat-completion runtime.
type ExternalAnalyzer struct {
	runtime ai.Runtime
	cfg     ExternalConfig
	logger  *zap.Logger
}

// NewExternalAnalyzer wraps rt, filling zero config values with defaults.
func NewExternalAnalyzer(rt ai.Runtime, cfg ExternalConfig) *ExternalAnalyzer {
	if cfg.Model == "" {
		cfg.Model = ai.DefaultModel
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultSampleSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultExternalTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExternalAnalyzer{runtime: rt, cfg: cfg, logger: logger}
}

func (a *ExternalAnalyzer) Source() Source { return SourceExternal }

// Model returns the model id requests are sent to.
func (a *ExternalAnalyzer) Model() string { return a.cfg.Model }

// Request builds the payload Analyze would send for d.
func (a *ExternalAnalyzer) Request(d dataset.Dataset) ExternalRequest {
	return BuildRequest(d, a.cfg.Model, a.cfg.SampleSize)
}

// Analyze sends a sample of d to the runtime and parses its JSON answer.
func (a *ExternalAnalyzer) Analyze(ctx context.Context, d dataset.Dataset) (*Result, error) {
	if d.Empty() {
		return nil, &ExternalError{Kind: KindNoData}
	}
	req := a.Request(d)
	msgs, err := req.Messages()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.runtime.Generate(ctx, ai.GenerateRequest{
		Model:          a.cfg.Model,
		Messages:       msgs,
		MaxTokens:      a.cfg.MaxTokens,
		ResponseFormat: ai.JSONObject,
	})
	if err != nil {
		xe := classify(err)
		a.logger.Warn("external analysis failed",
			zap.String("kind", string(xe.Kind)),
			zap.String("model", a.cfg.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, xe
	}
	content, ok := resp.Content()
	if !ok {
		return nil, &ExternalError{Kind: KindMalformed, Err: errors.New("response has no choices")}
	}
	summary, recs, err := ParseResponse(content)
	if err != nil {
		a.logger.Warn("external analysis response rejected", zap.String("request_id", resp.RequestID), zap.Error(err))
		return nil, &ExternalError{Kind: KindMalformed, Err: err}
	}
	res := newResult(SourceExternal, summary, recs)
	res.Model = a.cfg.Model
	a.logger.Info("external analysis complete",
		zap.String("model", a.cfg.Model),
		zap.String("request_id", resp.RequestID),
		zap.Int("sample_rows", len(req.Sample)),
		zap.Int("recommendations", len(recs)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// ExternalRequest is the payload described to the remote summarizer.
type ExternalRequest struct {
	Fields []string         `json:"fields"`
	Sample []map[string]any `json:"sample"`
	Model  string           `json:"model"`
}

// BuildRequest takes the leading sampleSize records of d.
func BuildRequest(d dataset.Dataset, model string, sampleSize int) ExternalRequest {
	fields := make([]string, len(dataset.RequiredFields))
	for i, f := range dataset.RequiredFields {
		fields[i] = string(f)
	}
	head := d.Head(sampleSize)
	sample := make([]map[string]any, head.Len())
	for i := range sample {
		sample[i] = head.At(i).Map()
	}
	return ExternalRequest{Fields: fields, Sample: sample, Model: model}
}

// Messages renders the chat prompt for the request.
func (r ExternalRequest) Messages() ([]ai.Message, error) {
	fields, err := json.Marshal(r.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	sample, err := json.MarshalIndent(r.Sample, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sample: %w", err)
	}
	var b strings.Builder
	b.WriteString("Analyze the following social media post data and provide a concise summary and actionable campaign recommendations.\n")
	fmt.Fprintf(&b, "The data includes the fields: %s.\n", fields)
	fmt.Fprintf(&b, "Here is a sample of the data (first %d rows):\n%s\n", len(r.Sample), sample)
	b.WriteString(`Respond with a JSON object with exactly two keys: "summary" (string) and "recommendations" (array of strings).`)
	return []ai.Message{
		{Role: "system", Content: "You are a social media marketing analyst. You answer only with JSON."},
		{Role: "user", Content: b.String()},
	}, nil
}

type externalPayload struct {
	Summary         *string   `json:"summary"`
	Recommendations *[]string `json:"recommendations"`
}

// ParseResponse decodes a {"summary", "recommendations"} object, tolerating a
// surrounding Markdown code fence.
func ParseResponse(content string) (string, []string, error) {
	text := stripCodeFence(content)
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	var p externalPayload
	if err := dec.Decode(&p); err != nil {
		return "", nil, fmt.Errorf("decode analysis JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", nil, errors.New("unexpected data after JSON object")
	}
	if p.Summary == nil || strings.TrimSpace(*p.Summary) == "" {
		return "", nil, errors.New(`missing "summary"`)
	}
	if p.Recommendations == nil {
		return "", nil, errors.New(`missing "recommendations"`)
	}
	recs := make([]string, 0, len(*p.Recommendations))
	for _, r := range *p.Recommendations {
		if r = strings.TrimSpace(r); r != "" {
			recs = append(recs, r)
		}
	}
	return strings.TrimSpace(*p.Summary), recs, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

func classify(err error) *ExternalError {
	var (
		ue  *ai.UnreachableError
		ne  net.Error
		syn *json.SyntaxError
		ute *json.UnmarshalTypeError
	)
	switch {
	case ai.IsAuth(err):
		return &ExternalError{Kind: KindAuth, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &ExternalError{Kind: KindTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &ExternalError{Kind: KindCanceled, Err: err}
	case errors.As(err, &ne) && ne.Timeout():
		return &ExternalError{Kind: KindTimeout, Err: err}
	case errors.As(err, &ue), errors.As(err, &ne):
		return &ExternalError{Kind: KindNetwork, Err: err}
	case errors.As(err, &syn), errors.As(err, &ute), errors.Is(err, io.ErrUnexpectedEOF):
		return &ExternalError{Kind: KindMalformed, Err: err}
	}
	return &ExternalError{Kind: KindProvider, Err: err}
}
