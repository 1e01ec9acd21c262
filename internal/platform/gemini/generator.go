package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/questup-api/internal/config"
	"github.com/phrazzld/questup-api/internal/credential"
	"github.com/phrazzld/questup-api/internal/domain"
	"github.com/phrazzld/questup-api/internal/generation"
	"github.com/phrazzld/questup-api/internal/platform/logger"
	"github.com/phrazzld/questup-api/internal/platform/metrics"
	"github.com/phrazzld/questup-api/internal/redact"
	"google.golang.org/genai"
)

// Operation names used in logs and metrics.
const (
	opGenerateExam   = "generate_exam"
	opAnalyzeResults = "analyze_results"
)

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger     *slog.Logger
	builder    *generation.Builder
	transport  *Transport
	retry      generation.RetryPolicy
	normalizer generation.Normalizer

	thinkingBudget    int
	systemInstruction string
}

var _ generation.Generator = (*Generator)(nil)

// Option customizes a Generator.
type Option func(*Generator)

// WithClientFactory replaces the genai client factory.
func WithClientFactory(f ClientFactory) Option {
	return func(g *Generator) {
		if f != nil {
			g.transport.newClient = f
		}
	}
}

// WithSleep replaces the backoff sleep.
func WithSleep(sleep generation.SleepFunc) Option {
	return func(g *Generator) {
		g.retry.Sleep = sleep
	}
}

// WithNormalizer replaces the result normalizer.
func WithNormalizer(n generation.Normalizer) Option {
	return func(g *Generator) {
		g.normalizer = n
	}
}

// NewGenerator creates a Generator from the LLM configuration. credentials
// is consulted on every attempt; a missing key fails calls, not construction.
func NewGenerator(
	log *slog.Logger,
	cfg config.LLMConfig,
	credentials credential.Provider,
	opts ...Option,
) (*Generator, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}

	builder, err := generation.NewBuilder(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	transport, err := NewTransport(credentials, NewClientFactory(cfg.BaseURL), cfg.ModelName)
	if err != nil {
		return nil, err
	}

	policy := generation.DefaultRetryPolicy()
	policy.MaxRetries = cfg.MaxRetries
	if cfg.RetryBaseDelayMS > 0 {
		policy.BaseDelay = time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond
	}

	g := &Generator{
		logger:            log.With("component", "gemini_generator"),
		builder:           builder,
		transport:         transport,
		retry:             policy,
		thinkingBudget:    cfg.ThinkingBudget,
		systemInstruction: cfg.SystemInstruction,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// GenerateExam implements generation.Generator.
func (g *Generator) GenerateExam(ctx context.Context, params domain.ExamParams) ([]domain.Question, error) {
	req, err := g.builder.BuildExamRequest(params)
	if err != nil {
		return nil, err
	}

	parts := make([]*genai.Part, 0, len(req.Parts)+1)
	for _, p := range req.Parts {
		data, err := p.Bytes()
		if err != nil {
			return nil, domain.NewValidationError("files", "is not valid base64", nil)
		}
		parts = append(parts, genai.NewPartFromBytes(data, p.MimeType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	ctx = g.withLogger(ctx, opGenerateExam,
		slog.String("grade", string(req.Grade)),
		slog.String("language", string(req.Language)),
		slog.Int("count", req.Count),
		slog.Int("files", len(req.Parts)),
		slog.Int("weak_topics", len(req.WeakTopics)))

	raw, err := g.call(ctx, opGenerateExam, contents, g.contentConfig(QuestionListSchema()))
	if err != nil {
		return nil, err
	}

	questions, err := g.normalizer.Questions(raw)
	if err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "failed to parse generated questions", redact.ErrorAttr(err))
		return nil, err
	}

	logger.FromContext(ctx).InfoContext(ctx, "exam generated", slog.Int("questions", len(questions)))
	return questions, nil
}

// AnalyzeResults implements generation.Generator.
func (g *Generator) AnalyzeResults(
	ctx context.Context,
	questions []domain.Question,
	answers []*int,
) (*domain.AnalysisResult, error) {
	req, err := g.builder.BuildAnalysisRequest(questions, answers)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	ctx = g.withLogger(ctx, opAnalyzeResults, slog.Int("questions", len(questions)))

	raw, err := g.call(ctx, opAnalyzeResults, contents, g.contentConfig(AnalysisSchema()))
	if err != nil {
		return nil, err
	}

	result, err := g.normalizer.Analysis(raw)
	if err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "failed to parse analysis", redact.ErrorAttr(err))
		return nil, err
	}
	return result, nil
}

// call runs the transport under the retry policy and records metrics.
func (g *Generator) call(
	ctx context.Context,
	operation string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (string, error) {
	start := time.Now()

	raw, err := generation.Retry(ctx, g.retry, func(ctx context.Context, attempt int) (string, error) {
		metrics.GenerationAttempt(operation)
		return g.transport.Call(ctx, contents, config)
	})

	if err != nil {
		kind := generation.KindOf(err)
		if errors.Is(err, generation.ErrAuthMissing) {
			kind = generation.KindAuth
		}
		metrics.GenerationCall(operation, metrics.OutcomeError, kind.String(), time.Since(start))
		logger.FromContext(ctx).ErrorContext(ctx, "generation call failed",
			slog.String("kind", kind.String()),
			slog.Duration("elapsed", time.Since(start)),
			redact.ErrorAttr(err))
		return "", fmt.Errorf("%s: %w", operation, err)
	}

	metrics.GenerationCall(operation, metrics.OutcomeSuccess, "", time.Since(start))
	return raw, nil
}

func (g *Generator) contentConfig(schema *genai.Schema) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if g.thinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(g.thinkingBudget)),
		}
	}
	if g.systemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: g.systemInstruction}},
		}
	}
	return cfg
}

func (g *Generator) withLogger(ctx context.Context, operation string, attrs ...any) context.Context {
	log := logger.FromContextOrDefault(ctx, g.logger).With("operation", operation).With(attrs...)
	return logger.WithLogger(ctx, log)
}
