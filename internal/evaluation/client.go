// Package evaluation talks to the generative AI endpoint that asks questions,
// grades answers and reviews CVs.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"interview-coach/internal/config"
	"interview-coach/internal/language"
	"interview-coach/internal/metrics"
	"interview-coach/internal/profile"
)

const (
	opOpening  = "opening"
	opEvaluate = "evaluate"
	opReview   = "review"
	opChat     = "chat"
)

// Result is the structured reply to an answer.
type Result struct {
	Feedback     string `json:"feedback"`
	NextQuestion string `json:"nextQuestion"`
}

// Client is the evaluation service client. A client built without a generator is
// permanently unavailable.
type Client struct {
	generator Generator
	provider  string
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
}

// New wraps a generator. Pass a nil generator to build a disabled client.
func New(generator Generator, provider string, m *metrics.Metrics, logger zerolog.Logger) *Client {
	return &Client{
		generator: generator,
		provider:  provider,
		metrics:   m,
		tracer:    otel.Tracer("interview-coach/internal/evaluation"),
		logger:    logger.With().Str("component", "evaluation").Str("provider", provider).Logger(),
		sanitizer: bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true),
	}
}

// NewFromConfig picks the backend from cfg. A missing credential is not an error:
// the returned client reports Available() == false.
func NewFromConfig(ctx context.Context, cfg config.AIConfig, m *metrics.Metrics, logger zerolog.Logger) (*Client, error) {
	if !cfg.HasCredential() {
		logger.Warn().Str("provider", cfg.Provider).Msg("no AI API key configured; interview and CV review are disabled")
		return New(nil, cfg.Provider, m, logger), nil
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return New(NewOpenAIGenerator(cfg, ""), cfg.Provider, m, logger), nil
	case config.ProviderGemini:
		gen, err := NewGeminiGenerator(ctx, cfg, "")
		if err != nil {
			return nil, err
		}
		return New(gen, cfg.Provider, m, logger), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// Available reports whether a credential was configured at construction.
func (c *Client) Available() bool {
	return c != nil && c.generator != nil
}

// RequestOpeningQuestion asks for the first question of a session.
func (c *Client) RequestOpeningQuestion(ctx context.Context, lang language.Code, p profile.UserProfile) (string, error) {
	if !c.Available() {
		c.metrics.ObserveEvaluation(opOpening, metrics.OutcomeUnavailable, 0)
		return "", ErrServiceUnavailable
	}

	ctx, span := c.tracer.Start(ctx, "evaluation.opening", trace.WithAttributes(
		attribute.String("language", string(lang)),
	))
	defer span.End()

	start := time.Now()
	text, err := c.generator.Generate(ctx, buildOpeningPrompt(lang, p))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		c.fail(span, opOpening, metrics.OutcomeTransport, time.Since(start), err)
		return "", &GenerationError{Op: opOpening, Err: err}
	}

	c.metrics.ObserveEvaluation(opOpening, metrics.OutcomeSuccess, time.Since(start))
	c.logger.Debug().Str("language", string(lang)).Dur("took", time.Since(start)).Msg("opening question generated")
	return strings.TrimSpace(text), nil
}

// EvaluateAnswer grades an answer and returns feedback plus the follow-up question.
func (c *Client) EvaluateAnswer(ctx context.Context, question, answer string, lang language.Code, p profile.UserProfile) (Result, error) {
	if !c.Available() {
		c.metrics.ObserveEvaluation(opEvaluate, metrics.OutcomeUnavailable, 0)
		return Result{}, ErrServiceUnavailable
	}

	ctx, span := c.tracer.Start(ctx, "evaluation.evaluate_answer", trace.WithAttributes(
		attribute.String("language", string(lang)),
		attribute.Int("answer_length", len(answer)),
	))
	defer span.End()

	start := time.Now()
	raw, err := c.generator.Generate(ctx, buildEvaluationPrompt(question, answer, lang, p))
	if err != nil {
		c.fail(span, opEvaluate, metrics.OutcomeTransport, time.Since(start), err)
		return Result{}, &GenerationError{Op: opEvaluate, Err: err}
	}

	result, err := parseEvaluation(raw)
	if err != nil {
		c.fail(span, opEvaluate, metrics.OutcomeMalformed, time.Since(start), err)
		return Result{}, err
	}

	c.metrics.ObserveEvaluation(opEvaluate, metrics.OutcomeSuccess, time.Since(start))
	c.logger.Debug().Str("language", string(lang)).Dur("took", time.Since(start)).Msg("answer evaluated")
	return result, nil
}

// ReviewDocument returns CV feedback. Failures come back as a readable message
// rather than an error since there is no session state to protect.
func (c *Client) ReviewDocument(ctx context.Context, text string, p profile.UserProfile) string {
	if !c.Available() {
		c.metrics.IncrementCVReviews(metrics.OutcomeUnavailable)
		return "Error: The AI service is not initialized. Please ensure the API key is set correctly."
	}

	text = c.plainText(text)
	if text == "" {
		return "Please paste your CV text first."
	}

	ctx, span := c.tracer.Start(ctx, "evaluation.review_document", trace.WithAttributes(
		attribute.Int("document_length", len(text)),
	))
	defer span.End()

	start := time.Now()
	feedback, err := c.generator.Generate(ctx, buildReviewPrompt(text, p))
	if err == nil && strings.TrimSpace(feedback) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		c.fail(span, opReview, metrics.OutcomeTransport, time.Since(start), err)
		c.metrics.IncrementCVReviews(metrics.OutcomeTransport)
		return fmt.Sprintf("An error occurred while analyzing the CV. Details: %v", err)
	}

	c.metrics.ObserveEvaluation(opReview, metrics.OutcomeSuccess, time.Since(start))
	c.metrics.IncrementCVReviews(metrics.OutcomeSuccess)
	return strings.TrimSpace(feedback)
}

// Chat sends one message of the free-form coach chat. history holds the earlier
// exchanges, oldest first, and is not modified.
func (c *Client) Chat(ctx context.Context, history []Message, message string, p profile.UserProfile) (string, error) {
	if !c.Available() {
		c.metrics.ObserveEvaluation(opChat, metrics.OutcomeUnavailable, 0)
		return "", ErrServiceUnavailable
	}

	ctx, span := c.tracer.Start(ctx, "evaluation.chat", trace.WithAttributes(
		attribute.Int("history_length", len(history)),
	))
	defer span.End()

	start := time.Now()
	text, err := c.generator.Generate(ctx, buildChatPrompt(history, message, p))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		c.fail(span, opChat, metrics.OutcomeTransport, time.Since(start), err)
		return "", &GenerationError{Op: opChat, Err: err}
	}

	c.metrics.ObserveEvaluation(opChat, metrics.OutcomeSuccess, time.Since(start))
	return strings.TrimSpace(text), nil
}

// plainText strips markup from pasted HTML and leaves plain text untouched.
func (c *Client) plainText(text string) string {
	if mimetype.Detect([]byte(text)).Is("text/html") {
		text = html.UnescapeString(c.sanitizer.Sanitize(text))
	}
	return strings.TrimSpace(text)
}

func (c *Client) fail(span trace.Span, op, outcome string, took time.Duration, err error) {
	c.metrics.ObserveEvaluation(op, outcome, took)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	event := c.logger.Warn().Err(err).Str("operation", op).Str("reason", outcome).Dur("took", took)
	var mal *MalformedResponseError
	if errors.As(err, &mal) {
		event = event.Str("raw", truncate(mal.Raw, 500))
	}
	event.Msg("evaluation call failed")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
