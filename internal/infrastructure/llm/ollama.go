package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"NewsHarvester/internal/config"
	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/metrics"
	"NewsHarvester/internal/ports"
)

const systemPrompt = "You are a news editor. Summarize the article in 3-4 plain sentences. " +
	"Reply with the summary only, no preamble."

// OllamaSummarizer condenses article text through a local ollama server.
// The primary model is tried first; any runtime failure falls back to the
// smaller model. Read-only after construction, safe for concurrent use.
type OllamaSummarizer struct {
	client        *ollama.Client
	primaryModel  string
	fallbackModel string
	maxInputWords int
	native        domain.Language
	timeout       time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

var _ ports.Summarizer = (*OllamaSummarizer)(nil)

// NewOllamaSummarizer builds the two-tier summarizer from configuration.
func NewOllamaSummarizer(cfg config.SummarizerConfig, logger *slog.Logger, m *metrics.Metrics) (*OllamaSummarizer, error) {
	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %s: %w", cfg.Host, err)
	}

	return &OllamaSummarizer{
		client:        ollama.NewClient(base, http.DefaultClient),
		primaryModel:  cfg.PrimaryModel,
		fallbackModel: cfg.FallbackModel,
		maxInputWords: cfg.MaxInputWords,
		native:        domain.ParseLanguage(cfg.NativeLanguage),
		timeout:       cfg.Timeout(),
		logger:        logger,
		metrics:       m,
	}, nil
}

// Summarize produces a condensed summary or a definitive failure after
// both model tiers. Over-budget input is truncated, never rejected.
func (o *OllamaSummarizer) Summarize(ctx context.Context, text string, lang domain.Language) (string, error) {
	text = TruncateWords(text, o.maxInputWords)

	var lastErr error
	for i, model := range []string{o.primaryModel, o.fallbackModel} {
		if model == "" {
			continue
		}
		summary, err := o.generate(ctx, model, text)
		if err != nil {
			lastErr = err
			o.warn("model failed", "model", model, "error", err)
			if i == 0 && o.metrics != nil {
				o.metrics.SummarizerFallbacks.Inc()
			}
			continue
		}
		return o.annotate(summary, lang), nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no summarization model configured")
	}
	return "", fmt.Errorf("summarization failed: %w", lastErr)
}

func (o *OllamaSummarizer) generate(ctx context.Context, model, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	stream := false
	var response strings.Builder
	err := o.client.Generate(ctx, &ollama.GenerateRequest{
		Model:  model,
		System: systemPrompt,
		Prompt: text,
		Stream: &stream,
		Options: map[string]any{
			"temperature": 0.2,
		},
	}, func(res ollama.GenerateResponse) error {
		response.WriteString(res.Response)
		return nil
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(response.String())
	if summary == "" {
		return "", fmt.Errorf("model %s returned empty output", model)
	}
	return summary, nil
}

// annotate appends a fixed notice when the source text is not in the
// model's native language; the summary itself is left untouched.
func (o *OllamaSummarizer) annotate(summary string, lang domain.Language) string {
	if lang == o.native || lang == domain.LangUnknown {
		return summary
	}
	return fmt.Sprintf("%s (original language: %s)", summary, lang)
}

func (o *OllamaSummarizer) warn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}

// TruncateWords fits text into the word budget by keeping the head and
// tail halves joined with an ellipsis, so the lede and the conclusion both
// survive. Cuts happen only on word boundaries.
func TruncateWords(text string, maxWords int) string {
	if maxWords <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}

	half := maxWords / 2
	head := strings.Join(words[:half], " ")
	tail := strings.Join(words[len(words)-half:], " ")
	return head + " ... " + tail
}
