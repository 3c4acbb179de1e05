package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/reviewtriage/internal/retry"
)

// Provider identifies an LLM backend for the fallback classifier.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

const sentimentPrompt = `Classify the sentiment of the following text.
Answer with exactly one word: POSITIVE, NEGATIVE, NEUTRAL or MIXED.

Text:
%s`

// LLMClassifier scores text by prompting a language model for a one-word
// sentiment label. Used when no Comprehend credentials are configured.
// The model reports no per-label scores, so the chosen label gets 1.0.
type LLMClassifier struct {
	llm llms.Model
}

// LLMOptions configures the model behind an LLMClassifier.
type LLMOptions struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"api_key"`
	Model    string   `json:"model,omitempty"`
}

// NewLLMClassifier creates a classifier for the given provider.
func NewLLMClassifier(ctx context.Context, options LLMOptions) (*LLMClassifier, error) {
	var model llms.Model
	var err error

	log.Debug().
		Str("provider", string(options.Provider)).
		Str("model", options.Model).
		Msg("Creating LLM classifier")

	switch options.Provider {
	case ProviderGemini:
		opts := []googleai.Option{googleai.WithAPIKey(options.APIKey)}
		if options.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(options.Model))
		}
		model, err = googleai.New(ctx, opts...)
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(options.APIKey)}
		if options.Model != "" {
			opts = append(opts, openai.WithModel(options.Model))
		}
		model, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", options.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create model for provider %s: %w", options.Provider, err)
	}

	return &LLMClassifier{llm: model}, nil
}

// NewLLMClassifierWithModel wraps an already constructed model. Used by tests.
func NewLLMClassifierWithModel(model llms.Model) *LLMClassifier {
	return &LLMClassifier{llm: model}
}

// Detect implements Classifier. Transient model failures get a short
// backoff before the item is given up on.
func (c *LLMClassifier) Detect(ctx context.Context, text string) (Verdict, error) {
	var response string
	err := retry.Do(ctx, retry.DefaultConfig(), "llm sentiment", func() error {
		var callErr error
		response, callErr = llms.GenerateFromSinglePrompt(ctx, c.llm,
			fmt.Sprintf(sentimentPrompt, text), llms.WithTemperature(0))
		return callErr
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("llm sentiment call: %w", err)
	}

	label, err := parseCompletion(response)
	if err != nil {
		return Verdict{}, err
	}

	verdict := Verdict{Label: label}
	switch label {
	case SentimentPositive:
		verdict.Scores.Positive = 1
	case SentimentNegative:
		verdict.Scores.Negative = 1
	case SentimentNeutral:
		verdict.Scores.Neutral = 1
	case SentimentMixed:
		verdict.Scores.Mixed = 1
	}
	return verdict, nil
}

// parseCompletion extracts the sentiment label from a model completion.
// Models occasionally wrap the answer in whitespace or trailing punctuation.
func parseCompletion(response string) (Sentiment, error) {
	word := strings.ToUpper(strings.TrimSpace(response))
	word = strings.TrimRight(word, ".!")
	if i := strings.IndexAny(word, " \n\t"); i >= 0 {
		word = word[:i]
	}
	label, err := ParseSentiment(word)
	if err != nil {
		return "", fmt.Errorf("unexpected completion %q: %w", response, err)
	}
	return label, nil
}
