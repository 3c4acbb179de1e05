package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	completion string
	err        error
	prompts    []string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.completion}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.completion, nil
}

func TestLLMDetect(t *testing.T) {
	model := &fakeModel{completion: "NEGATIVE"}
	c := NewLLMClassifierWithModel(model)

	verdict, err := c.Detect(context.Background(), "this is terrible")

	require.NoError(t, err)
	assert.Equal(t, SentimentNegative, verdict.Label)
	assert.Equal(t, 1.0, verdict.Scores.Negative)

	require.NotEmpty(t, model.prompts)
	assert.Contains(t, model.prompts[0], "this is terrible")
}

func TestLLMDetectError(t *testing.T) {
	model := &fakeModel{err: errors.New("invalid api key")}
	c := NewLLMClassifierWithModel(model)

	_, err := c.Detect(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm sentiment call")
}

func TestParseCompletion(t *testing.T) {
	cases := []struct {
		in      string
		want    Sentiment
		wantErr bool
	}{
		{"NEGATIVE", SentimentNegative, false},
		{"negative", SentimentNegative, false},
		{"  Positive \n", SentimentPositive, false},
		{"NEUTRAL.", SentimentNeutral, false},
		{"MIXED!", SentimentMixed, false},
		{"NEGATIVE because the user is unhappy", SentimentNegative, false},
		{"I cannot classify this", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseCompletion(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewLLMClassifierRejectsUnknownProvider(t *testing.T) {
	_, err := NewLLMClassifier(context.Background(), LLMOptions{Provider: "anthropic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}
