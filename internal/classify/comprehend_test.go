package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendtypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComprehend struct {
	input *comprehend.DetectSentimentInput
	out   *comprehend.DetectSentimentOutput
	err   error
}

func (f *fakeComprehend) DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func TestComprehendDetect(t *testing.T) {
	api := &fakeComprehend{out: &comprehend.DetectSentimentOutput{
		Sentiment: comprehendtypes.SentimentTypeNegative,
		SentimentScore: &comprehendtypes.SentimentScore{
			Positive: aws.Float32(0.01),
			Negative: aws.Float32(0.95),
			Neutral:  aws.Float32(0.03),
			Mixed:    aws.Float32(0.01),
		},
	}}

	verdict, err := NewComprehendClassifier(api, "en").Detect(context.Background(), "this is terrible")

	require.NoError(t, err)
	assert.Equal(t, SentimentNegative, verdict.Label)
	assert.InDelta(t, 0.95, verdict.Scores.Negative, 1e-6)

	require.NotNil(t, api.input)
	assert.Equal(t, "this is terrible", aws.ToString(api.input.Text))
	assert.Equal(t, comprehendtypes.LanguageCode("en"), api.input.LanguageCode)
}

func TestComprehendDefaultLanguage(t *testing.T) {
	api := &fakeComprehend{out: &comprehend.DetectSentimentOutput{
		Sentiment: comprehendtypes.SentimentTypeNeutral,
	}}

	_, err := NewComprehendClassifier(api, "").Detect(context.Background(), "ok")
	require.NoError(t, err)
	assert.Equal(t, comprehendtypes.LanguageCode("en"), api.input.LanguageCode)
}

func TestComprehendMissingScores(t *testing.T) {
	api := &fakeComprehend{out: &comprehend.DetectSentimentOutput{
		Sentiment: comprehendtypes.SentimentTypePositive,
	}}

	verdict, err := NewComprehendClassifier(api, "en").Detect(context.Background(), "nice")
	require.NoError(t, err)
	assert.Equal(t, SentimentPositive, verdict.Label)
	assert.Zero(t, verdict.Scores)
}

func TestComprehendError(t *testing.T) {
	api := &fakeComprehend{err: errors.New("AccessDeniedException")}

	_, err := NewComprehendClassifier(api, "en").Detect(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detect sentiment")
}
