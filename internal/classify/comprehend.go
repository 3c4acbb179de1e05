package classify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendtypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/rs/zerolog/log"
)

// DetectSentimentAPI is the slice of the Comprehend client the classifier
// needs. Satisfied by *comprehend.Client.
type DetectSentimentAPI interface {
	DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error)
}

// ComprehendClassifier scores text with the Amazon Comprehend sentiment API.
type ComprehendClassifier struct {
	api          DetectSentimentAPI
	languageCode string
}

// NewComprehendClassifier wraps a Comprehend client. languageCode defaults
// to "en" when empty.
func NewComprehendClassifier(api DetectSentimentAPI, languageCode string) *ComprehendClassifier {
	if languageCode == "" {
		languageCode = "en"
	}
	return &ComprehendClassifier{api: api, languageCode: languageCode}
}

// Detect implements Classifier.
func (c *ComprehendClassifier) Detect(ctx context.Context, text string) (Verdict, error) {
	out, err := c.api.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		LanguageCode: comprehendtypes.LanguageCode(c.languageCode),
		Text:         aws.String(text),
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("detect sentiment: %w", err)
	}

	label, err := ParseSentiment(string(out.Sentiment))
	if err != nil {
		return Verdict{}, fmt.Errorf("comprehend response: %w", err)
	}

	verdict := Verdict{Label: label}
	if s := out.SentimentScore; s != nil {
		verdict.Scores = Scores{
			Positive: float64(aws.ToFloat32(s.Positive)),
			Negative: float64(aws.ToFloat32(s.Negative)),
			Neutral:  float64(aws.ToFloat32(s.Neutral)),
			Mixed:    float64(aws.ToFloat32(s.Mixed)),
		}
	}

	log.Debug().
		Str("label", string(verdict.Label)).
		Float64("negative_score", verdict.Scores.Negative).
		Msg("Comprehend sentiment verdict")

	return verdict, nil
}
