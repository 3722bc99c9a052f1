package sentiment

import (
	"context"
	"fmt"
	"strings"

	"empathiq-be/internal/constant"
	"empathiq-be/internal/pkg/logger"
	"empathiq-be/pkg/llm"
)

// Sentiment is a coarse three-way mood classification.
type Sentiment struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

func Neutral() Sentiment {
	return Sentiment{Score: 0, Label: constant.SentimentNeutral}
}

// Classifier asks the LLM for a one-word sentiment label.
type Classifier struct {
	provider llm.LLMProvider
	log      logger.ILogger
}

func NewClassifier(provider llm.LLMProvider, log logger.ILogger) *Classifier {
	return &Classifier{
		provider: provider,
		log:      log,
	}
}

// Classify never fails: any provider error or unexpected output degrades to
// neutral. Score mapping is positive=1, negative=-1, neutral=0.
func (c *Classifier) Classify(ctx context.Context, text string) Sentiment {
	prompt := fmt.Sprintf(constant.SentimentPromptTemplate, text)

	raw, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		c.log.Warn("sentiment", "Sentiment analysis failed, falling back to neutral", map[string]interface{}{
			"error": err.Error(),
		})
		return Neutral()
	}

	label := strings.ToLower(strings.TrimSpace(raw))
	switch label {
	case constant.SentimentPositive:
		return Sentiment{Score: 1, Label: label}
	case constant.SentimentNegative:
		return Sentiment{Score: -1, Label: label}
	case constant.SentimentNeutral:
		return Sentiment{Score: 0, Label: label}
	default:
		c.log.Warn("sentiment", "Invalid sentiment received", map[string]interface{}{
			"raw": raw,
		})
		return Neutral()
	}
}
