// Package openai provides an LLM-backed intent scorer using the OpenAI
// Chat Completions API. The model is asked to rate how well a message
// matches a topic's intent description and reply with a bare number in
// [0,1].
package openai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/openai/openai-go"

	"github.com/hupe1980/topicflow/core"
	"github.com/hupe1980/topicflow/logging"
)

const systemPrompt = `You are an intent classifier. Given a topic description and a user message, reply with a single number between 0 and 1: the confidence that the message belongs to the topic. Reply with the number only.`

// Options configure the OpenAI scorer. Fields mirror a minimal subset of
// Chat Completion parameters; extend via functional options without
// breaking callers.
type Options struct {
	Model       string
	Temperature float64

	// Logger receives scoring failures; a ScoreFunc cannot return an error,
	// so failures are logged and scored as 0.
	Logger logging.Logger
}

// Scorer rates message/intent fit via the OpenAI Chat Completions API.
type Scorer struct {
	client *openai.Client
	opts   Options
}

// New creates a scorer using the default OpenAI client (API key from the
// environment).
func New(optFns ...func(o *Options)) *Scorer {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a scorer from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Scorer {
	opts := Options{
		Model:       openai.ChatModelGPT4oMini,
		Temperature: 0,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scorer{client: client, opts: opts}
}

// Score rates how well the message matches the intent description.
func (s *Scorer) Score(ctx context.Context, intent, message string) (float64, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       s.opts.Model,
		Temperature: openai.Float(s.opts.Temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf("Topic: %s\nMessage: %s", intent, message)),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("openai returned no choices")
	}
	return parseConfidence(resp.Choices[0].Message.Content)
}

// ScoreFunc adapts the scorer to a topic's score function for one intent
// description. API failures score 0 so a flaky backend degrades to "no
// match" instead of failing the routing step.
func (s *Scorer) ScoreFunc(ctx context.Context, intent string) core.ScoreFunc {
	return func(message string) float64 {
		score, err := s.Score(ctx, intent, message)
		if err != nil {
			s.opts.Logger.Warn("intent scoring failed", "intent", intent, "error", err)
			return 0
		}
		return score
	}
}

// parseConfidence extracts the numeric reply, tolerating surrounding
// whitespace or a trailing period.
func parseConfidence(reply string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(reply), ".")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable confidence reply %q: %w", reply, err)
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, nil
}
