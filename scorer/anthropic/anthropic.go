// Package anthropic provides an LLM-backed intent scorer using the
// Anthropic Messages API. See the sibling openai package for the contract:
// the model replies with a bare confidence number in [0,1].
package anthropic

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/topicflow/core"
	"github.com/hupe1980/topicflow/logging"
)

const systemPrompt = `You are an intent classifier. Given a topic description and a user message, reply with a single number between 0 and 1: the confidence that the message belongs to the topic. Reply with the number only.`

// Options configure the Anthropic scorer.
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	APIKey    string

	// Logger receives scoring failures; a ScoreFunc cannot return an error,
	// so failures are logged and scored as 0.
	Logger logging.Logger
}

// Scorer rates message/intent fit via the Anthropic Messages API.
type Scorer struct {
	client *anthropic.Client
	opts   Options
}

// New creates a scorer using the official client.
func New(optFns ...func(o *Options)) *Scorer {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Scorer{client: &client, opts: opts}
}

// NewFromClient creates a scorer from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Scorer {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scorer{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 16,
		Logger:    logging.NoOpLogger{},
	}
}

// Score rates how well the message matches the intent description.
func (s *Scorer) Score(ctx context.Context, intent, message string) (float64, error) {
	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.opts.Model,
		MaxTokens: s.opts.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				fmt.Sprintf("Topic: %s\nMessage: %s", intent, message),
			)),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("anthropic api error: %w", err)
	}

	var reply string
	for _, block := range resp.Content {
		if block.Type == "text" {
			reply = block.AsText().Text
			break
		}
	}
	if reply == "" {
		return 0, fmt.Errorf("anthropic returned no text content")
	}
	return parseConfidence(reply)
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
