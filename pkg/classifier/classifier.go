package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harun/guardian/pkg/slack"
	"github.com/rs/zerolog"
)

// Label is a child-safety classification label.
type Label string

const (
	LabelSafe       Label = "SAFE"
	LabelSuspicious Label = "SUSPICIOUS"
	LabelPredatory  Label = "PREDATORY"
)

// Concerning reports whether the label warrants a parent alert.
func (l Label) Concerning() bool {
	return l == LabelSuspicious || l == LabelPredatory
}

// Verdict is the classification outcome for a single message.
type Verdict struct {
	TS      string `json:"ts"`
	User    string `json:"user"`
	Text    string `json:"text"`
	Label   Label  `json:"label"`
	Reasons string `json:"reasons"`
}

// Classifier labels Slack messages for child-safety risk using an LLM
// provider.
type Classifier struct {
	provider   LLMProvider
	model      string
	maxRetries int
	retryDelay time.Duration
	logger     zerolog.Logger
}

// Config holds classifier configuration.
type Config struct {
	Provider   LLMProvider
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	Logger     zerolog.Logger
}

const systemPrompt = `You are a child-safety content classifier. You label chat messages sent to a child as SAFE, SUSPICIOUS, or PREDATORY.
SUSPICIOUS covers requests for personal information, secrecy, meeting up, moving to another platform, or age-inappropriate topics.
PREDATORY covers grooming patterns, sexual content directed at a minor, or explicit attempts to isolate the child.
Respond with ONLY a JSON object: {"label": "<SAFE|SUSPICIOUS|PREDATORY>", "reasons": "<short explanation>"}. No other text.`

// New creates a classifier.
func New(cfg Config) (*Classifier, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("LLM provider is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	return &Classifier{
		provider:   cfg.Provider,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger.With().Str("component", "classifier").Logger(),
	}, nil
}

// Classify labels a single message. Provider errors that look transient
// (rate limits, 5xx) are retried with backoff.
func (c *Classifier) Classify(ctx context.Context, msg slack.Message) (Verdict, error) {
	request := LLMRequest{
		Model:        c.model,
		SystemPrompt: systemPrompt,
		UserPrompt:   fmt.Sprintf("Message from user %s:\n%s", msg.User, msg.Text),
		MaxTokens:    256,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		response, err := c.provider.Complete(ctx, request)
		if err != nil {
			lastErr = err
			if !IsRetryableError(err) || attempt == c.maxRetries {
				break
			}
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("Retrying classification")
			select {
			case <-ctx.Done():
				return Verdict{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
			continue
		}

		verdict, err := parseVerdict(response.Content)
		if err != nil {
			// A malformed completion is worth one more attempt.
			lastErr = err
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("Unparsable classification output")
			continue
		}

		verdict.TS = msg.TS
		verdict.User = msg.User
		verdict.Text = msg.Text
		return verdict, nil
	}

	return Verdict{}, fmt.Errorf("classification failed: %w", lastErr)
}

// ClassifyAll labels every message and partitions out the concerning
// ones.
func (c *Classifier) ClassifyAll(ctx context.Context, msgs []slack.Message) ([]Verdict, []Verdict, error) {
	verdicts := make([]Verdict, 0, len(msgs))
	var concerning []Verdict

	for _, msg := range msgs {
		verdict, err := c.Classify(ctx, msg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to classify message %s: %w", msg.TS, err)
		}
		verdicts = append(verdicts, verdict)
		if verdict.Label.Concerning() {
			c.logger.Warn().Str("ts", verdict.TS).Str("label", string(verdict.Label)).
				Msg("Concerning message detected")
			concerning = append(concerning, verdict)
		}
	}

	return verdicts, concerning, nil
}

// parseVerdict decodes the model's JSON verdict, tolerating code fences
// and surrounding prose.
func parseVerdict(content string) (Verdict, error) {
	trimmed := strings.TrimSpace(content)

	// Strip markdown fences some models insist on.
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			trimmed = trimmed[start : end+1]
		}
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(trimmed), &verdict); err != nil {
		return Verdict{}, fmt.Errorf("invalid verdict JSON: %w", err)
	}

	switch verdict.Label {
	case LabelSafe, LabelSuspicious, LabelPredatory:
		return verdict, nil
	default:
		return Verdict{}, fmt.Errorf("unknown label %q", verdict.Label)
	}
}
