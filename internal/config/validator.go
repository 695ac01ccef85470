package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

var (
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	channelPattern = regexp.MustCompile(`^[CDG][A-Z0-9]{8,}$`)
)

// Validate checks a full config for the active mode.
func (v *Validator) Validate(cfg *Config) error {
	if err := v.ValidateEmail(cfg.ParentEmail); err != nil {
		return fmt.Errorf("PARENT_EMAIL: %w", err)
	}
	if err := v.ValidateChannelID(cfg.SlackChannelID); err != nil {
		return fmt.Errorf("SLACK_CHANNEL_ID: %w", err)
	}

	switch cfg.Mode {
	case "platform":
		if cfg.Portia.APIKey == "" {
			return fmt.Errorf("PORTIA_API_KEY is not set; add it to your environment or config file")
		}
	case "local":
		if cfg.Slack.BotToken == "" {
			return fmt.Errorf("slack bot token is required in local mode")
		}
		if err := v.ValidateProviderKey(cfg.Classifier.APIKey, cfg.Classifier.Provider); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown mode %q (expected platform or local)", cfg.Mode)
	}

	if cfg.Watch.Schedule != "" {
		if err := v.ValidateSchedule(cfg.Watch.Schedule); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEmail validates an email address format
func (v *Validator) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email address cannot be empty")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email address %q", email)
	}
	return nil
}

// ValidateChannelID validates a Slack channel ID
func (v *Validator) ValidateChannelID(channelID string) error {
	if channelID == "" {
		return fmt.Errorf("channel ID cannot be empty")
	}

	// Slack channel IDs look like C0123456789 (D for DMs, G for groups)
	if !channelPattern.MatchString(channelID) {
		return fmt.Errorf("invalid Slack channel ID %q", channelID)
	}
	return nil
}

// ValidateProviderKey validates an LLM provider API key format
func (v *Validator) ValidateProviderKey(key string, provider string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", provider)
	}

	switch provider {
	case "anthropic":
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case "openai":
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	default:
		return fmt.Errorf("unsupported provider: %s", provider)
	}
	return nil
}

// ValidateSchedule validates a cron expression
func (v *Validator) ValidateSchedule(expr string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return nil
}
