package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envKeys enumerates every config key. Viper's AutomaticEnv does not
// surface env-only keys to Unmarshal, so each one is bound explicitly
// to make GUARDIAN_* variables work without a config file.
var envKeys = []string{
	"parent_email",
	"slack_channel_id",
	"mode",
	"state_file",
	"message_limit",
	"data_dir",
	"portia.api_key",
	"portia.base_url",
	"portia.timeout_seconds",
	"slack.bot_token",
	"classifier.provider",
	"classifier.api_key",
	"classifier.model",
	"classifier.max_retries",
	"smtp.host",
	"smtp.port",
	"smtp.username",
	"smtp.password",
	"smtp.from",
	"history.enabled",
	"history.path",
	"watch.schedule",
	"logging.level",
	"logging.file",
	"logging.redaction",
}

// Loader handles configuration loading
type Loader struct {
	configPath string
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".guardian", "guardian.json"), nil
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads the configuration from file and environment. The original
// deployment configured everything through three environment variables,
// so PORTIA_API_KEY, PARENT_EMAIL, and SLACK_CHANNEL_ID are honored
// alongside the GUARDIAN_* prefix.
func (l *Loader) Load() (*Config, error) {
	configPath := l.configPath
	if configPath == "" {
		var err error
		configPath, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.SetEnvPrefix("GUARDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		v.MustBindEnv(key)
	}

	// Config file is optional; the env contract alone is enough.
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Legacy env contract overrides everything.
	if key := os.Getenv("PORTIA_API_KEY"); key != "" {
		cfg.Portia.APIKey = key
	}
	if email := os.Getenv("PARENT_EMAIL"); email != "" {
		cfg.ParentEmail = email
	}
	if channel := os.Getenv("SLACK_CHANNEL_ID"); channel != "" {
		cfg.SlackChannelID = channel
	}
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
		cfg.Slack.BotToken = token
	}

	// Derive paths
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".guardian")
	}
	if cfg.StateFile == "" {
		cfg.StateFile = ".guardian_state.json"
	}
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(cfg.DataDir, "history.db")
	}

	return cfg, nil
}

// Save saves the configuration to file
func (l *Loader) Save(cfg *Config) error {
	configPath := l.configPath
	if configPath == "" {
		var err error
		configPath, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.Set("parent_email", cfg.ParentEmail)
	v.Set("slack_channel_id", cfg.SlackChannelID)
	v.Set("mode", cfg.Mode)
	v.Set("state_file", cfg.StateFile)
	v.Set("message_limit", cfg.MessageLimit)
	v.Set("portia", cfg.Portia)
	v.Set("slack", cfg.Slack)
	v.Set("classifier", cfg.Classifier)
	v.Set("smtp", cfg.SMTP)
	v.Set("history", cfg.History)
	v.Set("watch", cfg.Watch)
	v.Set("logging", cfg.Logging)
	v.Set("data_dir", cfg.DataDir)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
