package config

// Config represents the main Guardian configuration
type Config struct {
	// Who gets alerted and what gets watched
	ParentEmail    string `json:"parent_email" mapstructure:"parent_email"`
	SlackChannelID string `json:"slack_channel_id" mapstructure:"slack_channel_id"`

	// Execution mode: platform (hosted planner) or local (in-process pipeline)
	Mode string `json:"mode" mapstructure:"mode"`

	// Checkpoint state file
	StateFile string `json:"state_file" mapstructure:"state_file"`

	// Slack history window per scan
	MessageLimit int `json:"message_limit" mapstructure:"message_limit"`

	// Hosted platform
	Portia PortiaConfig `json:"portia" mapstructure:"portia"`

	// Local-mode collaborators
	Slack      SlackConfig      `json:"slack" mapstructure:"slack"`
	Classifier ClassifierConfig `json:"classifier" mapstructure:"classifier"`
	SMTP       SMTPConfig       `json:"smtp" mapstructure:"smtp"`

	// Scan history database
	History HistoryConfig `json:"history" mapstructure:"history"`

	// Recurring scans for the watch command
	Watch WatchConfig `json:"watch" mapstructure:"watch"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// PortiaConfig holds hosted platform settings
type PortiaConfig struct {
	APIKey         string `json:"api_key" mapstructure:"api_key"`
	BaseURL        string `json:"base_url" mapstructure:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// SlackConfig holds Slack Web API settings for local mode
type SlackConfig struct {
	BotToken string `json:"bot_token" mapstructure:"bot_token"`
}

// ClassifierConfig holds LLM classification settings for local mode
type ClassifierConfig struct {
	Provider   string `json:"provider" mapstructure:"provider"` // anthropic, openai
	APIKey     string `json:"api_key" mapstructure:"api_key"`
	Model      string `json:"model" mapstructure:"model"`
	MaxRetries int    `json:"max_retries" mapstructure:"max_retries"`
}

// SMTPConfig holds alert email delivery settings for local mode
type SMTPConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     int    `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	From     string `json:"from" mapstructure:"from"`
}

// HistoryConfig holds scan history settings
type HistoryConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// WatchConfig holds recurring scan settings
type WatchConfig struct {
	Schedule string `json:"schedule" mapstructure:"schedule"` // cron expression
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with defaults applied
func DefaultConfig() *Config {
	return &Config{
		Mode:         "platform",
		MessageLimit: 50,
		Portia: PortiaConfig{
			TimeoutSeconds: 120,
		},
		Classifier: ClassifierConfig{
			Provider:   "anthropic",
			Model:      "claude-sonnet-4-20250514",
			MaxRetries: 3,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Watch: WatchConfig{
			Schedule: "*/15 * * * *",
		},
		Logging: LoggingConfig{
			Level:     "info",
			Redaction: true,
		},
	}
}
