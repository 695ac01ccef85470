package cli

import (
	"time"

	"github.com/harun/guardian/internal/config"
	"github.com/harun/guardian/internal/logger"
	"github.com/harun/guardian/pkg/checkpoint"
	"github.com/harun/guardian/pkg/classifier"
	"github.com/harun/guardian/pkg/guardian"
	"github.com/harun/guardian/pkg/history"
	"github.com/harun/guardian/pkg/mailer"
	"github.com/harun/guardian/pkg/portia"
	"github.com/harun/guardian/pkg/slack"
	"github.com/rs/zerolog"
)

// runtime bundles the wired collaborators a command needs.
type runtime struct {
	cfg     *config.Config
	log     *logger.Logger
	monitor *guardian.Monitor
	history *history.Store
}

// close releases runtime resources.
func (r *runtime) close() {
	if r.history != nil {
		r.history.Close()
	}
	if r.log != nil {
		r.log.Close()
	}
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRuntime wires a monitor from config.
func buildRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: log}
	zl := log.GetZerolog()

	opts := guardian.Options{
		Config: guardian.Config{
			ParentEmail:  cfg.ParentEmail,
			ChannelID:    cfg.SlackChannelID,
			Mode:         cfg.Mode,
			MessageLimit: cfg.MessageLimit,
		},
		Checkpoints: checkpoint.NewStore(cfg.StateFile, zl),
		Logger:      zl,
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path, zl)
		if err != nil {
			rt.close()
			return nil, err
		}
		rt.history = store
		opts.Recorder = store
	}

	switch cfg.Mode {
	case guardian.ModeLocal:
		if err := wireLocal(cfg, zl, &opts); err != nil {
			rt.close()
			return nil, err
		}
	default:
		client, err := portia.NewClient(portia.ClientConfig{
			APIKey:  cfg.Portia.APIKey,
			BaseURL: cfg.Portia.BaseURL,
			Timeout: time.Duration(cfg.Portia.TimeoutSeconds) * time.Second,
			Logger:  zl,
		})
		if err != nil {
			rt.close()
			return nil, err
		}
		opts.Platform = client
	}

	monitor, err := guardian.New(opts)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.monitor = monitor
	return rt, nil
}

// wireLocal attaches the in-process pipeline collaborators.
func wireLocal(cfg *config.Config, zl zerolog.Logger, opts *guardian.Options) error {
	slackClient, err := slack.NewClient(slack.ClientConfig{
		Token:  cfg.Slack.BotToken,
		Logger: zl,
	})
	if err != nil {
		return err
	}
	opts.Fetcher = slackClient

	provider, err := classifier.NewProvider(cfg.Classifier.Provider, cfg.Classifier.APIKey)
	if err != nil {
		return err
	}
	cls, err := classifier.New(classifier.Config{
		Provider:   provider,
		Model:      cfg.Classifier.Model,
		MaxRetries: cfg.Classifier.MaxRetries,
		Logger:     zl,
	})
	if err != nil {
		return err
	}
	opts.Classifier = cls

	// SMTP is optional: without it, concerning messages are logged and
	// counted but no email goes out.
	if cfg.SMTP.Host != "" {
		m, err := mailer.New(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Logger:   zl,
		})
		if err != nil {
			return err
		}
		opts.Mailer = m
	} else {
		zl.Warn().Msg("SMTP not configured, alerts will not be emailed")
	}

	return nil
}
