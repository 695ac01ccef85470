package guardian

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harun/guardian/pkg/checkpoint"
	"github.com/harun/guardian/pkg/classifier"
	"github.com/harun/guardian/pkg/history"
	"github.com/harun/guardian/pkg/portia"
	"github.com/harun/guardian/pkg/prompt"
	"github.com/harun/guardian/pkg/slack"
	"github.com/rs/zerolog"
)

// Execution modes.
const (
	ModePlatform = "platform"
	ModeLocal    = "local"
)

// PlanRunner drives a plan on the hosted platform.
type PlanRunner interface {
	Plan(ctx context.Context, query string) (*portia.Plan, error)
	RunPlan(ctx context.Context, plan *portia.Plan, schema map[string]any) (*portia.PlanRun, error)
	WaitForReady(ctx context.Context, run *portia.PlanRun) (*portia.PlanRun, error)
}

// MessageFetcher reads recent channel history.
type MessageFetcher interface {
	ConversationsHistory(ctx context.Context, channelID string, limit int) ([]slack.Message, error)
}

// MessageClassifier labels messages for child-safety risk.
type MessageClassifier interface {
	ClassifyAll(ctx context.Context, msgs []slack.Message) (all []classifier.Verdict, concerning []classifier.Verdict, err error)
}

// AlertSender delivers the parent alert email.
type AlertSender interface {
	SendAlert(to string, alerts []classifier.Verdict, scannedCount int) error
}

// RunRecorder persists scan outcomes.
type RunRecorder interface {
	Record(run history.Run) (history.Run, error)
}

// Config holds monitor configuration.
type Config struct {
	ParentEmail  string
	ChannelID    string
	Mode         string
	MessageLimit int
}

// Monitor runs guardian scans: load the checkpoint, execute the scan
// pipeline in the configured mode, validate the result, and write the
// checkpoint back.
type Monitor struct {
	cfg         Config
	checkpoints *checkpoint.Store
	platform    PlanRunner
	fetcher     MessageFetcher
	classifier  MessageClassifier
	mailer      AlertSender
	recorder    RunRecorder
	logger      zerolog.Logger
}

// Options wires the monitor's collaborators. Platform is required in
// platform mode; Fetcher, Classifier, and Mailer in local mode.
// Recorder is optional.
type Options struct {
	Config      Config
	Checkpoints *checkpoint.Store
	Platform    PlanRunner
	Fetcher     MessageFetcher
	Classifier  MessageClassifier
	Mailer      AlertSender
	Recorder    RunRecorder
	Logger      zerolog.Logger
}

// New creates a monitor.
func New(opts Options) (*Monitor, error) {
	cfg := opts.Config
	if cfg.ParentEmail == "" {
		return nil, fmt.Errorf("parent email is required")
	}
	if cfg.ChannelID == "" {
		return nil, fmt.Errorf("channel ID is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = ModePlatform
	}
	if cfg.MessageLimit <= 0 {
		cfg.MessageLimit = prompt.DefaultMessageLimit
	}
	if opts.Checkpoints == nil {
		return nil, fmt.Errorf("checkpoint store is required")
	}

	switch cfg.Mode {
	case ModePlatform:
		if opts.Platform == nil {
			return nil, fmt.Errorf("platform client is required in platform mode")
		}
	case ModeLocal:
		if opts.Fetcher == nil || opts.Classifier == nil {
			return nil, fmt.Errorf("message fetcher and classifier are required in local mode")
		}
	default:
		return nil, fmt.Errorf("unknown mode: %s", cfg.Mode)
	}

	return &Monitor{
		cfg:         cfg,
		checkpoints: opts.Checkpoints,
		platform:    opts.Platform,
		fetcher:     opts.Fetcher,
		classifier:  opts.Classifier,
		mailer:      opts.Mailer,
		recorder:    opts.Recorder,
		logger:      opts.Logger.With().Str("component", "guardian").Logger(),
	}, nil
}

// Scan performs one guardian scan and returns the validated result.
func (m *Monitor) Scan(ctx context.Context) (portia.RunResult, error) {
	scanID := uuid.New().String()
	logger := m.logger.With().Str("scan_id", scanID).Str("mode", m.cfg.Mode).Logger()

	cp := m.checkpoints.Load()
	if cp.LastTS != "" {
		logger.Info().Str("last_ts", cp.LastTS).Msg("Processing messages newer than checkpoint")
	} else {
		logger.Info().Int("limit", m.cfg.MessageLimit).Msg("No checkpoint, processing full message window")
	}

	var (
		result portia.RunResult
		err    error
	)
	switch m.cfg.Mode {
	case ModeLocal:
		result, err = m.scanLocal(ctx, logger, cp)
	default:
		result, err = m.scanPlatform(ctx, logger)
	}
	if err != nil {
		m.record(logger, result, "failed")
		return portia.RunResult{}, err
	}

	if result.LastTS != nil && *result.LastTS != "" {
		if saveErr := m.checkpoints.Save(*result.LastTS); saveErr != nil {
			logger.Error().Err(saveErr).Msg("Failed to save checkpoint")
		} else if !m.checkpoints.Verify(*result.LastTS) {
			logger.Warn().Msg("Checkpoint verification mismatch")
		}
	} else {
		logger.Info().Msg("No new last_ts, checkpoint not updated")
	}

	m.record(logger, result, "completed")

	logger.Info().
		Int("scanned", result.ScannedCount).
		Int("alerted", result.AlertedCount).
		Msg("Scan complete")
	return result, nil
}

// scanPlatform delegates the whole pipeline to the hosted planner. The
// plan itself re-reads the checkpoint file, so only the file path is
// passed along.
func (m *Monitor) scanPlatform(ctx context.Context, logger zerolog.Logger) (portia.RunResult, error) {
	query, err := prompt.Build(prompt.Params{
		ParentEmail:  m.cfg.ParentEmail,
		ChannelID:    m.cfg.ChannelID,
		StateFile:    m.checkpoints.Path(),
		MessageLimit: m.cfg.MessageLimit,
	})
	if err != nil {
		return portia.RunResult{}, err
	}

	plan, err := m.platform.Plan(ctx, query)
	if err != nil {
		return portia.RunResult{}, err
	}
	logger.Info().Str("plan_id", plan.ID).Msg("Plan generated, running")

	run, err := m.platform.RunPlan(ctx, plan, portia.ResultSchema())
	if err != nil {
		return portia.RunResult{}, err
	}

	if run.State == portia.StateNeedClarification {
		logger.Info().Str("run_id", run.ID).Msg("OAuth authentication required, waiting")
		run, err = m.platform.WaitForReady(ctx, run)
		if err != nil {
			return portia.RunResult{}, err
		}
		logger.Info().Msg("Authentication completed")
	}

	if run.State != portia.StateComplete {
		return portia.RunResult{}, fmt.Errorf("plan run finished in state %s", run.State)
	}

	return portia.CoerceResult(run.Outputs.FinalOutput.Value), nil
}

// scanLocal runs the fetch/filter/classify/alert pipeline in-process.
func (m *Monitor) scanLocal(ctx context.Context, logger zerolog.Logger, cp checkpoint.Checkpoint) (portia.RunResult, error) {
	msgs, err := m.fetcher.ConversationsHistory(ctx, m.cfg.ChannelID, m.cfg.MessageLimit)
	if err != nil {
		return portia.RunResult{}, fmt.Errorf("failed to fetch channel history: %w", err)
	}

	toProcess := FilterNew(msgs, cp.LastTS)
	logger.Info().Int("fetched", len(msgs)).Int("new", len(toProcess)).Msg("Filtered messages")

	all, concerning, err := m.classifier.ClassifyAll(ctx, toProcess)
	if err != nil {
		return portia.RunResult{}, err
	}

	if len(concerning) > 0 && m.mailer != nil {
		// Email failures must not fail the scan.
		if err := m.mailer.SendAlert(m.cfg.ParentEmail, concerning, len(all)); err != nil {
			logger.Error().Err(err).Msg("Failed to send alert email")
		}
	}

	result := portia.RunResult{
		ScannedCount: len(all),
		AlertedCount: len(concerning),
		SafetyStatus: "completed",
	}
	if latest := LatestTS(toProcess); latest != "" {
		result.LastTS = &latest
	}
	return result, nil
}

// record writes the run to history when a recorder is configured.
func (m *Monitor) record(logger zerolog.Logger, result portia.RunResult, status string) {
	if m.recorder == nil {
		return
	}

	run := history.Run{
		Mode:         m.cfg.Mode,
		ScannedCount: result.ScannedCount,
		AlertedCount: result.AlertedCount,
		Status:       status,
	}
	if result.LastTS != nil {
		run.LastTS = *result.LastTS
	}
	if _, err := m.recorder.Record(run); err != nil {
		logger.Warn().Err(err).Msg("Failed to record run history")
	}
}
