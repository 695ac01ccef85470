package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/harun/guardian/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var watchSchedule string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run guardian scans on a schedule",
	Long: `Run scans continuously on a cron schedule until interrupted.
Edits to the config file are picked up without a restart.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron schedule (overrides config, e.g. \"*/15 * * * *\")")
	rootCmd.AddCommand(watchCmd)
}

// watchState holds the runtime the scheduler scans with. Config
// reloads swap it and ticks read it through the lock, so a skipped
// tick never races a swap.
type watchState struct {
	mu sync.Mutex
	rt *runtime
}

func (s *watchState) current() *runtime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rt
}

func (s *watchState) swap(next *runtime) *runtime {
	s.mu.Lock()
	old := s.rt
	s.rt = next
	s.mu.Unlock()
	return old
}

func runWatch(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	state := &watchState{rt: rt}
	// The runtime is swapped on config reload; close whichever is
	// current on exit.
	defer func() { state.current().close() }()

	schedule := rt.cfg.Watch.Schedule
	if watchSchedule != "" {
		schedule = watchSchedule
	}
	if schedule == "" {
		return fmt.Errorf("no watch schedule configured")
	}

	zl := rt.log.GetZerolog()
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// One scan at a time; a slow scan skips the next tick.
	var scanMu sync.Mutex
	runOnce := func() {
		if !scanMu.TryLock() {
			zl := state.current().log.GetZerolog()
			zl.Warn().Msg("Previous scan still running, skipping tick")
			return
		}
		defer scanMu.Unlock()

		rt := state.current()
		log := rt.log.GetZerolog()
		result, err := rt.monitor.Scan(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Scheduled scan failed")
			return
		}
		log.Info().Int("scanned", result.ScannedCount).Int("alerted", result.AlertedCount).
			Msg("Scheduled scan finished")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, runOnce); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	reload, err := watchConfigFile(ctx, zl)
	if err != nil {
		zl.Warn().Err(err).Msg("Config file watching disabled")
	}

	zl.Info().Str("schedule", schedule).Msg("Guardian watch started")
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	// First scan immediately rather than waiting for the first tick.
	go runOnce()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case sig := <-sigCh:
			zl.Info().Str("signal", sig.String()).Msg("Shutting down")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-reload:
			zl.Info().Msg("Config change detected, rebuilding runtime")
			next, err := buildRuntime()
			if err != nil {
				zl.Error().Err(err).Msg("Reload failed, keeping previous configuration")
				continue
			}
			// Wait out any in-flight scan so it finishes against the
			// runtime it started with, then swap.
			scanMu.Lock()
			old := state.swap(next)
			scanMu.Unlock()
			old.close()
			zl = next.log.GetZerolog()
		}
	}
}

// watchConfigFile emits on the returned channel whenever the config
// file changes. The parent directory is watched rather than the file
// itself so rename-replace saves keep being seen after the first swap.
func watchConfigFile(ctx context.Context, zl zerolog.Logger) (<-chan struct{}, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	reload := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename) {
					select {
					case reload <- struct{}{}:
					default:
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				zl.Warn().Err(err).Msg("Config watcher error")
			}
		}
	}()
	return reload, nil
}
