package cli

import (
	"fmt"

	"github.com/harun/guardian/pkg/checkpoint"
	"github.com/harun/guardian/pkg/history"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var statusRuns int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint and recent scan history",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusRuns, "runs", 5, "number of recent runs to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	cp := checkpoint.NewStore(cfg.StateFile, zerolog.Nop()).Load()
	fmt.Fprintf(out, "Channel:     %s\n", cfg.SlackChannelID)
	fmt.Fprintf(out, "Mode:        %s\n", cfg.Mode)
	if cp.LastTS != "" {
		fmt.Fprintf(out, "Checkpoint:  %s\n", cp.LastTS)
	} else {
		fmt.Fprintf(out, "Checkpoint:  none (next scan processes last %d messages)\n", cfg.MessageLimit)
	}

	if !cfg.History.Enabled {
		fmt.Fprintln(out, "History:     disabled")
		return nil
	}

	store, err := history.Open(cfg.History.Path, zerolog.Nop())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(statusRuns)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "History:     no scans recorded yet")
		return nil
	}

	fmt.Fprintf(out, "\nRecent scans:\n")
	for _, run := range runs {
		fmt.Fprintf(out, "  %s  %-9s scanned=%-4d alerted=%-3d %s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Status, run.ScannedCount, run.AlertedCount, run.Mode)
	}
	return nil
}
