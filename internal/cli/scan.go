package cli

import (
	"fmt"

	"github.com/harun/guardian/pkg/guardian"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one guardian scan",
	Long: `Run a single scan of the configured Slack channel: new messages are
classified for child-safety risk and the parent is emailed when
anything concerning turns up. The last processed timestamp is
checkpointed so the next scan only sees new messages.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	result, err := rt.monitor.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), guardian.Summary(result))
	return nil
}
