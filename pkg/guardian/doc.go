// Package guardian orchestrates child-safety scans of a Slack channel.
//
// Invariants:
// - Checkpoint loads never fail; a broken state file means a full-window scan.
// - The checkpoint only advances after a scan completes with a last_ts.
// - Alert email failures are logged, never fatal to the scan.
//
// Usage:
//
//	m, _ := guardian.New(guardian.Options{
//		Config:      guardian.Config{ParentEmail: "parent@example.com", ChannelID: "C0123456789"},
//		Checkpoints: checkpoint.NewStore("", logger),
//		Platform:    client,
//		Logger:      logger,
//	})
//	result, _ := m.Scan(ctx)
//	_ = result
package guardian
