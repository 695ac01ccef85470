package guardian

import (
	"fmt"
	"strings"

	"github.com/harun/guardian/pkg/portia"
)

// Summary renders a human-readable scan report for the CLI.
func Summary(result portia.RunResult) string {
	var sb strings.Builder

	divider := strings.Repeat("=", 60)
	sb.WriteString(divider + "\n")
	sb.WriteString("GUARDIAN - SCAN COMPLETE\n")
	sb.WriteString(divider + "\n")
	fmt.Fprintf(&sb, "Messages scanned: %d\n", result.ScannedCount)
	fmt.Fprintf(&sb, "Alerts sent:      %d\n", result.AlertedCount)

	lastTS := "none"
	if result.LastTS != nil && *result.LastTS != "" {
		lastTS = *result.LastTS
	}
	fmt.Fprintf(&sb, "Last processed:   %s\n", lastTS)
	fmt.Fprintf(&sb, "Status:           %s\n", result.SafetyStatus)
	sb.WriteString(divider + "\n")

	if result.AlertedCount > 0 {
		sb.WriteString("PARENT HAS BEEN NOTIFIED - check email for details\n")
	} else {
		sb.WriteString("No concerning activity detected\n")
	}

	return sb.String()
}
