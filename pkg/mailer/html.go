package mailer

import (
	"fmt"
	"html"
	"strings"

	"github.com/harun/guardian/pkg/classifier"
)

// buildAlertHTML renders the alert email body. The layout matches the
// HTML skeleton embedded in the platform plan prompt so parents get the
// same email in both modes.
func buildAlertHTML(alerts []classifier.Verdict) string {
	var sb strings.Builder

	sb.WriteString(`<html>
  <body style="font-family:Arial, sans-serif; color:#333;">
    <h2 style="color:#b00020;">Guardian Alert</h2>
`)
	fmt.Fprintf(&sb, "    <p>%d concerning message(s) were detected in your child's Slack channel:</p>\n", len(alerts))
	sb.WriteString(`    <table border="1" cellpadding="6" cellspacing="0" style="border-collapse:collapse;">
      <tr style="background-color:#f2f2f2;">
        <th>Timestamp</th>
        <th>User</th>
        <th>Label</th>
        <th>Reasons</th>
        <th>Message</th>
      </tr>
`)

	for _, alert := range alerts {
		sb.WriteString("      <tr>\n")
		fmt.Fprintf(&sb, "        <td>%s</td>\n", html.EscapeString(alert.TS))
		fmt.Fprintf(&sb, "        <td>%s</td>\n", html.EscapeString(alert.User))
		fmt.Fprintf(&sb, "        <td>%s</td>\n", html.EscapeString(string(alert.Label)))
		fmt.Fprintf(&sb, "        <td>%s</td>\n", html.EscapeString(alert.Reasons))
		fmt.Fprintf(&sb, "        <td>%s</td>\n", html.EscapeString(alert.Text))
		sb.WriteString("      </tr>\n")
	}

	sb.WriteString(`    </table>
    <p style="margin-top:20px;">Stay safe,<br><b>Guardian Agent</b></p>
  </body>
</html>
`)
	return sb.String()
}
