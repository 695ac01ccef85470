package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Params are the runtime values interpolated into the plan prompt.
type Params struct {
	ParentEmail  string
	ChannelID    string
	StateFile    string
	MessageLimit int
}

// DefaultMessageLimit is the Slack history window when no checkpoint exists.
const DefaultMessageLimit = 50

// guardianTemplate is the fixed plan instruction sent to the planning
// platform. The platform's planner interprets the steps; nothing here
// executes locally. The final-output footer pins the structured schema
// the run must return.
const guardianTemplate = `You are the Guardian Agent for child safety monitoring.

OBJECTIVE: Monitor Slack messages received by a child and alert parents about suspicious/predatory content.

INPUTS:
- parent_email = {{.ParentEmail}}
- channel_id = {{.ChannelID}}

STEPS:
1) Use File reader tool to read ` + "`{{.StateFile}}`" + `. Handle these cases:
   - If file doesn't exist: set ` + "`state_last_ts`" + ` = empty string (will process last {{.MessageLimit}} messages)
   - If file exists but is empty: set ` + "`state_last_ts`" + ` = empty string
   - If file exists but contains invalid JSON: set ` + "`state_last_ts`" + ` = empty string
   - If file exists and is valid JSON: get ` + "`last_ts`" + ` value, or empty string if key missing
   Save the result as ` + "`state_last_ts`" + `.

2) Use 'Portia Get Slack Conversation History' tool to get recent messages from channel_id ` + "`{{.ChannelID}}`" + ` with limit {{.MessageLimit}}. Save as ` + "`slack_messages`" + `.

3) Use LLM tool to filter messages. IMPORTANT: If ANY error occurs or ` + "`state_last_ts`" + ` is empty, process ALL {{.MessageLimit}} messages.
   If ` + "`state_last_ts`" + ` exists, try to filter newer messages. If filtering fails for any reason, fallback to processing ALL {{.MessageLimit}} messages.
   Return JSON with: messages_to_process (array), message_count (number).

4) Use LLM tool to classify EACH message in ` + "`messages_to_process`" + ` for child safety:
   - SAFE
   - SUSPICIOUS
   - PREDATORY
   Return JSON with results array [{ts, text, user, label, reasons}], latest_ts (max timestamp), and scanned_count.

5) Filter results for SUSPICIOUS or PREDATORY only. Build alerts payload with: alerts array, alerted_count, latest_ts, scanned_count.

6) If alerted_count > 0:
   a) Use 'Portia Google Send Email Tool' with payload:
      - to: {{.ParentEmail}}
      - subject: "GUARDIAN ALERT: {alerted_count} concerning message(s) detected"
      - body: (generate HTML, not plain text):
          <html>
            <body style="font-family:Arial, sans-serif; color:#333;">
              <h2 style="color:#b00020;">Guardian Alert</h2>
              <p>{alerted_count} concerning message(s) were detected in your child's Slack channel:</p>
              <table border="1" cellpadding="6" cellspacing="0" style="border-collapse:collapse;">
                <tr style="background-color:#f2f2f2;">
                  <th>Timestamp</th>
                  <th>User</th>
                  <th>Label</th>
                  <th>Reasons</th>
                  <th>Message</th>
                </tr>
                <!-- Repeat for each flagged message -->
                <tr>
                  <td>{ts}</td>
                  <td>{user}</td>
                  <td>{label}</td>
                  <td>{reasons}</td>
                  <td>{text}</td>
                </tr>
              </table>
              <p style="margin-top:20px;">Stay safe,<br><b>Guardian Agent</b></p>
            </body>
          </html>
   b) If email sending fails, log error but continue.

7) Return structured output: scanned_count, alerted_count, last_ts=latest_ts.

IMPORTANT:
The final output MUST be ONLY a valid JSON object exactly in this schema:

{
  "scanned_count": <int>,
  "alerted_count": <int>,
  "last_ts": <string or null>,
  "safety_status": "completed"
}

Do not output anything else, no numbers, no text, no confirmation lines.
`

var tmpl = template.Must(template.New("guardian").Parse(guardianTemplate))

// Build renders the guardian plan prompt for the given parameters.
func Build(params Params) (string, error) {
	if params.ParentEmail == "" {
		return "", fmt.Errorf("parent email is required")
	}
	if params.ChannelID == "" {
		return "", fmt.Errorf("channel ID is required")
	}
	if params.StateFile == "" {
		params.StateFile = ".guardian_state.json"
	}
	if params.MessageLimit <= 0 {
		params.MessageLimit = DefaultMessageLimit
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, params); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return sb.String(), nil
}
