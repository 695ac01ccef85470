package guardian

import (
	"strconv"

	"github.com/harun/guardian/pkg/slack"
)

// FilterNew returns the messages newer than lastTS. The filter fails
// open: an empty or unparsable lastTS, or any message carrying a
// non-numeric timestamp, means the whole window is processed rather
// than risk skipping a concerning message.
func FilterNew(msgs []slack.Message, lastTS string) []slack.Message {
	if lastTS == "" {
		return msgs
	}

	last, err := strconv.ParseFloat(lastTS, 64)
	if err != nil {
		return msgs
	}

	newer := make([]slack.Message, 0, len(msgs))
	for _, msg := range msgs {
		ts, err := strconv.ParseFloat(msg.TS, 64)
		if err != nil {
			return msgs
		}
		if ts > last {
			newer = append(newer, msg)
		}
	}
	return newer
}

// LatestTS returns the numerically greatest timestamp in msgs, or ""
// when there is none to compare.
func LatestTS(msgs []slack.Message) string {
	latest := ""
	var latestVal float64
	for _, msg := range msgs {
		ts, err := strconv.ParseFloat(msg.TS, 64)
		if err != nil {
			continue
		}
		if latest == "" || ts > latestVal {
			latest = msg.TS
			latestVal = ts
		}
	}
	return latest
}
