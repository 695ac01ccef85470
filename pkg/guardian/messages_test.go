package guardian

import (
	"testing"

	"github.com/harun/guardian/pkg/slack"
	"github.com/stretchr/testify/assert"
)

func sampleMessages() []slack.Message {
	return []slack.Message{
		{TS: "1712345680.000300", User: "U02", Text: "newest"},
		{TS: "1712345679.000200", User: "U01", Text: "middle"},
		{TS: "1712345678.000100", User: "U02", Text: "oldest"},
	}
}

func TestFilterNew(t *testing.T) {
	t.Run("empty checkpoint keeps everything", func(t *testing.T) {
		msgs := sampleMessages()
		assert.Equal(t, msgs, FilterNew(msgs, ""))
	})

	t.Run("keeps only newer messages", func(t *testing.T) {
		out := FilterNew(sampleMessages(), "1712345678.000100")
		assert.Len(t, out, 2)
		for _, msg := range out {
			assert.NotEqual(t, "oldest", msg.Text)
		}
	})

	t.Run("checkpoint equal to newest filters everything", func(t *testing.T) {
		out := FilterNew(sampleMessages(), "1712345680.000300")
		assert.Empty(t, out)
	})

	t.Run("unparsable checkpoint keeps everything", func(t *testing.T) {
		msgs := sampleMessages()
		assert.Equal(t, msgs, FilterNew(msgs, "not-a-timestamp"))
	})

	t.Run("unparsable message ts fails open", func(t *testing.T) {
		msgs := []slack.Message{
			{TS: "1712345680.000300", Text: "ok"},
			{TS: "garbage", Text: "broken"},
		}
		assert.Equal(t, msgs, FilterNew(msgs, "1712345679.000200"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, FilterNew(nil, "1712345678.000100"))
	})
}

func TestLatestTS(t *testing.T) {
	t.Run("finds numeric maximum", func(t *testing.T) {
		assert.Equal(t, "1712345680.000300", LatestTS(sampleMessages()))
	})

	t.Run("skips unparsable timestamps", func(t *testing.T) {
		msgs := []slack.Message{
			{TS: "garbage"},
			{TS: "1712345678.000100"},
		}
		assert.Equal(t, "1712345678.000100", LatestTS(msgs))
	})

	t.Run("empty input yields empty string", func(t *testing.T) {
		assert.Empty(t, LatestTS(nil))
	})
}
