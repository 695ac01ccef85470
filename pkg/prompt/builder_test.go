package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Run("interpolates parameters", func(t *testing.T) {
		out, err := Build(Params{
			ParentEmail: "parent@example.com",
			ChannelID:   "C0123456789",
		})
		require.NoError(t, err)

		assert.Contains(t, out, "parent_email = parent@example.com")
		assert.Contains(t, out, "channel_id = C0123456789")
		assert.Contains(t, out, "channel_id `C0123456789` with limit 50")
	})

	t.Run("defaults state file and limit", func(t *testing.T) {
		out, err := Build(Params{
			ParentEmail: "parent@example.com",
			ChannelID:   "C0123456789",
		})
		require.NoError(t, err)

		assert.Contains(t, out, ".guardian_state.json")
		assert.Contains(t, out, "last 50 messages")
	})

	t.Run("custom state file and limit", func(t *testing.T) {
		out, err := Build(Params{
			ParentEmail:  "parent@example.com",
			ChannelID:    "C0123456789",
			StateFile:    "/tmp/guardian/state.json",
			MessageLimit: 100,
		})
		require.NoError(t, err)

		assert.Contains(t, out, "/tmp/guardian/state.json")
		assert.Contains(t, out, "with limit 100")
	})

	t.Run("pins the structured output schema", func(t *testing.T) {
		out, err := Build(Params{
			ParentEmail: "parent@example.com",
			ChannelID:   "C0123456789",
		})
		require.NoError(t, err)

		for _, field := range []string{"scanned_count", "alerted_count", "last_ts", "safety_status"} {
			assert.Contains(t, out, field)
		}
		assert.True(t, strings.Contains(out, "MUST be ONLY a valid JSON object"))
	})

	t.Run("missing parent email", func(t *testing.T) {
		_, err := Build(Params{ChannelID: "C0123456789"})
		assert.Error(t, err)
	})

	t.Run("missing channel ID", func(t *testing.T) {
		_, err := Build(Params{ParentEmail: "parent@example.com"})
		assert.Error(t, err)
	})
}
