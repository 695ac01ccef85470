package mailer

import (
	"net/smtp"
	"testing"

	"github.com/harun/guardian/pkg/classifier"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer(t *testing.T) (*Mailer, *capturedSend) {
	t.Helper()
	m, err := New(Config{
		Host:   "smtp.example.com",
		From:   "guardian@example.com",
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	captured := &capturedSend{}
	m.send = captured.send
	return m, captured
}

type capturedSend struct {
	addr string
	from string
	to   []string
	msg  string
}

func (c *capturedSend) send(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	c.addr = addr
	c.from = from
	c.to = to
	c.msg = string(msg)
	return nil
}

func TestNew(t *testing.T) {
	t.Run("requires host", func(t *testing.T) {
		_, err := New(Config{From: "a@b.c"})
		assert.Error(t, err)
	})

	t.Run("requires from", func(t *testing.T) {
		_, err := New(Config{Host: "smtp.example.com"})
		assert.Error(t, err)
	})

	t.Run("defaults port", func(t *testing.T) {
		m, err := New(Config{Host: "smtp.example.com", From: "a@b.c", Logger: zerolog.Nop()})
		require.NoError(t, err)
		assert.Equal(t, 587, m.port)
	})
}

func TestSendAlert(t *testing.T) {
	alerts := []classifier.Verdict{
		{TS: "1.0", User: "U02", Label: classifier.LabelPredatory, Reasons: "grooming", Text: "our little secret"},
	}

	t.Run("sends formatted alert", func(t *testing.T) {
		m, captured := newTestMailer(t)

		require.NoError(t, m.SendAlert("parent@example.com", alerts, 50))

		assert.Equal(t, "smtp.example.com:587", captured.addr)
		assert.Equal(t, []string{"parent@example.com"}, captured.to)
		assert.Contains(t, captured.msg, "Subject: GUARDIAN ALERT: 1 concerning message(s) detected")
		assert.Contains(t, captured.msg, "Content-Type: text/html")
		assert.Contains(t, captured.msg, "<td>PREDATORY</td>")
		assert.Contains(t, captured.msg, "our little secret")
	})

	t.Run("escapes message content", func(t *testing.T) {
		m, captured := newTestMailer(t)

		hostile := []classifier.Verdict{
			{TS: "1.0", User: "U02", Label: classifier.LabelSuspicious, Reasons: "markup", Text: `<script>alert("x")</script>`},
		}
		require.NoError(t, m.SendAlert("parent@example.com", hostile, 1))

		assert.NotContains(t, captured.msg, "<script>")
		assert.Contains(t, captured.msg, "&lt;script&gt;")
	})

	t.Run("rejects empty recipient", func(t *testing.T) {
		m, _ := newTestMailer(t)
		assert.Error(t, m.SendAlert("", alerts, 1))
	})

	t.Run("rejects empty alerts", func(t *testing.T) {
		m, _ := newTestMailer(t)
		assert.Error(t, m.SendAlert("parent@example.com", nil, 1))
	})
}

func TestBuildAlertHTML(t *testing.T) {
	out := buildAlertHTML([]classifier.Verdict{
		{TS: "1.0", User: "U01", Label: classifier.LabelSuspicious, Reasons: "asks to meet", Text: "where do you live?"},
		{TS: "2.0", User: "U02", Label: classifier.LabelPredatory, Reasons: "grooming", Text: "keep this between us"},
	})

	assert.Contains(t, out, "2 concerning message(s)")
	assert.Contains(t, out, "<td>SUSPICIOUS</td>")
	assert.Contains(t, out, "<td>PREDATORY</td>")
	assert.Contains(t, out, "Guardian Agent")
}
