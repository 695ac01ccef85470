package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/harun/guardian/pkg/classifier"
	"github.com/rs/zerolog"
)

// Mailer sends guardian alert emails over SMTP.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   zerolog.Logger

	// send is swappable for tests.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// Config holds mailer configuration.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Logger   zerolog.Logger
}

// New creates a mailer.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}

	return &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		logger:   cfg.Logger.With().Str("component", "mailer").Logger(),
		send:     smtp.SendMail,
	}, nil
}

// SendAlert emails the parent about concerning messages. The subject
// and HTML body mirror the platform-side alert format.
func (m *Mailer) SendAlert(to string, alerts []classifier.Verdict, scannedCount int) error {
	if to == "" {
		return fmt.Errorf("recipient address is required")
	}
	if len(alerts) == 0 {
		return fmt.Errorf("no alerts to send")
	}

	subject := fmt.Sprintf("GUARDIAN ALERT: %d concerning message(s) detected", len(alerts))
	body := buildAlertHTML(alerts)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := m.send(addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	m.logger.Info().Str("to", to).Int("alerts", len(alerts)).Int("scanned", scannedCount).
		Msg("Alert email sent")
	return nil
}
