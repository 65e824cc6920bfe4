package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"
)

// Mailer delivers a message and reports how many recipients accepted it.
type Mailer interface {
	Send(ctx context.Context, msg Message) (sent int, err error)
}

type Config struct {
	Host string
	Port string
	User string
	Pass string

	// From is the sender used when a message has none.
	From string
}

func (cfg Config) IsConfigured() bool {
	return cfg.Host != "" && cfg.From != ""
}

var ErrNotConfigured = errors.New("smtp is not configured")

const (
	implicitTLSPort = "465"
	defaultTimeout  = 30 * time.Second
)

// SMTPMailer sends mail over SMTP. Port 465 uses implicit TLS, any other port
// upgrades with STARTTLS when the server offers it.
type SMTPMailer struct {
	cfg Config
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) (int, error) {
	if !m.cfg.IsConfigured() {
		return 0, ErrNotConfigured
	}

	if msg.FromAddress == "" {
		msg.FromAddress = m.cfg.From
	}

	raw, err := msg.Bytes(time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to render message: %w", err)
	}

	client, err := m.connect(ctx)
	if err != nil {
		return 0, err
	}

	defer func() {
		err := client.Close()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			slog.DebugContext(ctx, "failed to close smtp connection", "error", err)
		}
	}()

	err = m.deliver(client, msg.FromAddress, msg.ToAddress, raw)
	if err != nil {
		return 0, err
	}

	return 1, nil
}

func (m *SMTPMailer) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	tlsConfig := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}

	var (
		conn net.Conn
		err  error
	)

	if m.cfg.Port == implicitTLSPort {
		dialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: defaultTimeout}, Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		dialer := &net.Dialer{Timeout: defaultTimeout}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to dial smtp server: %w", err)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultTimeout)
	}

	err = conn.SetDeadline(deadline)
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("failed to set smtp deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	if m.cfg.Port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			err = client.StartTLS(tlsConfig)
			if err != nil {
				_ = client.Close()

				return nil, fmt.Errorf("failed to start tls: %w", err)
			}
		}
	}

	if m.cfg.User != "" {
		err = client.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host))
		if err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	return client, nil
}

func (m *SMTPMailer) deliver(client *smtp.Client, from, to string, raw []byte) error {
	err := client.Mail(from)
	if err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	err = client.Rcpt(to)
	if err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}

	_, err = w.Write(raw)
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("failed to close data: %w", err)
	}

	err = client.Quit()
	if err != nil {
		return fmt.Errorf("failed to quit: %w", err)
	}

	return nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

var _ Mailer = (*LogMailer)(nil)

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) (int, error) {
	m.logger.InfoContext(
		ctx,
		"email not sent, logging instead",
		"from", msg.FromAddress,
		"to", msg.ToAddress,
		"subject", msg.Subject,
		"body", msg.Body,
	)

	return 1, nil
}
