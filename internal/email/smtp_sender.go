package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"art-advisor/internal/domain"
)

// SMTPSender envia las alertas via SMTP a una casilla fija de operadores.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	to       string
	useTLS   bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	To       string
	UseTLS   bool
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if strings.TrimSpace(cfg.To) == "" {
		return nil, fmt.Errorf("alert recipient is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		fromName: cfg.FromName,
		to:       cfg.To,
		useTLS:   cfg.UseTLS,
	}, nil
}

func (s *SMTPSender) SendRunFailure(ctx context.Context, report domain.RunReport) error {
	subject := fmt.Sprintf("[art-advisor] curation run failed (%s)", report.Date.Format("2006-01-02"))
	msg := buildMessage(s.from, s.fromName, s.to, subject, runFailureBody(report))
	return s.send(ctx, msg)
}

func (s *SMTPSender) send(ctx context.Context, msg string) error {
	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))
	dialer := &net.Dialer{Timeout: 15 * time.Second}

	var conn net.Conn
	var err error
	if s.useTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Quit() //nolint:errcheck

	if !s.useTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}
	if s.username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(s.from); err != nil {
		return err
	}
	if err := client.Rcpt(s.to); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func runFailureBody(report domain.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s) ended in state %s.\n", report.RunID, report.Trigger, report.State)
	if report.Err != nil {
		fmt.Fprintf(&b, "Error: %v\n", report.Err)
	}
	fmt.Fprintf(&b, "Started: %s\n", report.StartedAt.UTC().Format(time.RFC3339))
	if len(report.Tags) > 0 {
		fmt.Fprintf(&b, "Profile tags: %s\n", strings.Join(report.Tags, ", "))
	}
	if len(report.Queries) > 0 {
		fmt.Fprintf(&b, "Queries: %s\n", strings.Join(report.Queries, " | "))
	}
	fmt.Fprintf(&b, "Fetched: %d, unique: %d, selected: %d\n", report.Fetched, report.Unique, report.Selected)
	b.WriteString("No artworks were stored for this run.\n")
	return b.String()
}

func buildMessage(from, fromName, to, subject, body string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
