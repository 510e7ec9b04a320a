// Package notify sends note-created email notifications over SMTP.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/khushik17/notesweb/internal/queue"
)

// Mailer is the interface the email worker depends on
type Mailer interface {
	SendNoteCreated(ctx context.Context, payload queue.NoteCreatedPayload) error
}

// Options configures the SMTP mailer
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	StartTLS bool
	// AppURL is linked from the email body so recipients can jump to their notes
	AppURL string
}

// SMTPMailer sends email over a plain SMTP connection with optional STARTTLS.
type SMTPMailer struct {
	opts Options
	// dialTimeout bounds the TCP connect to the SMTP server
	dialTimeout time.Duration
}

// NewSMTPMailer creates a mailer from options
func NewSMTPMailer(opts Options) *SMTPMailer {
	if opts.FromName == "" {
		opts.FromName = "Notes App"
	}
	return &SMTPMailer{
		opts:        opts,
		dialTimeout: 30 * time.Second,
	}
}

// SendNoteCreated delivers the "note created" notification to the note owner.
func (m *SMTPMailer) SendNoteCreated(ctx context.Context, payload queue.NoteCreatedPayload) error {
	if payload.RecipientEmail == "" {
		return fmt.Errorf("recipient email is empty")
	}

	body, err := renderNoteCreated(payload, m.opts.AppURL)
	if err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	msg := m.buildMessage(payload.RecipientEmail, fmt.Sprintf("Note Created: %s", payload.Title), body)
	return m.sendSMTP(ctx, payload.RecipientEmail, msg)
}

// buildMessage constructs the full RFC 5322 message with headers.
func (m *SMTPMailer) buildMessage(to, subject, htmlBody string) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", m.opts.FromName, m.opts.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	return msg.String()
}

// sendSMTP sends the message via SMTP.
func (m *SMTPMailer) sendSMTP(ctx context.Context, to, msg string) error {
	addr := fmt.Sprintf("%s:%d", m.opts.Host, m.opts.Port)

	dialer := &net.Dialer{Timeout: m.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, m.opts.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if m.opts.StartTLS {
		tlsConfig := &tls.Config{
			ServerName: m.opts.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if m.opts.Username != "" && m.opts.Password != "" {
		auth := smtp.PlainAuth("", m.opts.Username, m.opts.Password, m.opts.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.opts.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}

	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// Quit failures after a successful DATA are not worth surfacing
	if err := client.Quit(); err != nil {
		return nil
	}

	return nil
}

var noteCreatedTmpl = template.Must(template.New("note_created").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; padding:20px;">
  <h2>Note Created Successfully!</h2>
  <p><strong>Title:</strong> {{.Title}}</p>
  <p><strong>Description:</strong> {{.Description}}</p>
  <p><strong>Date:</strong> {{.Date}}</p>
  <br/>
  {{if .AppURL}}<a href="{{.AppURL}}"
     style="padding:10px 20px;background:#ec4899;color:white;text-decoration:none;border-radius:5px;">
     View All Notes
  </a>
  <br/><br/>
  {{end}}<small>This is an automated email.</small>
</body>
</html>
`))

// renderNoteCreated produces the HTML body for a note-created notification.
// All note fields are user input and pass through html/template escaping.
func renderNoteCreated(payload queue.NoteCreatedPayload, appURL string) (string, error) {
	description := payload.Description
	if description == "" {
		description = "No description added"
	}

	data := struct {
		Title       string
		Description string
		Date        string
		AppURL      string
	}{
		Title:       payload.Title,
		Description: description,
		Date:        payload.NoteCreatedAt.Format("January 2, 2006 at 3:04 PM"),
		AppURL:      appURL,
	}

	var buf strings.Builder
	if err := noteCreatedTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
