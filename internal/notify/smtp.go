package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPRelay delivers over SMTP with implicit TLS (smtps, port 465 style),
// which is what the upstream relay expects.
type SMTPRelay struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPRelay(host string, port int, username, password, from string) *SMTPRelay {
	if from == "" {
		from = username
	}
	return &SMTPRelay{Host: host, Port: port, Username: username, Password: password, From: from}
}

func (r *SMTPRelay) Send(ctx context.Context, msg Message) error {
	if r.Host == "" {
		return fmt.Errorf("smtp relay not configured")
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	addr := fmt.Sprintf("%s:%d", r.Host, r.Port)
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: r.Host})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	client, err := smtp.NewClient(conn, r.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if r.Username != "" {
		auth := smtp.PlainAuth("", r.Username, r.Password, r.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(r.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write(encodeMessage(r.From, msg)); err != nil {
		writer.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp finish: %w", err)
	}
	return client.Quit()
}

// encodeMessage builds a multipart/alternative body so clients pick HTML
// when they can and fall back to plain text.
func encodeMessage(from string, msg Message) []byte {
	boundary := "=_submission-notify"
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=\"" + boundary + "\"\r\n")
	b.WriteString("\r\n")
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.TextBody)
	b.WriteString("\r\n--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n--" + boundary + "--\r\n")
	return []byte(b.String())
}
