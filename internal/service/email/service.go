// internal/service/email/service.go
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"
)

// EmailSender handles outgoing emails via SMTP.
type EmailSender struct {
	smtpHost string
	smtpPort string
	username string
	password string
	from     string
	fromName string
	secure   bool
	timeout  time.Duration
}

// NewEmailSender creates a new SMTP email sender.
func NewEmailSender(host, port, user, pass, from, fromName string, secure bool) *EmailSender {
	if from == "" {
		from = user
	}
	return &EmailSender{
		smtpHost: host,
		smtpPort: port,
		username: user,
		password: pass,
		from:     from,
		fromName: fromName,
		secure:   secure,
		timeout:  30 * time.Second,
	}
}

// Send delivers one message to every recipient in a single SMTP transaction.
// The body is multipart/alternative with the text and HTML parts.
func (e *EmailSender) Send(ctx context.Context, to []string, subject, text, html string) error {
	if e.smtpHost == "" {
		return fmt.Errorf("smtp host is not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg, err := buildMessage(&mail.Address{Name: e.fromName, Address: e.from}, to, subject, text, html)
	if err != nil {
		return err
	}

	serverAddr := net.JoinHostPort(e.smtpHost, e.smtpPort)
	dialer := &net.Dialer{Timeout: e.timeout}

	var conn net.Conn
	if e.secure {
		// Port 465 - implicit TLS
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: e.tlsConfig()}).DialContext(ctx, "tcp", serverAddr)
		if err != nil {
			return fmt.Errorf("tls dial failed: %w", err)
		}
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", serverAddr)
		if err != nil {
			return fmt.Errorf("dial failed: %w", err)
		}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(e.timeout))
	}

	client, err := smtp.NewClient(conn, e.smtpHost)
	if err != nil {
		return fmt.Errorf("smtp client failed: %w", err)
	}
	defer client.Close()

	if !e.secure {
		// Port 587 - STARTTLS when offered
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(e.tlsConfig()); err != nil {
				return fmt.Errorf("starttls failed: %w", err)
			}
		}
	}

	if e.username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", e.username, e.password, e.smtpHost)
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("auth failed: %w", err)
			}
		}
	}

	if err := e.sendMail(client, to, msg); err != nil {
		return err
	}
	return client.Quit()
}

func (e *EmailSender) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: e.smtpHost}
}

func (e *EmailSender) sendMail(client *smtp.Client, to []string, msg []byte) error {
	if err := client.Mail(e.from); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s failed: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	return nil
}

func buildMessage(from *mail.Address, to []string, subject, text, html string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct{ contentType, content string }{
		{"text/plain; charset=\"utf-8\"", text},
		{"text/html; charset=\"utf-8\"", html},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, fmt.Errorf("failed to build message: %w", err)
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("failed to build message: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from.String())
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}
