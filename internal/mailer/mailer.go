// Package mailer sends HTML report emails with PNG attachments over
// SMTP. The transport is injectable so scheduled pipelines can be
// tested against a fake.
package mailer

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Attachment is a file carried with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers messages. The SMTP client implements it; tests
// substitute a fake.
type Sender interface {
	Send(msg Message) error
}

// Client is an SMTP-backed Sender.
type Client struct {
	cfg Config
}

// New creates an SMTP client from config.
func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Send delivers one message, negotiating TLS per the configured port.
func (c *Client) Send(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("message has no recipient")
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	client, err := smtpClient(addr, c.cfg.Host, c.cfg.Port)
	if err != nil {
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(parseAddress(c.cfg.From)); err != nil {
		return err
	}
	if err := client.Rcpt(parseAddress(msg.To)); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(BuildMessage(c.cfg.From, msg)); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func smtpClient(addr, host string, port int) (*smtp.Client, error) {
	// Port 465 is implicit TLS; everything else upgrades via STARTTLS
	// when the server offers it.
	if port == 465 {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, host)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return nil, err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

// parseAddress extracts the bare address from "Name <addr>" forms.
func parseAddress(from string) string {
	start := strings.Index(from, "<")
	end := strings.Index(from, ">")
	if start >= 0 && end > start {
		return strings.TrimSpace(from[start+1 : end])
	}
	return strings.TrimSpace(from)
}
