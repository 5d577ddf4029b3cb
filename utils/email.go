package utils

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends plain-text mail.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	Host     string
	Port     string
	From     string
	Password string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(host, port, from, password string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, From: from, Password: password, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid mail header")
	}

	var auth smtp.Auth
	if m.Password != "" {
		auth = smtp.PlainAuth("", m.From, m.Password, m.Host)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.From, to, subject, body))

	return m.send(m.Host+":"+m.Port, auth, m.From, []string{to}, msg)
}

// NoMail discards messages; used when SMTP is not configured.
type NoMail struct{}

func (NoMail) Send(string, string, string) error { return nil }
