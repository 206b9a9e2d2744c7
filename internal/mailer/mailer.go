// Package mailer implements the transactional email gateway on top of SMTP.
// Sends are bounded by a timeout so a slow mail relay cannot hold a request
// open, and the caller-facing failure mode (loud vs silent) is an explicit
// configuration switch rather than an accident of call sites.
package mailer

import (
	"fmt"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

// Sender is the interface handlers depend on. Send delivers a plain-text
// message to a single recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// Config carries SMTP settings plus delivery behavior.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	SendTimeout time.Duration // bound on a single delivery; 10s when zero
	FailSilent  bool          // true: log transport errors instead of returning them
}

// Mailer sends transactional email over SMTP.
type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

// New creates a Mailer from the given configuration.
func New(cfg Config) *Mailer {
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send delivers a plain-text message. The dial-and-send runs in its own
// goroutine and is abandoned after the configured timeout; gomail offers no
// context support, so the goroutine is left to finish on its own. In
// fail-silent mode errors are logged and nil is returned.
func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	errCh := make(chan error, 1)
	go func() { errCh <- m.dialer.DialAndSend(msg) }()

	var err error
	select {
	case err = <-errCh:
	case <-time.After(m.cfg.SendTimeout):
		err = fmt.Errorf("smtp send to %s timed out after %s", to, m.cfg.SendTimeout)
	}
	if err != nil && m.cfg.FailSilent {
		log.Printf("mailer: delivery failed (silent mode): %v", err)
		return nil
	}
	return err
}
