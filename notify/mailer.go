package notify

import (
	"context"
	"errors"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

type MailerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`

	// Recipients comes from the top-level config, not the smtp block.
	Recipients []string `yaml:"-"`
}

func (c MailerConfig) validate() error {
	if c.Host == "" {
		return errors.New("smtp host is required")
	}
	if c.Port == 0 {
		return errors.New("smtp port is required")
	}
	if c.From == "" {
		return errors.New("smtp sender address is required")
	}
	if len(c.Recipients) == 0 {
		return errors.New("at least one recipient is required")
	}

	return nil
}

// Mailer sends each message as one plain-text email to every configured
// recipient.
type Mailer struct {
	cfg    MailerConfig
	dialer *gomail.Dialer
}

func NewMailer(cfg MailerConfig) (*Mailer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid mailer config: %w", err)
	}

	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

func (m *Mailer) Notify(ctx context.Context, msg Message) error {
	// gomail has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", m.cfg.Recipients...)
	gm.SetHeader("Subject", Subject(msg))
	gm.SetHeader("X-Logwarden-ID", msg.ID.String())
	gm.SetDateHeader("Date", msg.Time)
	gm.SetBody("text/plain", Body(msg))

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("cannot send notification %s: %w", msg.ID, err)
	}

	return nil
}
