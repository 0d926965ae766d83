package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"patchwork_back_end/internal/config"
)

var ErrMailDisabled = errors.New("envoi d'e-mails désactivé (SMTP_HOST vide)")

// Email est un message HTML prêt à l'envoi. Inline contient les images embarquées,
// référencées dans le HTML par cid:<nom>.
type Email struct {
	To      string
	Subject string
	HTML    string
	Inline  map[string][]byte
}

// Mailer envoie les e-mails par SMTP
type Mailer struct {
	cfg config.SMTPConfig
	log *zap.SugaredLogger
}

func NewMailer(cfg config.SMTPConfig, log *zap.SugaredLogger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

func (m *Mailer) Enabled() bool { return m.cfg.Host != "" }

func (m *Mailer) Send(ctx context.Context, e Email) error {
	if !m.Enabled() {
		return ErrMailDisabled
	}
	msg, err := m.buildMessage(e)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return err
	}

	m.log.Infof("📤 Envoi de l'e-mail à %s", e.To)
	return client.DialAndSendWithContext(ctx, msg)
}

func (m *Mailer) buildMessage(e Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("expéditeur invalide: %w", err)
	}
	if err := msg.To(e.To); err != nil {
		return nil, fmt.Errorf("destinataire invalide: %w", err)
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(mail.TypeTextHTML, e.HTML)

	for name, data := range e.Inline {
		if err := msg.EmbedReader(name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("pièce embarquée %s: %w", name, err)
		}
	}
	return msg, nil
}
