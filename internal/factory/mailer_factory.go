package factory

import (
	"fmt"
	"net/mail"

	"github.com/mikey/mail-screen/internal/adapters/mailer"
	"github.com/mikey/mail-screen/internal/config"
	"github.com/mikey/mail-screen/internal/core"
	"go.uber.org/zap"
)

// MailerFactory creates mail gateways based on configuration
type MailerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailerFactory creates a new mailer factory
func NewMailerFactory(cfg *config.Config, logger *zap.Logger) *MailerFactory {
	return &MailerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailGateway creates a mail gateway based on the configured transport
func (f *MailerFactory) CreateMailGateway() (core.MailGateway, error) {
	mailCfg, err := f.cfg.GetMail()
	if err != nil {
		return nil, err
	}

	switch mailCfg.Transport {
	case "smtp":
		if mailCfg.SMTP.Host == "" || mailCfg.SMTP.Port <= 0 {
			return nil, fmt.Errorf("mail.smtp.host and mail.smtp.port are required for the smtp transport")
		}
		f.logger.Info("Relaying mail over SMTP",
			zap.String("host", mailCfg.SMTP.Host),
			zap.Int("port", mailCfg.SMTP.Port),
			zap.Bool("starttls", mailCfg.SMTP.StartTLS),
			zap.Bool("auth", mailCfg.SMTP.Username != ""))
		return mailer.NewSMTPMailer(
			mailCfg.SMTP.Host,
			mailCfg.SMTP.Port,
			mailCfg.SMTP.Username,
			mailCfg.SMTP.Password,
			mailCfg.SMTP.StartTLS,
			mailCfg.SMTP.Helo,
			f.logger,
		), nil
	case "log":
		f.logger.Warn("Mail transport is 'log'; messages will not be delivered")
		return mailer.NewLogMailer(f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail transport: %s", mailCfg.Transport)
	}
}

// ServiceOptions returns the submission service settings
func (f *MailerFactory) ServiceOptions() (core.ServiceOptions, error) {
	mailCfg, err := f.cfg.GetMail()
	if err != nil {
		return core.ServiceOptions{}, err
	}
	if _, err := mail.ParseAddress(mailCfg.From); err != nil {
		return core.ServiceOptions{}, fmt.Errorf("invalid mail.from %q: %w", mailCfg.From, err)
	}

	return core.ServiceOptions{
		From:        mailCfg.From,
		SendTimeout: mailCfg.SendTimeout,
	}, nil
}
