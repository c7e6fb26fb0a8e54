package factory

import (
	"testing"
	"time"

	"github.com/mikey/mail-screen/internal/adapters/classifier"
	"github.com/mikey/mail-screen/internal/adapters/mailer"
	"github.com/mikey/mail-screen/internal/adapters/web"
	"github.com/mikey/mail-screen/internal/config"
	"github.com/mikey/mail-screen/internal/core"
	"github.com/mikey/mail-screen/internal/utils"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newConfig(set func(v *viper.Viper)) *config.Config {
	v := config.NewEmptyViper()
	if set != nil {
		set(v)
	}
	return config.NewFromViper(v)
}

func TestCreateClassifier(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tp := utils.NewTextProcessor(logger)

	cls, err := NewClassifierFactory(newConfig(nil), logger, tp).CreateClassifier()
	require.NoError(t, err)
	execCls, ok := cls.(*classifier.ExecClassifier)
	require.True(t, ok)
	assert.Equal(t, []string{"thorough", "lookup-server:12000"}, execCls.Args())

	_, err = NewClassifierFactory(newConfig(func(v *viper.Viper) {
		v.Set("classifier.lookup_address", "lookup-server")
	}), logger, tp).CreateClassifier()
	assert.Error(t, err)

	_, err = NewClassifierFactory(newConfig(func(v *viper.Viper) {
		v.Set("classifier.path", "")
	}), logger, tp).CreateClassifier()
	assert.Error(t, err)
}

func TestCreateMailGateway(t *testing.T) {
	logger := zaptest.NewLogger(t)

	gw, err := NewMailerFactory(newConfig(nil), logger).CreateMailGateway()
	require.NoError(t, err)
	assert.IsType(t, &mailer.LogMailer{}, gw)

	gw, err = NewMailerFactory(newConfig(func(v *viper.Viper) {
		v.Set("mail.transport", "smtp")
		v.Set("mail.smtp.host", "relay.internal")
		v.Set("mail.smtp.port", 587)
	}), logger).CreateMailGateway()
	require.NoError(t, err)
	smtpGW, ok := gw.(*mailer.SMTPMailer)
	require.True(t, ok)
	assert.Equal(t, "relay.internal:587", smtpGW.Addr())

	_, err = NewMailerFactory(newConfig(func(v *viper.Viper) {
		v.Set("mail.transport", "carrier-pigeon")
	}), logger).CreateMailGateway()
	assert.Error(t, err)
}

func TestServiceOptions(t *testing.T) {
	logger := zaptest.NewLogger(t)

	opts, err := NewMailerFactory(newConfig(nil), logger).ServiceOptions()
	require.NoError(t, err)
	assert.Equal(t, core.ServiceOptions{
		From:        `"John Doe" <john@ahv-defender.com>`,
		SendTimeout: 30 * time.Second,
	}, opts)

	_, err = NewMailerFactory(newConfig(func(v *viper.Viper) {
		v.Set("mail.from", "not an address")
	}), logger).ServiceOptions()
	assert.Error(t, err)
}

func TestCreateFrontend(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tp := utils.NewTextProcessor(logger)
	service := core.NewSubmissionService(nil, nil, logger, tp, core.ServiceOptions{})

	frontend, err := NewFrontendFactory(newConfig(nil), logger, service).CreateFrontend()
	require.NoError(t, err)
	assert.IsType(t, &web.HTTPServer{}, frontend)
}
