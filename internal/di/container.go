package di

import (
	"go.uber.org/dig"

	"github.com/mikey/mail-screen/internal/config"
	"github.com/mikey/mail-screen/internal/core"
	"github.com/mikey/mail-screen/internal/factory"
	"github.com/mikey/mail-screen/internal/logging"
	"github.com/mikey/mail-screen/internal/ports"
	"github.com/mikey/mail-screen/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	if err := provideApp(container); err != nil {
		return nil, err
	}

	return container, nil
}

// provideApp registers everything below the configuration
func provideApp(container *dig.Container) error {
	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewMailerFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register classifier gateway
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return err
	}

	// Register mail gateway and service options
	if err := container.Provide(func(f *factory.MailerFactory) (core.MailGateway, error) {
		return f.CreateMailGateway()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.MailerFactory) (core.ServiceOptions, error) {
		return f.ServiceOptions()
	}); err != nil {
		return err
	}

	// Register submission service
	if err := container.Provide(core.NewSubmissionService); err != nil {
		return err
	}

	// Register front end
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return err
	}

	return nil
}
