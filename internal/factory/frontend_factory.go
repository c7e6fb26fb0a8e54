package factory

import (
	"github.com/mikey/mail-screen/internal/adapters/web"
	"github.com/mikey/mail-screen/internal/config"
	"github.com/mikey/mail-screen/internal/core"
	"github.com/mikey/mail-screen/internal/ports"
	"go.uber.org/zap"
)

// FrontendFactory creates the front end that accepts submissions
type FrontendFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.SubmissionService
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, service *core.SubmissionService) *FrontendFactory {
	return &FrontendFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateFrontend creates the HTTP front end
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	server, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}

	return web.NewHTTPServer(
		f.service,
		f.logger,
		server.ListenAddress,
		server.StaticDir,
		server.ReadTimeout,
		server.WriteTimeout,
		server.ShutdownTimeout,
	), nil
}
