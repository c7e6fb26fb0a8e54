package factory

import (
	"fmt"
	"net"

	"github.com/mikey/mail-screen/internal/adapters/classifier"
	"github.com/mikey/mail-screen/internal/config"
	"github.com/mikey/mail-screen/internal/core"
	"github.com/mikey/mail-screen/internal/utils"
	"go.uber.org/zap"
)

// ClassifierFactory creates classifiers based on configuration
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates the external analyzer classifier
func (f *ClassifierFactory) CreateClassifier() (core.Classifier, error) {
	cls, err := f.cfg.GetClassifier()
	if err != nil {
		return nil, err
	}

	if cls.Path == "" {
		return nil, fmt.Errorf("classifier.path is required")
	}
	if cls.Mode == "" {
		return nil, fmt.Errorf("classifier.mode is required")
	}
	if _, _, err := net.SplitHostPort(cls.LookupAddress); err != nil {
		return nil, fmt.Errorf("invalid classifier.lookup_address %q: %w", cls.LookupAddress, err)
	}

	f.logger.Info("Using external classifier",
		zap.String("path", cls.Path),
		zap.String("mode", cls.Mode),
		zap.String("lookup_address", cls.LookupAddress),
		zap.Duration("timeout", cls.Timeout),
		zap.Int("max_concurrent", cls.MaxConcurrent))

	return classifier.NewExecClassifier(
		cls.Path,
		cls.Mode,
		cls.LookupAddress,
		cls.Timeout,
		cls.MaxConcurrent,
		f.logger,
		f.textProcessor,
	), nil
}
