package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/mail-screen/internal/utils"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// logPreviewSize bounds how much of a body ends up in debug logs
const logPreviewSize = 256

// ServiceOptions carries the settings of SubmissionService that come from configuration
type ServiceOptions struct {
	// From is the sender identity of every relayed message
	From string
	// SendTimeout bounds a single background delivery. Zero means no bound.
	SendTimeout time.Duration
}

// SubmissionService screens form submissions and relays the clean ones
type SubmissionService struct {
	classifier    Classifier
	mailer        MailGateway
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	opts          ServiceOptions
	sends         conc.WaitGroup
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	classifier Classifier,
	mailer MailGateway,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	opts ServiceOptions,
) *SubmissionService {
	return &SubmissionService{
		classifier:    classifier,
		mailer:        mailer,
		logger:        logger,
		textProcessor: textProcessor,
		opts:          opts,
	}
}

// Process validates, classifies and, when the text is clean, relays a submission.
// Delivery runs in the background; the returned outcome never depends on it.
func (s *SubmissionService) Process(ctx context.Context, sub Submission) Outcome {
	logger := s.logger.With(zap.String("request_id", uuid.NewString()))

	if !sub.Valid() {
		logger.Debug("Form incorrectly filled",
			zap.Bool("has_recipient", sub.Recipient != ""),
			zap.Bool("has_subject", sub.Subject != ""),
			zap.Bool("has_body", sub.Body != ""))
		return OutcomeRejected
	}

	// The client going away must not cut a classification short.
	result := s.classifier.Classify(context.WithoutCancel(ctx), sub.Text())

	if result.Flagged {
		fields := []zap.Field{
			zap.String("to", sub.Recipient),
			zap.Duration("duration", result.Duration),
			zap.String("output", s.textProcessor.TruncateText(result.Output, logPreviewSize)),
			zap.String("diagnostics", s.textProcessor.TruncateText(result.Diagnostics, logPreviewSize)),
		}
		if result.Err != nil {
			logger.Warn("Classifier failed, treating submission as flagged", append(fields, zap.Error(result.Err))...)
		} else {
			logger.Info("Submission flagged by classifier", fields...)
		}
		return OutcomeFiltered
	}

	msg := &Message{
		From:    s.opts.From,
		To:      sub.Recipient,
		Subject: sub.Subject,
		Body:    sub.Body,
	}
	logger.Info("New email",
		zap.String("to", msg.To),
		zap.Duration("classification", result.Duration))
	logger.Debug("Email body", zap.String("body", s.textProcessor.TruncateText(msg.Body, logPreviewSize)))

	s.dispatch(logger, msg)
	return OutcomeSent
}

// dispatch hands msg to the mail gateway without waiting for the result
func (s *SubmissionService) dispatch(logger *zap.Logger, msg *Message) {
	s.sends.Go(func() {
		var pc panics.Catcher
		pc.Try(func() {
			ctx := context.Background()
			if s.opts.SendTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, s.opts.SendTimeout)
				defer cancel()
			}

			start := time.Now()
			if err := s.mailer.Send(ctx, msg); err != nil {
				logger.Error("Email could not be sent", zap.String("to", msg.To), zap.Error(err))
				return
			}
			logger.Info("Email sent", zap.String("to", msg.To), zap.Duration("duration", time.Since(start)))
		})
		if r := pc.Recovered(); r != nil {
			logger.Error("Mail gateway panicked", zap.String("to", msg.To), zap.Error(r.AsError()))
		}
	})
}

// Close waits for background deliveries that are still in flight
func (s *SubmissionService) Close() {
	s.sends.Wait()
}
