package core

import (
	"context"
)

// Classifier decides whether a piece of text must be blocked
type Classifier interface {
	// Classify runs one classification. Failures are reported as a flagged
	// result, never as a separate error.
	Classify(ctx context.Context, text string) *ClassificationResult
}

// MailGateway delivers outbound messages
type MailGateway interface {
	// Send delivers a single message
	Send(ctx context.Context, msg *Message) error
}
