package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikey/mail-screen/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sender = `"John Doe" <john@ahv-defender.com>`

type fakeClassifier struct {
	mu     sync.Mutex
	texts  []string
	result ClassificationResult
	ctxErr error
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) *ClassificationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.ctxErr = ctx.Err()
	result := f.result
	return &result
}

func (f *fakeClassifier) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeMailer struct {
	mu       sync.Mutex
	messages []Message
	err      error
	panics   bool
	release  chan struct{}
}

func (f *fakeMailer) Send(ctx context.Context, msg *Message) error {
	if f.release != nil {
		<-f.release
	}
	if f.panics {
		panic("transport exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *msg)
	return f.err
}

func (f *fakeMailer) sent() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.messages...)
}

func newService(t *testing.T, classifier Classifier, mailer MailGateway) *SubmissionService {
	logger := zaptest.NewLogger(t)
	svc := NewSubmissionService(classifier, mailer, logger, utils.NewTextProcessor(logger), ServiceOptions{
		From:        sender,
		SendTimeout: time.Second,
	})
	return svc
}

func validSubmission() Submission {
	return Submission{Recipient: "alice@example.com", Subject: "Hi", Body: "Hello"}
}

func TestSubmissionText(t *testing.T) {
	assert.Equal(t, "alice@example.com Hi Hello", validSubmission().Text())
}

func TestProcess_CleanSubmissionIsSent(t *testing.T) {
	classifier := &fakeClassifier{}
	mailer := &fakeMailer{}
	svc := newService(t, classifier, mailer)

	outcome := svc.Process(context.Background(), validSubmission())
	svc.Close()

	assert.Equal(t, OutcomeSent, outcome)
	assert.Equal(t, []string{"alice@example.com Hi Hello"}, classifier.calls())
	require.Len(t, mailer.sent(), 1)
	assert.Equal(t, Message{
		From:    sender,
		To:      "alice@example.com",
		Subject: "Hi",
		Body:    "Hello",
	}, mailer.sent()[0])
}

func TestProcess_FlaggedSubmissionIsFiltered(t *testing.T) {
	classifier := &fakeClassifier{result: ClassificationResult{Flagged: true, Output: "MALWARE DETECTED"}}
	mailer := &fakeMailer{}
	svc := newService(t, classifier, mailer)

	outcome := svc.Process(context.Background(), validSubmission())
	svc.Close()

	assert.Equal(t, OutcomeFiltered, outcome)
	assert.Len(t, classifier.calls(), 1)
	assert.Empty(t, mailer.sent())
}

func TestProcess_ClassifierFailureIsFiltered(t *testing.T) {
	classifier := &fakeClassifier{result: ClassificationResult{Flagged: true, Err: errors.New("exec: no such file")}}
	mailer := &fakeMailer{}
	svc := newService(t, classifier, mailer)

	outcome := svc.Process(context.Background(), validSubmission())
	svc.Close()

	assert.Equal(t, OutcomeFiltered, outcome)
	assert.Empty(t, mailer.sent())
}

func TestProcess_IncompleteSubmissionIsRejected(t *testing.T) {
	cases := map[string]Submission{
		"missing recipient": {Subject: "Hi", Body: "Hello"},
		"missing subject":   {Recipient: "alice@example.com", Body: "Hello"},
		"missing body":      {Recipient: "alice@example.com", Subject: "Hi"},
		"all empty":         {},
	}

	for name, sub := range cases {
		t.Run(name, func(t *testing.T) {
			classifier := &fakeClassifier{}
			mailer := &fakeMailer{}
			svc := newService(t, classifier, mailer)

			outcome := svc.Process(context.Background(), sub)
			svc.Close()

			assert.Equal(t, OutcomeRejected, outcome)
			assert.Empty(t, classifier.calls())
			assert.Empty(t, mailer.sent())
		})
	}
}

func TestProcess_ResubmissionIsNotDeduplicated(t *testing.T) {
	classifier := &fakeClassifier{}
	mailer := &fakeMailer{}
	svc := newService(t, classifier, mailer)

	assert.Equal(t, OutcomeSent, svc.Process(context.Background(), validSubmission()))
	assert.Equal(t, OutcomeSent, svc.Process(context.Background(), validSubmission()))
	svc.Close()

	assert.Len(t, classifier.calls(), 2)
	assert.Len(t, mailer.sent(), 2)
}

func TestProcess_DoesNotWaitForDelivery(t *testing.T) {
	mailer := &fakeMailer{release: make(chan struct{})}
	svc := newService(t, &fakeClassifier{}, mailer)

	done := make(chan Outcome, 1)
	go func() {
		done <- svc.Process(context.Background(), validSubmission())
	}()

	select {
	case outcome := <-done:
		assert.Equal(t, OutcomeSent, outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("Process blocked on mail delivery")
	}

	assert.Empty(t, mailer.sent())
	close(mailer.release)
	svc.Close()
	assert.Len(t, mailer.sent(), 1)
}

func TestProcess_DeliveryFailureDoesNotChangeOutcome(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("relay refused")}
	svc := newService(t, &fakeClassifier{}, mailer)

	outcome := svc.Process(context.Background(), validSubmission())
	svc.Close()

	assert.Equal(t, OutcomeSent, outcome)
	assert.Len(t, mailer.sent(), 1)
}

func TestProcess_DeliveryPanicIsContained(t *testing.T) {
	mailer := &fakeMailer{panics: true}
	svc := newService(t, &fakeClassifier{}, mailer)

	outcome := svc.Process(context.Background(), validSubmission())
	assert.NotPanics(t, svc.Close)
	assert.Equal(t, OutcomeSent, outcome)
}

func TestProcess_ClientCancellationDoesNotReachClassifier(t *testing.T) {
	classifier := &fakeClassifier{}
	svc := newService(t, classifier, &fakeMailer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.Process(ctx, validSubmission())
	svc.Close()

	assert.NoError(t, classifier.ctxErr)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "rejected", OutcomeRejected.String())
	assert.Equal(t, "filtered", OutcomeFiltered.String())
	assert.Equal(t, "sent", OutcomeSent.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
