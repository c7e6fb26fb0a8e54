package core

import (
	"strings"
	"time"
)

// Submission is one recipient/subject/body triple taken from the web form
type Submission struct {
	Recipient string
	Subject   string
	Body      string
}

// Valid reports whether every field of the submission is present
func (s Submission) Valid() bool {
	return s.Recipient != "" && s.Subject != "" && s.Body != ""
}

// Text returns the text handed to the classifier
func (s Submission) Text() string {
	return strings.Join([]string{s.Recipient, s.Subject, s.Body}, " ")
}

// ClassificationResult is the verdict of one classifier run.
// Only Flagged drives behaviour; the rest is kept for diagnostics.
type ClassificationResult struct {
	Flagged     bool
	Output      string
	Diagnostics string
	Err         error
	Duration    time.Duration
}

// Message is an outbound email handed to the mail gateway
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Outcome is the client-visible result of processing a submission
type Outcome int

const (
	// OutcomeRejected means the submission was incomplete and was dropped
	OutcomeRejected Outcome = iota
	// OutcomeFiltered means the classifier flagged the submission
	OutcomeFiltered
	// OutcomeSent means the message was handed to the mail gateway
	OutcomeSent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeFiltered:
		return "filtered"
	case OutcomeSent:
		return "sent"
	default:
		return "unknown"
	}
}
