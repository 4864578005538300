package core

import (
	"context"
	"net/mail"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		Body    string
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently.
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.Body != "" }

// FeedbackService drafts grading feedback for a student submission.
//
// GenerateFeedback always resolves: when the underlying service is
// unreachable or unconfigured it returns a descriptive placeholder
// instead of failing. Callers append the suggestion to the submission's
// feedback through the ordinary update path.
type FeedbackService interface {
	GenerateFeedback(ctx context.Context, assignmentTitle, assignmentDescription, submissionContent string) string
}
