package email

import (
	"context"
	"fmt"
)

// StatusNotifier renders and sends application status emails
type StatusNotifier struct {
	sender    Sender
	templates *StatusTemplates
	signature string
}

// NewStatusNotifier builds a notifier; signature closes every message
func NewStatusNotifier(sender Sender, templates *StatusTemplates, signature string) *StatusNotifier {
	return &StatusNotifier{
		sender:    sender,
		templates: templates,
		signature: signature,
	}
}

// NotifyStatus sends the template for status to the applicant and returns the message it built.
// The message is returned even when delivery fails.
func (n *StatusNotifier) NotifyStatus(ctx context.Context, toEmail, toName, course, status string) (Message, error) {
	subject, body, err := n.templates.Render(status, StatusData{Name: toName, Course: course, Sender: n.signature})
	if err != nil {
		return Message{}, err
	}

	msg := Message{ToEmail: toEmail, ToName: toName, Subject: subject, HTML: body}
	if toEmail == "" {
		return msg, fmt.Errorf("application has no email address")
	}
	return msg, n.sender.Send(ctx, msg)
}
