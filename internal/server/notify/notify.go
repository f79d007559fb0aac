// Package notify delivers verification and password reset links to users.
package notify

import (
	"context"
	"fmt"
	"strings"
)

// Notifier sends account emails. Implementations return an error wrapping
// common.ErrDeliveryFailure when the message could not be handed off.
type Notifier interface {
	SendVerification(ctx context.Context, email, name, token string) error
	SendPasswordReset(ctx context.Context, email, name, token string) error
}

// Kind tells the mail worker which template a message uses.
type Kind string

const (
	KindVerification  Kind = "verification"
	KindPasswordReset Kind = "password_reset"
)

// Message is a rendered email.
type Message struct {
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Link    string `json:"link"`
	Body    string `json:"body"`
}

// Composer renders messages with links pointing at the frontend.
type Composer struct {
	FrontendURL string
}

func (c Composer) Verification(email, name, token string) Message {
	link := c.link("/auth/verify/", token)
	return Message{
		Kind:    KindVerification,
		To:      email,
		Name:    name,
		Subject: "Verify Your Email Address",
		Link:    link,
		Body: fmt.Sprintf("Hi %s,\n\n"+
			"Thank you for registering! Please verify your email address by clicking the link below:\n\n"+
			"%s\n\n"+
			"This link will expire in 24 hours.\n\n"+
			"If you did not register for an account, please ignore this email.\n", name, link),
	}
}

func (c Composer) PasswordReset(email, name, token string) Message {
	link := c.link("/auth/reset-password/", token)
	return Message{
		Kind:    KindPasswordReset,
		To:      email,
		Name:    name,
		Subject: "Reset Your Password",
		Link:    link,
		Body: fmt.Sprintf("Hi %s,\n\n"+
			"We received a request to reset your password. If this was you, please click the link below to reset your password:\n\n"+
			"%s\n\n"+
			"This link will expire in 1 hour.\n\n"+
			"If you did not request a password reset, please ignore this email.\n", name, link),
	}
}

func (c Composer) link(path, token string) string {
	return strings.TrimRight(c.FrontendURL, "/") + path + token
}
