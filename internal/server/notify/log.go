package notify

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// LogNotifier writes messages to the logger instead of sending them.
// It is the delivery channel for local development; links are written at
// debug level only.
type LogNotifier struct {
	composer Composer
	log      logging.Logger
}

func NewLogNotifier(frontendURL string, log logging.Logger) *LogNotifier {
	return &LogNotifier{composer: Composer{FrontendURL: frontendURL}, log: log.With("module", "notify")}
}

func (n *LogNotifier) SendVerification(ctx context.Context, email, name, token string) error {
	n.write(ctx, n.composer.Verification(email, name, token))
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, email, name, token string) error {
	n.write(ctx, n.composer.PasswordReset(email, name, token))
	return nil
}

func (n *LogNotifier) write(ctx context.Context, m Message) {
	n.log.Info(ctx, "email queued", "kind", m.Kind, "to", m.To)
	n.log.Debug(ctx, "email link", "kind", m.Kind, "link", m.Link)
}
