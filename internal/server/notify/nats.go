package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	nats "github.com/nats-io/nats.go"
)

// Publisher is the part of *nats.Conn used by NATSNotifier.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

var _ Publisher = (*nats.Conn)(nil)

// NATSNotifier publishes rendered messages as JSON to a NATS subject where a
// mail worker picks them up.
type NATSNotifier struct {
	composer Composer
	pub      Publisher
	subject  string
}

func NewNATSNotifier(pub Publisher, subject, frontendURL string) *NATSNotifier {
	return &NATSNotifier{composer: Composer{FrontendURL: frontendURL}, pub: pub, subject: subject}
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url, nats.Name("gophauth"))
}

func (n *NATSNotifier) SendVerification(ctx context.Context, email, name, token string) error {
	return n.publish(ctx, n.composer.Verification(email, name, token))
}

func (n *NATSNotifier) SendPasswordReset(ctx context.Context, email, name, token string) error {
	return n.publish(ctx, n.composer.PasswordReset(email, name, token))
}

// publish returns once the server has acknowledged the flush, so a nil error
// means the message reached NATS.
func (n *NATSNotifier) publish(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDeliveryFailure, err)
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		return fmt.Errorf("%w: publish %s: %v", common.ErrDeliveryFailure, m.Kind, err)
	}
	if err := n.pub.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("%w: flush %s: %v", common.ErrDeliveryFailure, m.Kind, err)
	}
	return nil
}
