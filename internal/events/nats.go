package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

const DefaultOrderSubject = "orders.placed"

// publisher is the subset of *nats.Conn used here.
type publisher interface {
	Publish(subject string, data []byte) error
}

// OrderPlacedEvent is the payload published after a successful checkout.
type OrderPlacedEvent struct {
	Type  string            `json:"type"`
	Order model.PlacedOrder `json:"order"`
}

type NATSPublisher struct {
	conn    *nats.Conn
	pub     publisher
	subject string
}

func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("voice-order"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if subject == "" {
		subject = DefaultOrderSubject
	}
	return &NATSPublisher{conn: conn, pub: conn, subject: subject}, nil
}

// OrderPlaced publishes the placed order. Delivery is best effort.
func (p *NATSPublisher) OrderPlaced(ctx context.Context, order model.PlacedOrder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(OrderPlacedEvent{Type: "order.placed", Order: order})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	if err := p.pub.Publish(p.subject, b); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	logx.Debug().Str("subject", p.subject).Str("order_number", order.OrderNumber).Msg("order event published")
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) OrderPlaced(context.Context, model.PlacedOrder) error { return nil }

func (Noop) Close() error { return nil }
