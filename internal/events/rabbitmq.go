// Package events publishes order lifecycle events to RabbitMQ. Publishing
// is best effort: the order transaction has already committed, so failures
// are logged and dropped rather than surfaced to the caller.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ecofinds/marketplace-api/internal/domain/order"
)

const (
	// OrderExchange is the topic exchange all order events go through.
	OrderExchange = "order_exchange"

	// Routing keys.
	OrderPlacedKey = "order.placed"
	OrderStatusKey = "order.status"
)

// orderEvent is the wire shape of an order event message.
type orderEvent struct {
	OrderID          string    `json:"order_id"`
	BuyerID          string    `json:"buyer_id"`
	SellerID         string    `json:"seller_id"`
	Status           string    `json:"status"`
	TotalAmount      string    `json:"total_amount"`
	TotalCarbonSaved string    `json:"total_carbon_saved"`
	ItemCount        int       `json:"item_count"`
	OccurredAt       time.Time `json:"occurred_at"`
}

var _ order.Publisher = (*Publisher)(nil)

// Publisher emits order events on a RabbitMQ topic exchange.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	lg      *zap.Logger
}

// NewPublisher connects to RabbitMQ and declares the order exchange.
func NewPublisher(url string, lg *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial amqp")
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	err = channel.ExchangeDeclare(
		OrderExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "declare exchange")
	}

	return &Publisher{conn: conn, channel: channel, lg: lg}, nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return errors.Wrap(err, "close channel")
	}
	return errors.Wrap(p.conn.Close(), "close connection")
}

// OrderPlaced publishes an order.placed event.
func (p *Publisher) OrderPlaced(ctx context.Context, o *order.Order) {
	p.publish(ctx, OrderPlacedKey, o)
}

// OrderStatusChanged publishes an order.status event.
func (p *Publisher) OrderStatusChanged(ctx context.Context, o *order.Order) {
	p.publish(ctx, OrderStatusKey, o)
}

func (p *Publisher) publish(ctx context.Context, key string, o *order.Order) {
	body, err := json.Marshal(orderEvent{
		OrderID:          o.ID,
		BuyerID:          o.BuyerID,
		SellerID:         o.SellerID,
		Status:           string(o.Status),
		TotalAmount:      o.TotalAmount.String(),
		TotalCarbonSaved: o.TotalCarbonSaved.String(),
		ItemCount:        len(o.Items),
		OccurredAt:       time.Now().UTC(),
	})
	if err != nil {
		p.lg.Error("marshal order event", zap.String("order_id", o.ID), zap.Error(err))
		return
	}

	err = p.channel.PublishWithContext(ctx,
		OrderExchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.lg.Error("publish order event",
			zap.String("routing_key", key),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}
