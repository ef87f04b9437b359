package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const EventsExchange = "order_support_events"

// Channel es lo que el publisher necesita de *amqp091.Channel.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher emite los eventos del servicio (order.cancelled, return.initiated) en un exchange topic.
type Publisher struct {
	ch       Channel
	exchange string
	nowFunc  func() time.Time
}

func NewPublisher(ch Channel) *Publisher {
	return &Publisher{ch: ch, exchange: EventsExchange, nowFunc: time.Now}
}

// DeclareEvents crea el exchange de eventos si no existe.
func DeclareEvents(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(EventsExchange, amqp091.ExchangeTopic, true, false, false, false, nil)
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", routingKey, err)
	}
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    p.nowFunc().UTC(),
		Body:         body,
	})
}
