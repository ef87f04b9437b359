package rabbit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"
)

const (
	StatusExchange = "order_status_changed"
	StatusQueue    = "order_support_status_updates"
)

// SetupConsumers suscribe la cola de cambios de estado al exchange fanout.
// La goroutine termina cuando se cierra el canal o el contexto.
func SetupConsumers(ctx context.Context, ch *amqp091.Channel, svc StatusUpdater, log *slog.Logger) error {
	consumer := NewStatusUpdateConsumer(svc, log)

	if err := ch.ExchangeDeclare(StatusExchange, amqp091.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", StatusExchange, err)
	}

	q, err := ch.QueueDeclare(
		StatusQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// fanout ignora routing key
	if err := ch.QueueBind(q.Name, "", StatusExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					log.Warn("status queue closed")
					return
				}
				// los mensajes inválidos no se reencolan
				if err := consumer.Handle(ctx, m.Body); err != nil {
					_ = m.Nack(false, false)
					continue
				}
				_ = m.Ack(false)
			}
		}
	}()

	log.Info("subscribed to status exchange", "exchange", StatusExchange, "queue", q.Name)
	return nil
}
