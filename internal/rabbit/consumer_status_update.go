package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"order-support-mcp/internal/dto"
	"order-support-mcp/internal/model"
)

// Interfaz que debe implementar el servicio para recibir cambios de estado.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID, newStatus, reason string) (*model.Order, error)
}

type StatusUpdateConsumer struct {
	Service  StatusUpdater
	log      *slog.Logger
	validate *validator.Validate
}

func NewStatusUpdateConsumer(s StatusUpdater, log *slog.Logger) *StatusUpdateConsumer {
	return &StatusUpdateConsumer{
		Service:  s,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handle aplica un mensaje de order_status_changed. Un error significa que el mensaje se descarta.
func (c *StatusUpdateConsumer) Handle(ctx context.Context, msg []byte) error {
	var event dto.StatusChangedMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		c.log.ErrorContext(ctx, "failed to parse status message", "error", err)
		return fmt.Errorf("parse status message: %w", err)
	}
	if err := c.validate.Struct(event); err != nil {
		c.log.ErrorContext(ctx, "invalid status message", "error", err)
		return fmt.Errorf("validate status message: %w", err)
	}

	reason := event.Reason
	if reason == "" {
		reason = "status feed"
	}
	order, err := c.Service.UpdateStatus(ctx, event.OrderID, event.Status, reason)
	if err != nil {
		c.log.WarnContext(ctx, "status update rejected", "order_id", event.OrderID, "status", event.Status, "error", err)
		return err
	}

	c.log.InfoContext(ctx, "status update applied", "order_id", order.OrderID, "status", order.Status)
	return nil
}
