package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"order-support-mcp/internal/model"
	"order-support-mcp/internal/repository"
)

// Interfaz que debe implementar la estrategia de datos (mock o real)
type EcommerceStrategy interface {
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetCustomerOrders(ctx context.Context, customerID string, f model.OrderFilter) ([]model.Order, error)
	SearchOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, check repository.StatusCheck) (bool, error)
	CancelOrder(ctx context.Context, orderID, reason string) (bool, error)
	InitiateReturn(ctx context.Context, orderID string, items []string, reason string) (*model.Return, error)
	GetOrderTracking(ctx context.Context, orderID string) (*model.TrackingInfo, error)
	GetReturnPolicy(ctx context.Context) (string, error)
	GetShippingOptions(ctx context.Context, orderID string) ([]model.ShippingOption, error)
}

// EventPublisher recibe los eventos de dominio (cancelaciones, devoluciones).
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

// Errores de negocio exportados (los usa el controller)
var (
	ErrNotFound          = repository.ErrNotFound
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrFinalState        = errors.New("order is in a final state")
)

const (
	RoutingOrderCancelled  = "order.cancelled"
	RoutingReturnInitiated = "return.initiated"
)

type OrderCancelledEvent struct {
	OrderID     string    `json:"orderId"`
	CustomerID  string    `json:"customerId"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelledAt"`
}

type ReturnInitiatedEvent struct {
	ReturnID     string    `json:"returnId"`
	OrderID      string    `json:"orderId"`
	CustomerID   string    `json:"customerId"`
	Items        []string  `json:"items"`
	Reason       string    `json:"reason"`
	RefundAmount string    `json:"refundAmount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type SupportService struct {
	data    EcommerceStrategy
	kb      *KnowledgeBase
	events  EventPublisher
	log     *slog.Logger
	nowFunc func() time.Time
}

type Option func(*SupportService)

func WithPublisher(p EventPublisher) Option {
	return func(s *SupportService) {
		if p != nil {
			s.events = p
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *SupportService) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *SupportService) { s.nowFunc = now }
}

func NewSupportService(data EcommerceStrategy, kb *KnowledgeBase, opts ...Option) *SupportService {
	s := &SupportService{
		data:    data,
		kb:      kb,
		events:  noopPublisher{},
		log:     slog.Default(),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SupportService) Knowledge() *KnowledgeBase { return s.kb }

// Estados desde los que no se acepta cancelación; el valor indica el motivo.
var cancelRejections = map[model.OrderStatus]string{
	model.StatusDelivered: "already",
	model.StatusCancelled: "already",
	model.StatusShipped:   "shipped",
	model.StatusInTransit: "shipped",
}

// Sólo se devuelve lo que ya salió.
var returnableStates = map[model.OrderStatus]bool{
	model.StatusShipped:   true,
	model.StatusDelivered: true,
}

// Transiciones permitidas para actualizaciones externas (admin, rabbit)
var statusTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPending:        {model.StatusProcessing, model.StatusReadyForPickup, model.StatusCancelled, model.StatusFailed},
	model.StatusProcessing:     {model.StatusShipped, model.StatusReadyForPickup, model.StatusCancelled, model.StatusFailed},
	model.StatusShipped:        {model.StatusInTransit, model.StatusDelivered, model.StatusFailed},
	model.StatusInTransit:      {model.StatusDelivered, model.StatusFailed},
	model.StatusReadyForPickup: {model.StatusDelivered, model.StatusCancelled},
}

// Estados finales
var finalStates = map[model.OrderStatus]bool{
	model.StatusDelivered: true,
	model.StatusCancelled: true,
	model.StatusFailed:    true,
}

// guard convierte errores inesperados y panics en la disculpa estándar.
func (s *SupportService) guard(ctx context.Context, op, action string, fn func() (string, error)) (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "support operation panicked", "op", op, "panic", fmt.Sprint(r))
			out = apology(action)
		}
	}()
	msg, err := fn()
	if err != nil {
		s.log.ErrorContext(ctx, "support operation failed", "op", op, "error", err)
		return apology(action)
	}
	return msg
}

func (s *SupportService) GetOrderStatus(ctx context.Context, orderID, customerID string) string {
	return s.guard(ctx, "get_order_status", "retrieving the order status", func() (string, error) {
		order, err := s.data.GetOrder(ctx, orderID)
		if errors.Is(err, ErrNotFound) {
			return notFoundText(orderID), nil
		}
		if err != nil {
			return "", err
		}

		var tracking *model.TrackingInfo
		if order.Status.IsTrackable() {
			tracking, err = s.data.GetOrderTracking(ctx, orderID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return "", err
			}
		}
		s.log.DebugContext(ctx, "order status served", "order_id", orderID, "customer_id", customerID, "status", order.Status)
		return formatOrderStatus(order, tracking), nil
	})
}

func (s *SupportService) CancelOrder(ctx context.Context, orderID, reason, customerID string) string {
	return s.guard(ctx, "cancel_order", "cancelling the order", func() (string, error) {
		order, err := s.data.GetOrder(ctx, orderID)
		if errors.Is(err, ErrNotFound) {
			return notFoundText(orderID), nil
		}
		if err != nil {
			return "", err
		}

		switch cancelRejections[order.Status] {
		case "already":
			return fmt.Sprintf("Order %s cannot be cancelled as it is already %s.", orderID, order.Status), nil
		case "shipped":
			return fmt.Sprintf("Order %s has already shipped and cannot be cancelled. Please use the return process instead.", orderID), nil
		}

		ok, err := s.data.CancelOrder(ctx, orderID, reason)
		if err != nil {
			return "", err
		}
		if !ok {
			return fmt.Sprintf("Unable to cancel order %s at this time. Please contact customer support.", orderID), nil
		}

		s.publish(ctx, RoutingOrderCancelled, OrderCancelledEvent{
			OrderID:     orderID,
			CustomerID:  customerID,
			Reason:      reason,
			CancelledAt: s.nowFunc().UTC(),
		})
		s.log.InfoContext(ctx, "order cancelled", "order_id", orderID, "customer_id", customerID)
		return formatCancelled(orderID, reason), nil
	})
}

func (s *SupportService) ProcessReturn(ctx context.Context, orderID string, itemIDs []string, reason, customerID string) string {
	return s.guard(ctx, "process_return", "processing the return", func() (string, error) {
		order, err := s.data.GetOrder(ctx, orderID)
		if errors.Is(err, ErrNotFound) {
			return notFoundText(orderID), nil
		}
		if err != nil {
			return "", err
		}

		if !returnableStates[order.Status] {
			return fmt.Sprintf("Order %s cannot be returned yet (current status: %s). Returns are available once your order has shipped or been delivered.",
				orderID, order.Status), nil
		}

		if len(itemIDs) == 0 {
			itemIDs = order.ProductIDs()
		}
		ret, err := s.data.InitiateReturn(ctx, orderID, itemIDs, reason)
		if err != nil {
			return "", err
		}
		if ret == nil {
			return fmt.Sprintf("Unable to process return for order %s at this time. Please contact customer support.", orderID), nil
		}

		s.publish(ctx, RoutingReturnInitiated, ReturnInitiatedEvent{
			ReturnID:     ret.ReturnID,
			OrderID:      orderID,
			CustomerID:   customerID,
			Items:        ret.Items,
			Reason:       ret.Reason,
			RefundAmount: ret.RefundAmount.StringFixed(2),
			CreatedAt:    ret.CreatedAt,
		})
		s.log.InfoContext(ctx, "return initiated", "order_id", orderID, "return_id", ret.ReturnID)
		return formatReturn(orderID, ret), nil
	})
}

// TrackPackage sólo soporta búsqueda por número de orden.
func (s *SupportService) TrackPackage(ctx context.Context, identifier, identifierType, customerID string) string {
	return s.guard(ctx, "track_package", "tracking the package", func() (string, error) {
		if !strings.EqualFold(identifierType, "order") {
			return fmt.Sprintf("Tracking by %s is not yet implemented. Please use your order number instead.", identifierType), nil
		}
		info, err := s.data.GetOrderTracking(ctx, identifier)
		if errors.Is(err, ErrNotFound) || (err == nil && info == nil) {
			return fmt.Sprintf("No tracking information available for order %s.", identifier), nil
		}
		if err != nil {
			return "", err
		}
		return formatTracking(identifier, info), nil
	})
}

func (s *SupportService) GetSupportInfo(ctx context.Context, topic, customerID string) string {
	return s.guard(ctx, "get_support_info", "retrieving support information", func() (string, error) {
		t := strings.ToLower(topic)
		switch {
		case strings.Contains(t, "return") || strings.Contains(t, "refund"):
			policy, err := s.data.GetReturnPolicy(ctx)
			if err != nil {
				return "", err
			}
			return policy + "\n\nTo start a return, just share your order number and I will take care of it.", nil
		case strings.Contains(t, "shipping") || strings.Contains(t, "delivery"):
			opts, err := s.data.GetShippingOptions(ctx, "")
			if err != nil {
				return "", err
			}
			return formatShippingInfo(opts, s.kb.FreeShippingThreshold()), nil
		case strings.Contains(t, "contact") || strings.Contains(t, "support"):
			return formatContactInfo(s.kb.GeneralContact()), nil
		default:
			return generalHelpText, nil
		}
	})
}

// SearchOrders y CustomerOrders son de uso interno (admin).
func (s *SupportService) SearchOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, error) {
	return s.data.SearchOrders(ctx, f)
}

func (s *SupportService) CustomerOrders(ctx context.Context, customerID string, f model.OrderFilter) ([]model.Order, error) {
	return s.data.GetCustomerOrders(ctx, customerID, f)
}

// UpdateStatus aplica una transición externa (depósito, transportista) validando
// que no se retroceda desde un estado final.
func (s *SupportService) UpdateStatus(ctx context.Context, orderID, newStatus, reason string) (*model.Order, error) {
	next, err := model.ParseOrderStatus(newStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	order, err := s.data.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Si el estado nuevo es el mismo que ya está, no hacemos nada
	if order.Status == next {
		return order, nil
	}

	// La regla se evalúa dentro de la estrategia, sobre el estado vigente:
	// una cancelación concurrente no puede quedar pisada.
	from := order.Status
	ok, err := s.data.UpdateOrderStatus(ctx, orderID, next, func(current model.OrderStatus) error {
		from = current
		return checkTransition(current, next)
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	s.log.InfoContext(ctx, "order status updated", "order_id", orderID, "from", from, "to", next, "reason", reason)
	return s.data.GetOrder(ctx, orderID)
}

func checkTransition(current, next model.OrderStatus) error {
	if finalStates[current] {
		return ErrFinalState
	}
	if !contains(statusTransitions[current], next) {
		return ErrInvalidTransition
	}
	return nil
}

func (s *SupportService) publish(ctx context.Context, key string, payload any) {
	if err := s.events.Publish(ctx, key, payload); err != nil {
		s.log.WarnContext(ctx, "event publish failed", "routing_key", key, "error", err)
	}
}

func contains(arr []model.OrderStatus, s model.OrderStatus) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
