// models.go
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusInTransit      OrderStatus = "in_transit"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusFailed         OrderStatus = "failed"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
)

// Estados válidos (por nombre).
var validStatuses = map[OrderStatus]bool{
	StatusPending:        true,
	StatusProcessing:     true,
	StatusShipped:        true,
	StatusInTransit:      true,
	StatusDelivered:      true,
	StatusCancelled:      true,
	StatusFailed:         true,
	StatusReadyForPickup: true,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !validStatuses[st] {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

// Estados en los que el paquete ya salió del depósito.
func (s OrderStatus) IsTrackable() bool {
	return s == StatusShipped || s == StatusInTransit || s == StatusDelivered
}

const (
	EntryActive    = "active"
	EntryCancelled = "cancelled"

	ReturnInitiated = "initiated"
)

type Address struct {
	Line1    string `json:"line_1"`
	Line2    string `json:"line_2"`
	Line3    string `json:"line_3"`
	Town     string `json:"town"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

type OrderEntry struct {
	EntryID     string          `json:"entry_id"`
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	EntryAmount decimal.Decimal `json:"entry_amount"`
	Status      string          `json:"status"`
}

type Order struct {
	OrderID         string          `json:"order_id"`
	CustomerID      string          `json:"customer_id"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Entries         []OrderEntry    `json:"entries"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress Address         `json:"shipping_address"`
	BillingAddress  Address         `json:"billing_address"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
}

// Clone devuelve una copia que no comparte el slice de entries.
func (o Order) Clone() Order {
	cp := o
	cp.Entries = append([]OrderEntry(nil), o.Entries...)
	return cp
}

// ProductIDs de todas las entries, en orden.
func (o Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Entries))
	for _, e := range o.Entries {
		ids = append(ids, e.ProductID)
	}
	return ids
}

type Return struct {
	ReturnID     string          `json:"return_id"`
	OrderID      string          `json:"order_id"`
	Status       string          `json:"status"`
	Reason       string          `json:"reason"`
	Items        []string        `json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type TrackingEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location"`
	Status    string    `json:"status"`
}

// TrackingInfo no se guarda: se arma en cada consulta a partir de la orden.
type TrackingInfo struct {
	TrackingNumber    string          `json:"tracking_number"`
	Carrier           string          `json:"carrier"`
	Status            string          `json:"status"`
	LastUpdate        time.Time       `json:"last_update"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	CurrentLocation   string          `json:"current_location,omitempty"`
	TrackingURL       string          `json:"tracking_url"`
	History           []TrackingEvent `json:"history"`
}

type ShippingOption struct {
	OptionID      string          `json:"option_id"`
	Name          string          `json:"name"`
	EstimatedDays int             `json:"estimated_days"`
	Cost          decimal.Decimal `json:"cost"`
}

// OrderFilter: los campos vacíos no filtran.
type OrderFilter struct {
	OrderIDContains string
	CustomerID      string
	Status          OrderStatus
	CreatedFrom     time.Time
}

func (f OrderFilter) Match(o Order) bool {
	if f.OrderIDContains != "" && !containsFold(o.OrderID, f.OrderIDContains) {
		return false
	}
	if f.CustomerID != "" && o.CustomerID != f.CustomerID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !f.CreatedFrom.IsZero() && o.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	return true
}

// ToolCallReceipt registra cada invocación de herramienta (auditoría).
type ToolCallReceipt struct {
	ID         string         `bson:"receipt_id" json:"id"`
	ToolName   string         `bson:"tool_name" json:"tool_name"`
	SessionID  string         `bson:"session_id" json:"session_id,omitempty"`
	Transport  string         `bson:"transport" json:"transport"`
	Arguments  map[string]any `bson:"arguments" json:"arguments"`
	Output     string         `bson:"output" json:"output"`
	IsError    bool           `bson:"is_error" json:"is_error"`
	DurationMS int64          `bson:"duration_ms" json:"duration_ms"`
	Timestamp  time.Time      `bson:"timestamp" json:"timestamp"`
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
