// dto.go
package dto

// Argumentos de herramientas. Los valores por defecto se cargan antes de decodificar,
// así un campo ausente conserva el default.

type OrderStatusArgs struct {
	OrderID    string `json:"order_id" validate:"required"`
	CustomerID string `json:"customer_id"`
}

type CancelOrderArgs struct {
	OrderID    string `json:"order_id" validate:"required"`
	Reason     string `json:"reason" validate:"max=500"`
	CustomerID string `json:"customer_id"`
}

type ProcessReturnArgs struct {
	OrderID    string   `json:"order_id" validate:"required"`
	ItemIDs    []string `json:"item_ids" validate:"omitempty,dive,required"`
	Reason     string   `json:"reason" validate:"max=500"`
	CustomerID string   `json:"customer_id"`
}

type TrackPackageArgs struct {
	OrderID    string `json:"order_id" validate:"required"`
	CustomerID string `json:"customer_id"`
}

type SupportInfoArgs struct {
	Topic      string `json:"topic"`
	CustomerID string `json:"customer_id"`
}

type ReturnPolicyArgs struct {
	ProductCategory string `json:"product_category"`
}

type ShippingInfoArgs struct {
	DestinationCountry string   `json:"destination_country"`
	OrderValue         *float64 `json:"order_value" validate:"omitempty,gte=0"`
}

type ContactInfoArgs struct {
	IssueType string `json:"issue_type"`
	Urgency   string `json:"urgency"`
}

type SizeGuideArgs struct {
	ProductType string `json:"product_type" validate:"required"`
	Brand       string `json:"brand"`
}

type WarrantyArgs struct {
	ProductCategory string `json:"product_category" validate:"required"`
	PurchaseDate    string `json:"purchase_date"`
}

type InquiryArgs struct {
	InquiryType string `json:"inquiry_type"`
}

type AccountHelpArgs struct {
	IssueType string `json:"issue_type" validate:"required"`
}

type ProductCareArgs struct {
	ProductCategory string `json:"product_category" validate:"required"`
	Material        string `json:"material"`
}

// Requests REST (chat UI y admin)

type CancelRequest struct {
	Reason     string `json:"reason" validate:"max=500"`
	CustomerID string `json:"customerId"`
}

type ReturnRequest struct {
	ItemIDs    []string `json:"itemIds" validate:"omitempty,dive,required"`
	Reason     string   `json:"reason" validate:"max=500"`
	CustomerID string   `json:"customerId"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// StatusChangedMessage llega por Rabbit (exchange order_status_changed).
type StatusChangedMessage struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required"`
	Reason  string `json:"reason"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
