package mcp

import (
	"context"
	"fmt"

	"order-support-mcp/internal/dto"
	"order-support-mcp/internal/service"
)

const defaultCustomerID = "default"

// RegisterSupportTools publica las 14 herramientas de atención al cliente.
func RegisterSupportTools(r *Registry, svc *service.SupportService) error {
	kb := svc.Knowledge()
	tools := []Tool{
		{
			Name:        "get_order_status",
			Description: "Get status for a specific order, including tracking details when it has shipped.",
			InputSchema: `{
				"type": "object",
				"properties": {
					"order_id": {"type": "string", "minLength": 1, "description": "The order identifier (e.g. ORD-1001)"},
					"customer_id": {"type": "string", "description": "Customer identifier", "default": "default"}
				},
				"required": ["order_id"]
			}`,
			Handler: typed(r, dto.OrderStatusArgs{CustomerID: defaultCustomerID}, func(ctx context.Context, a dto.OrderStatusArgs) Result {
				return TextResult(svc.GetOrderStatus(ctx, a.OrderID, a.CustomerID))
			}),
		},
		{
			Name:        "cancel_order",
			Description: "Cancel an order that has not shipped yet.",
			InputSchema: `{
				"type": "object",
				"properties": {
					"order_id": {"type": "string", "minLength": 1, "description": "The order identifier to cancel"},
					"reason": {"type": "string", "description": "Reason for cancellation", "default": "Customer requested"},
					"customer_id": {"type": "string", "default": "default"}
				},
				"required": ["order_id"]
			}`,
			Handler: typed(r, dto.CancelOrderArgs{Reason: "Customer requested", CustomerID: defaultCustomerID}, func(ctx context.Context, a dto.CancelOrderArgs) Result {
				return TextResult(svc.CancelOrder(ctx, a.OrderID, a.Reason, a.CustomerID))
			}),
		},
		{
			Name:        "process_return",
			Description: "Process a return request for a shipped or delivered order. Without item_ids every item is returned.",
			InputSchema: `{
				"type": "object",
				"properties": {
					"order_id": {"type": "string", "minLength": 1},
					"item_ids": {"type": ["array", "null"], "items": {"type": "string", "minLength": 1}, "description": "Product ids to return; omit for all items"},
					"reason": {"type": "string", "default": "Customer return"},
					"customer_id": {"type": "string", "default": "default"}
				},
				"required": ["order_id"]
			}`,
			Handler: typed(r, dto.ProcessReturnArgs{Reason: "Customer return", CustomerID: defaultCustomerID}, func(ctx context.Context, a dto.ProcessReturnArgs) Result {
				return TextResult(svc.ProcessReturn(ctx, a.OrderID, a.ItemIDs, a.Reason, a.CustomerID))
			}),
		},
		{
			Name:        "track_package",
			Description: "Track package delivery for an order: carrier, status, location and delivery estimate.",
			InputSchema: `{
				"type": "object",
				"properties": {
					"order_id": {"type": "string", "minLength": 1},
					"customer_id": {"type": "string", "default": "default"}
				},
				"required": ["order_id"]
			}`,
			Handler: typed(r, dto.TrackPackageArgs{CustomerID: defaultCustomerID}, func(ctx context.Context, a dto.TrackPackageArgs) Result {
				return TextResult(svc.TrackPackage(ctx, a.OrderID, "order", a.CustomerID))
			}),
		},
		{
			Name:        "get_support_info",
			Description: `Get customer support information for a topic: "returns", "shipping", "contact" or "general".`,
			InputSchema: `{
				"type": "object",
				"properties": {
					"topic": {"type": "string", "default": "general"},
					"customer_id": {"type": "string", "default": "default"}
				}
			}`,
			Handler: typed(r, dto.SupportInfoArgs{Topic: "general", CustomerID: defaultCustomerID}, func(ctx context.Context, a dto.SupportInfoArgs) Result {
				return TextResult(svc.GetSupportInfo(ctx, a.Topic, a.CustomerID))
			}),
		},
		{
			Name:        "get_return_policy",
			Description: "Structured return policy, optionally with the rules of a product category (electronics, clothing, books, custom_items).",
			InputSchema: `{
				"type": "object",
				"properties": {"product_category": {"type": "string"}}
			}`,
			Handler: typed(r, dto.ReturnPolicyArgs{}, func(_ context.Context, a dto.ReturnPolicyArgs) Result {
				return StructuredResult(kb.GetReturnPolicy(a.ProductCategory))
			}),
		},
		{
			Name:        "get_shipping_info",
			Description: "Shipping options, costs and times. Optional destination country and order value for free-shipping eligibility.",
			InputSchema: `{
				"type": "object",
				"properties": {
					"destination_country": {"type": "string"},
					"order_value": {"type": "number", "minimum": 0}
				}
			}`,
			Handler: typed(r, dto.ShippingInfoArgs{}, func(_ context.Context, a dto.ShippingInfoArgs) Result {
				return StructuredResult(kb.GetShippingInfo(a.DestinationCountry, a.OrderValue))
			}),
		},
		{
			Name:        "get_contact_information",
			Description: "Contact channels, optionally routed by issue type (billing, technical, returns, shipping) and urgency (low, medium, high, emergency).",
			InputSchema: `{
				"type": "object",
				"properties": {
					"issue_type": {"type": "string"},
					"urgency": {"type": "string"}
				}
			}`,
			Handler: typed(r, dto.ContactInfoArgs{}, func(_ context.Context, a dto.ContactInfoArgs) Result {
				return StructuredResult(kb.GetContactInformation(a.IssueType, a.Urgency))
			}),
		},
		{
			Name:        "get_size_guide",
			Description: "Size charts and measuring instructions for a product type (shirts, shoes, dresses, pants).",
			InputSchema: `{
				"type": "object",
				"properties": {
					"product_type": {"type": "string", "minLength": 1},
					"brand": {"type": "string"}
				},
				"required": ["product_type"]
			}`,
			Handler: typed(r, dto.SizeGuideArgs{}, func(_ context.Context, a dto.SizeGuideArgs) Result {
				return StructuredResult(kb.GetSizeGuide(a.ProductType, a.Brand))
			}),
		},
		{
			Name:        "get_warranty_information",
			Description: "Warranty terms for a product category; with purchase_date (YYYY-MM-DD) also the remaining coverage.",
			InputSchema: `{
				"type": "object",
				"properties": {
					"product_category": {"type": "string", "minLength": 1},
					"purchase_date": {"type": "string"}
				},
				"required": ["product_category"]
			}`,
			Handler: typed(r, dto.WarrantyArgs{}, func(_ context.Context, a dto.WarrantyArgs) Result {
				return StructuredResult(kb.GetWarrantyInformation(a.ProductCategory, a.PurchaseDate))
			}),
		},
		{
			Name:        "get_payment_information",
			Description: "Accepted payment methods and billing details; inquiry_type: methods, billing, security or issues.",
			InputSchema: `{
				"type": "object",
				"properties": {"inquiry_type": {"type": "string"}}
			}`,
			Handler: typed(r, dto.InquiryArgs{}, func(_ context.Context, a dto.InquiryArgs) Result {
				return StructuredResult(kb.GetPaymentInformation(a.InquiryType))
			}),
		},
		{
			Name:        "get_account_help",
			Description: "Account troubleshooting for login, password, registration, profile, security or orders.",
			InputSchema: `{
				"type": "object",
				"properties": {"issue_type": {"type": "string", "minLength": 1}},
				"required": ["issue_type"]
			}`,
			Handler: typed(r, dto.AccountHelpArgs{}, func(_ context.Context, a dto.AccountHelpArgs) Result {
				return StructuredResult(kb.GetAccountHelp(a.IssueType))
			}),
		},
		{
			Name:        "get_loyalty_program_info",
			Description: "Loyalty program overview; inquiry_type: enrollment, benefits, points or tiers.",
			InputSchema: `{
				"type": "object",
				"properties": {"inquiry_type": {"type": "string"}}
			}`,
			Handler: typed(r, dto.InquiryArgs{}, func(_ context.Context, a dto.InquiryArgs) Result {
				return StructuredResult(kb.GetLoyaltyProgramInfo(a.InquiryType))
			}),
		},
		{
			Name:        "get_product_care_info",
			Description: "Care instructions for a product category (clothing, electronics, furniture, shoes), optionally for one material.",
			InputSchema: `{
				"type": "object",
				"properties": {
					"product_category": {"type": "string", "minLength": 1},
					"material": {"type": "string"}
				},
				"required": ["product_category"]
			}`,
			Handler: typed(r, dto.ProductCareArgs{}, func(_ context.Context, a dto.ProductCareArgs) Result {
				return StructuredResult(kb.GetProductCareInfo(a.ProductCategory, a.Material))
			}),
		},
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return fmt.Errorf("register support tools: %w", err)
		}
	}
	return nil
}
