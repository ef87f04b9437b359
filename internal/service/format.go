package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"order-support-mcp/internal/model"
)

const (
	longDate  = "January 02, 2006"
	shortTime = "Jan 02, 2006 15:04"
)

const generalHelpText = `How can I help you today? I can assist with:

- Checking the status of an order
- Cancelling an order that has not shipped yet
- Starting a return for shipped or delivered orders
- Tracking a package
- Return policy, shipping options and contact information

Just share your order number (for example ORD-1001) and what you need.`

var returnSteps = []string{
	"Print the prepaid return label we sent to your email",
	"Pack the items securely, in their original packaging if possible",
	"Drop the package off at any authorized carrier location",
	"Your refund will be processed within 5-7 business days after we receive the items",
}

func apology(action string) string {
	return fmt.Sprintf("I apologize, but I encountered an error while %s. Please try again or contact customer support.", action)
}

func notFoundText(orderID string) string {
	return fmt.Sprintf("Order %s not found. Please check the order number and try again.", orderID)
}

// displayStatus: in_transit -> "In Transit". Caser no es seguro entre goroutines.
func displayStatus(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

func formatOrderStatus(o *model.Order, tracking *model.TrackingInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s\n", o.OrderID)
	fmt.Fprintf(&b, "Status: %s\n", displayStatus(string(o.Status)))
	fmt.Fprintf(&b, "Order Date: %s\n", o.CreatedAt.Format(longDate))
	fmt.Fprintf(&b, "Total: $%s\n", o.TotalAmount.StringFixed(2))
	fmt.Fprintf(&b, "Items: %d\n", len(o.Entries))

	switch o.Status {
	case model.StatusShipped, model.StatusInTransit, model.StatusDelivered:
		if tracking == nil {
			b.WriteString("\nTracking information will be available soon.")
			break
		}
		fmt.Fprintf(&b, "\nTracking Number: %s\n", tracking.TrackingNumber)
		fmt.Fprintf(&b, "Carrier: %s\n", tracking.Carrier)
		fmt.Fprintf(&b, "Current Status: %s\n", tracking.Status)
		if tracking.EstimatedDelivery != nil {
			fmt.Fprintf(&b, "Estimated Delivery: %s\n", tracking.EstimatedDelivery.Format(longDate))
		}
	case model.StatusReadyForPickup:
		b.WriteString("\nYour order is ready for pickup! Please bring a valid photo ID and your order number. Orders are held for 7 days.")
	case model.StatusCancelled:
		b.WriteString("\nThis order has been cancelled. If you were charged, the refund goes back to your original payment method within 5-7 business days.")
	case model.StatusFailed:
		b.WriteString("\nThere was a problem processing this order. Our support team has been notified and will contact you shortly.")
	default:
		b.WriteString("\nYour order is being prepared. You will receive a tracking number as soon as it ships.")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCancelled(orderID, reason string) string {
	return fmt.Sprintf("Order %s has been successfully cancelled.\nReason: %s\n"+
		"If you were charged, a refund will be issued to your original payment method within 5-7 business days.",
		orderID, reason)
}

func formatReturn(orderID string, r *model.Return) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Return initiated for order %s\n", orderID)
	fmt.Fprintf(&b, "Return ID: %s\n", r.ReturnID)
	fmt.Fprintf(&b, "Items: %s\n", strings.Join(r.Items, ", "))
	fmt.Fprintf(&b, "Reason: %s\n", r.Reason)
	fmt.Fprintf(&b, "Estimated refund: $%s\n", r.RefundAmount.StringFixed(2))
	b.WriteString("\nNext steps:\n")
	for i, step := range returnSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTracking(orderID string, t *model.TrackingInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Package Tracking: %s\n", orderID)
	fmt.Fprintf(&b, "Tracking Number: %s\n", t.TrackingNumber)
	fmt.Fprintf(&b, "Carrier: %s\n", t.Carrier)
	fmt.Fprintf(&b, "Status: %s\n", displayStatus(t.Status))
	fmt.Fprintf(&b, "Last Update: %s\n", t.LastUpdate.Format(shortTime))
	if t.EstimatedDelivery != nil {
		fmt.Fprintf(&b, "Estimated Delivery: %s\n", t.EstimatedDelivery.Format(longDate))
	}
	if t.CurrentLocation != "" {
		fmt.Fprintf(&b, "Current Location: %s\n", t.CurrentLocation)
	}
	if len(t.History) > 0 {
		b.WriteString("\nRecent activity:\n")
		for _, ev := range t.History {
			fmt.Fprintf(&b, "- %s  %s (%s)\n", ev.Timestamp.Format(shortTime), ev.Status, ev.Location)
		}
	}
	if t.TrackingURL != "" {
		fmt.Fprintf(&b, "\nTrack online: %s\n", t.TrackingURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatShippingInfo(opts []model.ShippingOption, freeThreshold float64) string {
	var b strings.Builder
	b.WriteString("Shipping Information\n\nAvailable shipping options:\n")
	for _, o := range opts {
		unit := "days"
		if o.EstimatedDays == 1 {
			unit = "day"
		}
		fmt.Fprintf(&b, "- %s: $%s (%d business %s)\n", o.Name, o.Cost.StringFixed(2), o.EstimatedDays, unit)
	}
	if freeThreshold > 0 {
		fmt.Fprintf(&b, "\nFree standard shipping on orders over $%.2f.\n", freeThreshold)
	}
	b.WriteString("Orders placed before 2 PM EST ship the same business day.")
	return b.String()
}

func formatContactInfo(c map[string]any) string {
	var b strings.Builder
	b.WriteString("Contact Information\n\n")
	fmt.Fprintf(&b, "Phone: %v\n", c["phone"])
	fmt.Fprintf(&b, "Email: %v\n", c["email"])
	fmt.Fprintf(&b, "Live Chat: %v\n", c["live_chat"])
	if hours, ok := c["business_hours"].(map[string]any); ok {
		b.WriteString("\nBusiness hours:\n")
		for _, k := range []string{"weekdays", "weekends", "holidays"} {
			if v, ok := hours[k]; ok {
				fmt.Fprintf(&b, "- %s: %v\n", displayStatus(k), v)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
