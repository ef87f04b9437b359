package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"order-support-mcp/internal/model"
)

var carriers = []string{"UPS", "FedEx", "USPS", "DHL"}

// trackingSalt separa el generador de seguimiento del de la orden.
const trackingSalt uint64 = 0x5452_4b00

var trackingStatusByOrder = map[model.OrderStatus]string{
	model.StatusShipped:   "out_for_delivery",
	model.StatusDelivered: "delivered",
	model.StatusInTransit: "in_transit",
}

var historyStatuses = []string{"scanned", "in transit", "out for delivery"}

const lostStatus = "lost"

func (s *MockDataStrategy) GetOrderTracking(ctx context.Context, orderID string) (*model.TrackingInfo, error) {
	p := ParseSuffix(orderID)
	if p.NotFound {
		return nil, ErrNotFound
	}

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	carrier := carriers[carrierIndex(orderID, len(carriers))]
	f := newFaker(s.seedFunc(orderID) ^ trackingSalt)

	if p.ForceFailure {
		tn := o.TrackingNumber
		if tn == "" {
			tn = newTrackingNumber(f)
		}
		scanned := o.CreatedAt.Add(12 * time.Hour)
		lost := o.CreatedAt.Add(36 * time.Hour)
		return &model.TrackingInfo{
			TrackingNumber:  tn,
			Carrier:         carrier,
			Status:          lostStatus,
			LastUpdate:      lost,
			CurrentLocation: "Unknown",
			TrackingURL:     trackingURL(carrier, tn),
			History: []model.TrackingEvent{
				{Timestamp: scanned, Location: "Origin facility", Status: "Package scanned at origin facility"},
				{Timestamp: lost, Location: "Unknown", Status: "Package lost in transit - investigation opened"},
			},
		}, nil
	}

	if o.TrackingNumber == "" && !o.Status.IsTrackable() {
		return nil, ErrNotFound
	}
	tn := o.TrackingNumber
	if tn == "" {
		tn = newTrackingNumber(f)
	}

	status, ok := trackingStatusByOrder[o.Status]
	if !ok {
		status = string(o.Status)
	}

	now := s.nowFunc()
	info := &model.TrackingInfo{
		TrackingNumber: tn,
		Carrier:        carrier,
		Status:         status,
		LastUpdate:     now.Add(-time.Duration(f.IntRange(1, 24)) * time.Hour),
		TrackingURL:    trackingURL(carrier, tn),
	}
	delivered := o.Status == model.StatusDelivered
	if delivered {
		info.LastUpdate = o.UpdatedAt
		info.CurrentLocation = o.ShippingAddress.Town
	} else {
		eta := o.CreatedAt.Add(time.Duration(f.IntRange(3, 7)) * 24 * time.Hour)
		info.EstimatedDelivery = &eta
		info.CurrentLocation = fakeLocation(f)
	}
	if info.LastUpdate.Before(o.CreatedAt) {
		info.LastUpdate = o.CreatedAt
	}

	info.History = trackingHistory(f, o.CreatedAt, info.LastUpdate, f.IntRange(2, 5))
	if delivered {
		last := &info.History[len(info.History)-1]
		last.Status = "Package delivered"
		last.Location = info.CurrentLocation
	}
	return info, nil
}

// trackingHistory reparte n eventos entre from y to; el último cae exactamente en to.
func trackingHistory(f *gofakeit.Faker, from, to time.Time, n int) []model.TrackingEvent {
	step := to.Sub(from) / time.Duration(n-1)
	out := make([]model.TrackingEvent, 0, n)
	for i := 0; i < n; i++ {
		ts := from.Add(step * time.Duration(i))
		status := "Package " + historyStatuses[f.IntRange(0, len(historyStatuses)-1)]
		if i == 0 {
			status = "Package scanned at origin facility"
		}
		if i == n-1 {
			ts = to
		}
		out = append(out, model.TrackingEvent{Timestamp: ts, Location: fakeLocation(f), Status: status})
	}
	return out
}

func trackingURL(carrier, trackingNumber string) string {
	return fmt.Sprintf("https://%s.com/track/%s", strings.ToLower(carrier), trackingNumber)
}
