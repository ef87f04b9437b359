package repository

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"order-support-mcp/internal/model"
)

type catalogProduct struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
}

// Catálogo fijo usado para generar las entries.
var productCatalog = []catalogProduct{
	{"PROD-101", "Wireless Headphones", decimal.RequireFromString("79.99")},
	{"PROD-102", "Cotton T-Shirt", decimal.RequireFromString("19.99")},
	{"PROD-103", "Running Shoes", decimal.RequireFromString("129.50")},
	{"PROD-104", "Stainless Water Bottle", decimal.RequireFromString("24.00")},
	{"PROD-105", "Leather Wallet", decimal.RequireFromString("45.00")},
	{"PROD-106", "Smartphone Case", decimal.RequireFromString("15.99")},
	{"PROD-107", "Coffee Maker", decimal.RequireFromString("89.90")},
	{"PROD-108", "Silk Scarf", decimal.RequireFromString("59.00")},
	{"PROD-109", "Desk Lamp", decimal.RequireFromString("34.75")},
	{"PROD-110", "Yoga Mat", decimal.RequireFromString("29.99")},
}

// Antigüedad (en días) de created_at según el estado.
var ageRangeDays = map[model.OrderStatus][2]int{
	model.StatusPending:        {0, 1},
	model.StatusProcessing:     {1, 3},
	model.StatusReadyForPickup: {1, 3},
	model.StatusShipped:        {2, 6},
	model.StatusInTransit:      {2, 6},
	model.StatusDelivered:      {7, 30},
	model.StatusCancelled:      {1, 14},
	model.StatusFailed:         {1, 14},
}

// Estados para los que la orden lleva número de seguimiento.
var trackedStatuses = map[model.OrderStatus]bool{
	model.StatusShipped:   true,
	model.StatusInTransit: true,
	model.StatusDelivered: true,
	model.StatusFailed:    true,
}

// zeroSeed reemplaza a la semilla 0, que gofakeit interpreta como aleatoria.
const zeroSeed uint64 = 0x9e3779b97f4a7c15

// newFaker crea un generador determinístico para la semilla dada.
func newFaker(seed uint64) *gofakeit.Faker {
	if seed == 0 {
		seed = zeroSeed
	}
	return gofakeit.New(seed)
}

// buildOrder arma una orden plausible usando únicamente el faker recibido y now.
func buildOrder(f *gofakeit.Faker, orderID string, status model.OrderStatus, now time.Time) model.Order {
	entryStatus := model.EntryActive
	if status == model.StatusCancelled {
		entryStatus = model.EntryCancelled
	}

	n := f.IntRange(1, 3)
	entries := make([]model.OrderEntry, 0, n)
	total := decimal.Zero
	for j := 0; j < n; j++ {
		p := productCatalog[f.IntRange(0, len(productCatalog)-1)]
		qty := f.IntRange(1, 3)
		amount := p.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
		total = total.Add(amount)
		entries = append(entries, model.OrderEntry{
			EntryID:     fmt.Sprintf("ENTRY-%s-%d", orderID, j+1),
			ProductID:   p.ProductID,
			Quantity:    qty,
			EntryAmount: amount,
			Status:      entryStatus,
		})
	}

	shipping := fakeAddress(f)
	billing := shipping
	// 30% de las veces la facturación va a otra dirección
	if f.Float64Range(0, 1) < 0.3 {
		billing = fakeAddress(f)
	}

	age := ageRangeDays[status]
	createdAt := now.
		Add(-time.Duration(f.IntRange(age[0], age[1])) * 24 * time.Hour).
		Add(-time.Duration(f.IntRange(1, 23)) * time.Hour)
	updatedAt := createdAt.Add(time.Duration(f.IntRange(1, 48)) * time.Hour)
	if updatedAt.After(now) {
		updatedAt = now
	}

	var tracking string
	if trackedStatuses[status] {
		tracking = newTrackingNumber(f)
	}

	return model.Order{
		OrderID:         orderID,
		CustomerID:      fmt.Sprintf("CUST-%d", f.IntRange(100, 200)),
		Status:          status,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		Entries:         entries,
		TotalAmount:     total.Round(2),
		ShippingAddress: shipping,
		BillingAddress:  billing,
		TrackingNumber:  tracking,
	}
}

func fakeAddress(f *gofakeit.Faker) model.Address {
	var line2 string
	if f.Float64Range(0, 1) > 0.7 {
		line2 = "Apt " + f.Numerify("###")
	}
	return model.Address{
		Line1:    f.Street(),
		Line2:    line2,
		Line3:    "",
		Town:     f.City(),
		Postcode: f.Zip(),
		Country:  "USA",
		Phone:    f.Phone(),
	}
}

func newTrackingNumber(f *gofakeit.Faker) string {
	return "TRK" + f.Numerify("############")
}

func fakeLocation(f *gofakeit.Faker) string {
	return f.City() + ", " + f.StateAbr()
}
