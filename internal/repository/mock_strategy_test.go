package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-support-mcp/internal/model"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestStrategy(t *testing.T, opts ...Option) *MockDataStrategy {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewMockDataStrategy(opts...)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestNewMockDataStrategy_Pool(t *testing.T) {
	s := newTestStrategy(t)
	orders, returns := s.Size()
	assert.Equal(t, 20, orders)
	assert.Equal(t, 0, returns)

	o, err := s.GetOrder(context.Background(), "ORD-1000")
	require.NoError(t, err)
	assert.NotEmpty(t, o.Entries)
	assert.NotEmpty(t, o.ShippingAddress.Line1)
	assert.Contains(t, poolStatuses, o.Status)

	for i := 0; i < 20; i++ {
		o, err := s.GetOrder(context.Background(), fmt.Sprintf("ORD-%d", 1000+i))
		require.NoError(t, err)
		hasTracking := o.Status == model.StatusShipped || o.Status == model.StatusDelivered
		assert.Equal(t, hasTracking, o.TrackingNumber != "", o.OrderID)
	}
}

func TestNewMockDataStrategy_PoolIsReproducible(t *testing.T) {
	a := newTestStrategy(t)
	b := newTestStrategy(t)
	ctx := context.Background()

	oa, err := a.SearchOrders(ctx, model.OrderFilter{})
	require.NoError(t, err)
	ob, err := b.SearchOrders(ctx, model.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, mustJSON(t, oa), mustJSON(t, ob))

	c := newTestStrategy(t, WithPool(5, 7))
	orders, _ := c.Size()
	assert.Equal(t, 5, orders)
}

func TestGetOrder_DynamicPending(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	first, err := s.GetOrder(ctx, "ORD-9999")
	require.NoError(t, err)
	assert.Equal(t, "ORD-9999", first.OrderID)
	assert.Equal(t, model.StatusPending, first.Status)
	assert.Empty(t, first.TrackingNumber)

	second, err := s.GetOrder(ctx, "ORD-9999")
	require.NoError(t, err)
	assert.Equal(t, mustJSON(t, first), mustJSON(t, second))

	orders, _ := s.Size()
	assert.Equal(t, 21, orders)
}

func TestGetOrder_SuffixPatterns(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	cases := []struct {
		id       string
		status   model.OrderStatus
		tracking bool
	}{
		{"ORD-2001-D", model.StatusDelivered, true},
		{"ORD-2002-C", model.StatusCancelled, false},
		{"ORD-2003-S", model.StatusShipped, true},
		{"ORD-2004-P", model.StatusProcessing, false},
		{"ORD-2005-F", model.StatusFailed, true},
		{"ORD-2006-R", model.StatusReadyForPickup, false},
		{"ORD-2007-T", model.StatusInTransit, true},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			o, err := s.GetOrder(ctx, tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.status, o.Status)
			assert.Equal(t, tc.tracking, o.TrackingNumber != "")
			if tc.tracking {
				assert.Regexp(t, `^TRK\d{12}$`, o.TrackingNumber)
			}
			assert.False(t, o.CreatedAt.After(o.UpdatedAt))
			assert.False(t, o.UpdatedAt.After(fixedNow))
		})
	}

	cancelled, err := s.GetOrder(ctx, "ORD-2002-C")
	require.NoError(t, err)
	for _, e := range cancelled.Entries {
		assert.Equal(t, model.EntryCancelled, e.Status)
	}

	delivered, err := s.GetOrder(ctx, "ORD-2001-D")
	require.NoError(t, err)
	assert.True(t, delivered.CreatedAt.Before(fixedNow.Add(-7*24*time.Hour)))
}

func TestGetOrder_NotFound(t *testing.T) {
	s := newTestStrategy(t)
	for _, id := range []string{"ORD-1234-E", "INVALID-ID", "ORD-ERROR", ""} {
		o, err := s.GetOrder(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound, id)
		assert.Nil(t, o)
	}
	orders, _ := s.Size()
	assert.Equal(t, 20, orders)
}

func TestGetOrder_TotalMatchesEntries(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()
	suffixes := []string{"", "-D", "-C", "-S", "-P", "-F", "-R", "-T"}

	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("ORD-%d%s", 5000+i, suffixes[i%len(suffixes)])
		o, err := s.GetOrder(ctx, id)
		require.NoError(t, err)

		require.GreaterOrEqual(t, len(o.Entries), 1)
		require.LessOrEqual(t, len(o.Entries), 3)
		sum := decimal.Zero
		for _, e := range o.Entries {
			assert.GreaterOrEqual(t, e.Quantity, 1)
			sum = sum.Add(e.EntryAmount)
		}
		assert.True(t, sum.Equal(o.TotalAmount), "%s: %s != %s", id, sum, o.TotalAmount)
		assert.Equal(t, int32(-2), o.TotalAmount.Exponent(), id)
	}
}

func TestGetOrder_InjectedSeedFunc(t *testing.T) {
	constant := WithSeedFunc(func(string) uint64 { return 7 })
	a := newTestStrategy(t, constant)
	b := newTestStrategy(t, constant)
	ctx := context.Background()

	oa, err := a.GetOrder(ctx, "ORD-ALPHA")
	require.NoError(t, err)
	ob, err := b.GetOrder(ctx, "ORD-BETA")
	require.NoError(t, err)

	// misma semilla, mismo contenido generado
	assert.Equal(t, oa.ProductIDs(), ob.ProductIDs())
	assert.True(t, oa.TotalAmount.Equal(ob.TotalAmount))
	assert.Equal(t, oa.ShippingAddress, ob.ShippingAddress)
	assert.Equal(t, oa.CreatedAt, ob.CreatedAt)

	// entre procesos con el mismo reloj el resultado es idéntico
	c := newTestStrategy(t)
	d := newTestStrategy(t)
	oc, err := c.GetOrder(ctx, "ORD-4242-S")
	require.NoError(t, err)
	od, err := d.GetOrder(ctx, "ORD-4242-S")
	require.NoError(t, err)
	assert.Equal(t, mustJSON(t, oc), mustJSON(t, od))
}

func TestCancelOrder(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	ok, err := s.CancelOrder(ctx, "ORD-3001-P", "Customer requested")
	require.NoError(t, err)
	assert.True(t, ok)
	o, err := s.GetOrder(ctx, "ORD-3001-P")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, o.Status)
	assert.Equal(t, fixedNow, o.UpdatedAt)
	for _, e := range o.Entries {
		assert.Equal(t, model.EntryCancelled, e.Status)
	}

	// segunda vez ya no es cancelable
	ok, err = s.CancelOrder(ctx, "ORD-3001-P", "again")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CancelOrder(ctx, "ORD-3005", "pending")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCancelOrder_RejectedWithoutMutation(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	for _, id := range []string{"ORD-3002-F", "ORD-3003-D", "ORD-3004-S", "ORD-3006-T"} {
		before, err := s.GetOrder(ctx, id)
		require.NoError(t, err)

		ok, err := s.CancelOrder(ctx, id, "Customer requested")
		require.NoError(t, err)
		assert.False(t, ok, id)

		after, err := s.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, mustJSON(t, before), mustJSON(t, after), id)
	}

	ok, err := s.CancelOrder(ctx, "ORD-3007-E", "Customer requested")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCancelOrder_ForcedFailureIgnoresStatus(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	ok, err := s.UpdateOrderStatus(ctx, "ORD-3010-F", model.StatusPending, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.CancelOrder(ctx, "ORD-3010-F", "Customer requested")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCancelOrder_ConcurrentSingleWinner(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.CancelOrder(ctx, "ORD-6000-P", "race")
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestInitiateReturn(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	r, err := s.InitiateReturn(ctx, "ORD-1000", []string{"ENTRY-001"}, "Damaged item")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1000", r.OrderID)
	assert.Equal(t, model.ReturnInitiated, r.Status)
	assert.Equal(t, "Damaged item", r.Reason)
	assert.Equal(t, []string{"ENTRY-001"}, r.Items)
	assert.Regexp(t, `^RET-\d{4}$`, r.ReturnID)
	assert.True(t, r.RefundAmount.GreaterThanOrEqual(decimal.NewFromInt(10)))
	assert.True(t, r.RefundAmount.LessThanOrEqual(decimal.NewFromInt(500)))
	assert.Equal(t, fixedNow, r.CreatedAt)

	stored, err := s.GetReturn(ctx, r.ReturnID)
	require.NoError(t, err)
	assert.Equal(t, r.ReturnID, stored.ReturnID)

	r2, err := s.InitiateReturn(ctx, "ORD-1000", nil, "Second")
	require.NoError(t, err)
	assert.NotEqual(t, r.ReturnID, r2.ReturnID)

	_, returns := s.Size()
	assert.Equal(t, 2, returns)

	_, err = s.GetReturn(ctx, "RET-NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	ok, err := s.UpdateOrderStatus(ctx, "ORD-7001", model.StatusShipped, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	o, err := s.GetOrder(ctx, "ORD-7001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, o.Status)
	assert.NotEmpty(t, o.TrackingNumber)

	ok, err = s.UpdateOrderStatus(ctx, "ORD-ERROR", model.StatusShipped, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.UpdateOrderStatus(ctx, "ORD-7001", model.OrderStatus("teleported"), nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateOrderStatus_CheckSeesCurrentStatus(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()
	errTerminal := errors.New("terminal")

	ok, err := s.CancelOrder(ctx, "ORD-7002", "Customer requested")
	require.NoError(t, err)
	require.True(t, ok)

	var seen model.OrderStatus
	ok, err = s.UpdateOrderStatus(ctx, "ORD-7002", model.StatusShipped, func(current model.OrderStatus) error {
		seen = current
		if current == model.StatusCancelled {
			return errTerminal
		}
		return nil
	})
	assert.ErrorIs(t, err, errTerminal)
	assert.False(t, ok)
	assert.Equal(t, model.StatusCancelled, seen)

	o, err := s.GetOrder(ctx, "ORD-7002")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, o.Status)

	// mismo estado: no se consulta check ni se toca updated_at
	called := false
	ok, err = s.UpdateOrderStatus(ctx, "ORD-7002", model.StatusCancelled, func(model.OrderStatus) error {
		called = true
		return errTerminal
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, called)
}

func TestUpdateOrderStatus_RacesWithCancel(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()
	errCancelled := errors.New("cancelled")
	notCancelled := func(current model.OrderStatus) error {
		if current == model.StatusCancelled {
			return errCancelled
		}
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	cancels, ships := 0, 0
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if ok, _ := s.CancelOrder(ctx, "ORD-7003-P", "Customer requested"); ok {
				mu.Lock()
				cancels++
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			if ok, err := s.UpdateOrderStatus(ctx, "ORD-7003-P", model.StatusShipped, notCancelled); ok && err == nil {
				mu.Lock()
				ships++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	o, err := s.GetOrder(ctx, "ORD-7003-P")
	require.NoError(t, err)
	switch o.Status {
	case model.StatusCancelled:
		assert.Equal(t, 1, cancels)
		assert.Zero(t, ships)
	case model.StatusShipped:
		assert.Zero(t, cancels)
		assert.Positive(t, ships)
	default:
		t.Fatalf("unexpected status %s", o.Status)
	}
}

func TestGetOrderTracking_Patterns(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	_, err := s.GetOrderTracking(ctx, "ORD-4001-E")
	assert.ErrorIs(t, err, ErrNotFound)

	lost, err := s.GetOrderTracking(ctx, "ORD-4002-F")
	require.NoError(t, err)
	assert.Equal(t, "lost", lost.Status)
	assert.Len(t, lost.History, 2)
	assert.Nil(t, lost.EstimatedDelivery)

	delivered, err := s.GetOrderTracking(ctx, "ORD-4003-D")
	require.NoError(t, err)
	assert.Equal(t, "delivered", delivered.Status)
	assert.Nil(t, delivered.EstimatedDelivery)

	transit, err := s.GetOrderTracking(ctx, "ORD-4004-T")
	require.NoError(t, err)
	assert.Equal(t, "in_transit", transit.Status)
	assert.NotNil(t, transit.EstimatedDelivery)

	shipped, err := s.GetOrderTracking(ctx, "ORD-4005-S")
	require.NoError(t, err)
	assert.Equal(t, "out_for_delivery", shipped.Status)

	for _, info := range []*model.TrackingInfo{delivered, transit, shipped} {
		assert.Contains(t, carriers, info.Carrier)
		assert.GreaterOrEqual(t, len(info.History), 2)
		assert.LessOrEqual(t, len(info.History), 5)
		assert.Contains(t, info.TrackingURL, info.TrackingNumber)
		for i := 1; i < len(info.History); i++ {
			assert.False(t, info.History[i].Timestamp.Before(info.History[i-1].Timestamp), "history out of order")
		}
		assert.Equal(t, info.LastUpdate, info.History[len(info.History)-1].Timestamp)
	}

	newest := delivered.History[len(delivered.History)-1]
	assert.Equal(t, "Package delivered", newest.Status)
	assert.Equal(t, delivered.CurrentLocation, newest.Location)

	_, err = s.GetOrderTracking(ctx, "ORD-4006")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetOrderTracking(ctx, "ORD-4007-R")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrderTracking_Stable(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	first, err := s.GetOrderTracking(ctx, "ORD-4010-T")
	require.NoError(t, err)
	second, err := s.GetOrderTracking(ctx, "ORD-4010-T")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	o, err := s.GetOrder(ctx, "ORD-4010-T")
	require.NoError(t, err)
	assert.Equal(t, o.TrackingNumber, first.TrackingNumber)
	assert.Equal(t, carriers[carrierIndex("ORD-4010-T", len(carriers))], first.Carrier)
}

func TestSearchOrders(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	results, err := s.SearchOrders(ctx, model.OrderFilter{OrderIDContains: "ORD-1"})
	require.NoError(t, err)
	assert.Len(t, results, 20)
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].OrderID, results[i].OrderID)
	}

	customer := results[0].CustomerID
	byCustomer, err := s.SearchOrders(ctx, model.OrderFilter{CustomerID: customer})
	require.NoError(t, err)
	require.NotEmpty(t, byCustomer)
	for _, o := range byCustomer {
		assert.Equal(t, customer, o.CustomerID)
	}

	pending, err := s.SearchOrders(ctx, model.OrderFilter{Status: model.StatusPending})
	require.NoError(t, err)
	for _, o := range pending {
		assert.Equal(t, model.StatusPending, o.Status)
	}

	// la búsqueda no sintetiza órdenes
	none, err := s.SearchOrders(ctx, model.OrderFilter{OrderIDContains: "ORD-8888"})
	require.NoError(t, err)
	assert.Empty(t, none)
	orders, _ := s.Size()
	assert.Equal(t, 20, orders)
}

func TestGetCustomerOrders(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	all, err := s.SearchOrders(ctx, model.OrderFilter{})
	require.NoError(t, err)
	customer := all[0].CustomerID

	orders, err := s.GetCustomerOrders(ctx, customer, model.OrderFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, orders)
	for i, o := range orders {
		assert.Equal(t, customer, o.CustomerID)
		if i > 0 {
			assert.False(t, o.CreatedAt.After(orders[i-1].CreatedAt))
		}
	}

	filtered, err := s.GetCustomerOrders(ctx, customer, model.OrderFilter{Status: orders[0].Status})
	require.NoError(t, err)
	for _, o := range filtered {
		assert.Equal(t, orders[0].Status, o.Status)
	}

	future, err := s.GetCustomerOrders(ctx, customer, model.OrderFilter{CreatedFrom: fixedNow.Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)
}

func TestReturnPolicyAndShippingOptions(t *testing.T) {
	s := newTestStrategy(t)
	ctx := context.Background()

	policy, err := s.GetReturnPolicy(ctx)
	require.NoError(t, err)
	assert.Contains(t, policy, "Return Policy")
	assert.Contains(t, policy, "30-day return policy")

	opts, err := s.GetShippingOptions(ctx, "ORD-1000")
	require.NoError(t, err)
	require.Len(t, opts, 3)
	ids := []string{opts[0].OptionID, opts[1].OptionID, opts[2].OptionID}
	assert.ElementsMatch(t, []string{"standard", "express", "overnight"}, ids)
	assert.Equal(t, "9.99", opts[0].Cost.StringFixed(2))
}
