package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"order-support-mcp/internal/model"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

const (
	DefaultPoolSize        = 20
	DefaultPoolSeed uint64 = 42
)

// Estados posibles de las órdenes del pool inicial.
var poolStatuses = []model.OrderStatus{
	model.StatusPending,
	model.StatusProcessing,
	model.StatusShipped,
	model.StatusDelivered,
	model.StatusCancelled,
}

// MockDataStrategy es la fuente de verdad en memoria: responde consultas,
// aplica mutaciones y fabrica órdenes para identificadores nunca vistos.
type MockDataStrategy struct {
	mu      sync.RWMutex
	orders  map[string]model.Order
	returns map[string]model.Return

	seedFunc SeedFunc
	nowFunc  func() time.Time
	poolSize int
	poolSeed uint64

	// returnFaker genera ids y montos de devoluciones; lo protege mu.
	returnFaker *gofakeit.Faker
}

type Option func(*MockDataStrategy)

func WithSeedFunc(fn SeedFunc) Option {
	return func(s *MockDataStrategy) { s.seedFunc = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *MockDataStrategy) { s.nowFunc = now }
}

func WithPool(size int, seed uint64) Option {
	return func(s *MockDataStrategy) {
		s.poolSize = size
		s.poolSeed = seed
	}
}

func NewMockDataStrategy(opts ...Option) *MockDataStrategy {
	s := &MockDataStrategy{
		orders:   make(map[string]model.Order),
		returns:  make(map[string]model.Return),
		seedFunc: DigitSeed,
		nowFunc:  time.Now,
		poolSize: DefaultPoolSize,
		poolSeed: DefaultPoolSeed,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.returnFaker = newFaker(s.poolSeed + 1)
	s.generatePool()
	return s
}

// generatePool crea ORD-1000..ORD-(1000+n-1) con estados al azar.
func (s *MockDataStrategy) generatePool() {
	f := newFaker(s.poolSeed)
	now := s.nowFunc()
	for i := 0; i < s.poolSize; i++ {
		id := fmt.Sprintf("ORD-%d", 1000+i)
		status := poolStatuses[f.IntRange(0, len(poolStatuses)-1)]
		o := buildOrder(f, id, status, now)
		// en el pool sólo shipped y delivered llevan seguimiento
		if status != model.StatusShipped && status != model.StatusDelivered {
			o.TrackingNumber = ""
		}
		s.orders[id] = o
	}
}

// Size devuelve la cantidad de órdenes y devoluciones en memoria.
func (s *MockDataStrategy) Size() (orders, returns int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders), len(s.returns)
}

func (s *MockDataStrategy) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	s.mu.RLock()
	o, ok := s.orders[orderID]
	s.mu.RUnlock()
	if ok {
		cp := o.Clone()
		return &cp, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.resolveLocked(orderID)
	if err != nil {
		return nil, err
	}
	cp := o.Clone()
	return &cp, nil
}

// resolveLocked busca o sintetiza la orden. Requiere mu tomado en escritura.
func (s *MockDataStrategy) resolveLocked(orderID string) (model.Order, error) {
	if o, ok := s.orders[orderID]; ok {
		return o, nil
	}
	p := ParseSuffix(orderID)
	if p.NotFound {
		return model.Order{}, ErrNotFound
	}
	o := buildOrder(newFaker(s.seedFunc(orderID)), orderID, p.Status, s.nowFunc())
	s.orders[orderID] = o
	return o, nil
}

func (s *MockDataStrategy) GetCustomerOrders(ctx context.Context, customerID string, f model.OrderFilter) ([]model.Order, error) {
	f.CustomerID = customerID
	out := s.filter(f)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MockDataStrategy) SearchOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, error) {
	out := s.filter(f)
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

// filter sólo recorre lo que ya está en memoria; nunca sintetiza.
func (s *MockDataStrategy) filter(f model.OrderFilter) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, 0)
	for _, o := range s.orders {
		if f.Match(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

// StatusCheck decide si la orden puede pasar de current al estado pedido.
// Corre con el lock tomado, sobre el estado vigente.
type StatusCheck func(current model.OrderStatus) error

// UpdateOrderStatus cambia el estado en un solo paso de lectura-escritura. Si el estado
// ya es el pedido no escribe nada; si check rechaza la transición devuelve su error.
func (s *MockDataStrategy) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, check StatusCheck) (bool, error) {
	if _, err := model.ParseOrderStatus(string(status)); err != nil {
		return false, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.resolveLocked(orderID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if o.Status == status {
		return true, nil
	}
	if check != nil {
		if err := check(o.Status); err != nil {
			return false, err
		}
	}

	o.Status = status
	o.UpdatedAt = s.nowFunc()
	if status.IsTrackable() && o.TrackingNumber == "" {
		o.TrackingNumber = newTrackingNumber(newFaker(s.seedFunc(orderID) ^ trackingSalt))
	}
	s.orders[orderID] = o
	return true, nil
}

func (s *MockDataStrategy) CancelOrder(ctx context.Context, orderID, reason string) (bool, error) {
	if ParseSuffix(orderID).ForceFailure {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.resolveLocked(orderID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if o.Status != model.StatusPending && o.Status != model.StatusProcessing {
		return false, nil
	}

	o = o.Clone()
	o.Status = model.StatusCancelled
	o.UpdatedAt = s.nowFunc()
	for i := range o.Entries {
		o.Entries[i].Status = model.EntryCancelled
	}
	s.orders[orderID] = o
	return true, nil
}

// InitiateReturn no valida elegibilidad: eso lo decide el servicio.
func (s *MockDataStrategy) InitiateReturn(ctx context.Context, orderID string, items []string, reason string) (*model.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	for {
		id = "RET-" + s.returnFaker.Numerify("####")
		if _, taken := s.returns[id]; !taken {
			break
		}
	}

	r := model.Return{
		ReturnID:     id,
		OrderID:      orderID,
		Status:       model.ReturnInitiated,
		Reason:       reason,
		Items:        append([]string(nil), items...),
		CreatedAt:    s.nowFunc(),
		RefundAmount: decimal.NewFromFloat(s.returnFaker.Float64Range(10, 500)).Round(2),
	}
	s.returns[id] = r

	cp := r
	cp.Items = append([]string(nil), r.Items...)
	return &cp, nil
}

func (s *MockDataStrategy) GetReturn(ctx context.Context, returnID string) (*model.Return, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.returns[returnID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := r
	cp.Items = append([]string(nil), r.Items...)
	return &cp, nil
}

const returnPolicyText = `**Return Policy**

We offer a 30-day return policy on all items. To be eligible for a return:
- Items must be unused and in original packaging
- Receipt or proof of purchase is required
- Some items may be subject to restocking fees

To initiate a return, contact our customer service team with your order number.`

func (s *MockDataStrategy) GetReturnPolicy(ctx context.Context) (string, error) {
	return returnPolicyText, nil
}

var shippingOptions = []model.ShippingOption{
	{OptionID: "standard", Name: "Standard Shipping", EstimatedDays: 5, Cost: decimal.RequireFromString("9.99")},
	{OptionID: "express", Name: "Express Shipping", EstimatedDays: 2, Cost: decimal.RequireFromString("19.99")},
	{OptionID: "overnight", Name: "Overnight Shipping", EstimatedDays: 1, Cost: decimal.RequireFromString("39.99")},
}

func (s *MockDataStrategy) GetShippingOptions(ctx context.Context, orderID string) ([]model.ShippingOption, error) {
	return append([]model.ShippingOption(nil), shippingOptions...), nil
}
