package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-support-mcp/internal/model"
	"order-support-mcp/internal/repository"
	"order-support-mcp/internal/service"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newConsumer(t *testing.T) (*StatusUpdateConsumer, *repository.MockDataStrategy) {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	data := repository.NewMockDataStrategy(repository.WithClock(clock))
	kb, err := service.NewKnowledgeBase(clock)
	require.NoError(t, err)
	svc := service.NewSupportService(data, kb, service.WithLogger(quietLogger()), service.WithClock(clock))
	return NewStatusUpdateConsumer(svc, quietLogger()), data
}

func TestStatusUpdateConsumer_Applies(t *testing.T) {
	c, data := newConsumer(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, []byte(`{"orderId":"ORD-7100-P","status":"shipped","reason":"warehouse"}`)))

	o, err := data.GetOrder(ctx, "ORD-7100-P")
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, o.Status)
	assert.NotEmpty(t, o.TrackingNumber)
}

func TestStatusUpdateConsumer_Rejects(t *testing.T) {
	c, _ := newConsumer(t)
	ctx := context.Background()

	err := c.Handle(ctx, []byte(`{not json`))
	assert.Error(t, err)

	err = c.Handle(ctx, []byte(`{"orderId":"ORD-7101"}`))
	assert.ErrorContains(t, err, "validate")

	err = c.Handle(ctx, []byte(`{"orderId":"ORD-7102-D","status":"shipped"}`))
	assert.ErrorIs(t, err, service.ErrFinalState)

	err = c.Handle(ctx, []byte(`{"orderId":"ORD-7103-E","status":"shipped"}`))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

type stubUpdater struct {
	gotReason string
}

func (s *stubUpdater) UpdateStatus(ctx context.Context, orderID, newStatus, reason string) (*model.Order, error) {
	s.gotReason = reason
	if orderID == "boom" {
		return nil, errors.New("boom")
	}
	return &model.Order{OrderID: orderID, Status: model.OrderStatus(newStatus)}, nil
}

func TestStatusUpdateConsumer_DefaultReason(t *testing.T) {
	stub := &stubUpdater{}
	c := NewStatusUpdateConsumer(stub, quietLogger())

	require.NoError(t, c.Handle(context.Background(), []byte(`{"orderId":"ORD-1","status":"processing"}`)))
	assert.Equal(t, "status feed", stub.gotReason)

	assert.EqualError(t, c.Handle(context.Background(), []byte(`{"orderId":"boom","status":"processing"}`)), "boom")
}

type captureChannel struct {
	exchange, key string
	msg           amqp091.Publishing
	err           error
}

func (c *captureChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func TestPublisher_Publish(t *testing.T) {
	ch := &captureChannel{}
	p := NewPublisher(ch)
	p.nowFunc = func() time.Time { return fixedNow }

	ev := service.OrderCancelledEvent{OrderID: "ORD-1", CustomerID: "c1", Reason: "changed mind"}
	require.NoError(t, p.Publish(context.Background(), service.RoutingOrderCancelled, ev))

	assert.Equal(t, EventsExchange, ch.exchange)
	assert.Equal(t, "order.cancelled", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, fixedNow, ch.msg.Timestamp)
	assert.NotEmpty(t, ch.msg.MessageId)

	var got service.OrderCancelledEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, ev.OrderID, got.OrderID)
	assert.Equal(t, ev.Reason, got.Reason)
}

func TestPublisher_Errors(t *testing.T) {
	ch := &captureChannel{err: amqp091.ErrClosed}
	p := NewPublisher(ch)
	assert.ErrorIs(t, p.Publish(context.Background(), "x", map[string]string{"a": "b"}), amqp091.ErrClosed)

	err := p.Publish(context.Background(), "x", make(chan int))
	assert.ErrorContains(t, err, "encode x event")
}
