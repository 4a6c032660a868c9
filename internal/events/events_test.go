package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/revaspay/paygate/internal/services/payment/paygate"
)

// MockRedis is a mock implementation of the redis publish call
type MockRedis struct {
	mock.Mock
}

func (m *MockRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	args := m.Called(ctx, channel, message)
	return redis.NewIntResult(int64(args.Int(0)), args.Error(1))
}

func samplePayment() paygate.PaymentReceived {
	ref := "FLOOZ123456"
	return paygate.PaymentReceived{
		TxReference:      "TXN123456",
		Identifier:       "ORDER123",
		PaymentReference: &ref,
		Amount:           1000,
		Datetime:         "2024-01-01 12:00:00",
		PaymentMethod:    "FLOOZ",
		PhoneNumber:      "+22890123456",
	}
}

func TestDispatcherFansOut(t *testing.T) {
	d := NewDispatcher(nil)

	var order []string
	d.Subscribe("first", SinkFunc(func(ctx context.Context, p paygate.PaymentReceived) error {
		order = append(order, "first:"+p.TxReference)
		return nil
	}))
	d.Subscribe("second", SinkFunc(func(ctx context.Context, p paygate.PaymentReceived) error {
		order = append(order, "second:"+p.TxReference)
		return nil
	}))

	require.NoError(t, d.Publish(context.Background(), samplePayment()))
	assert.Equal(t, []string{"first:TXN123456", "second:TXN123456"}, order)
}

func TestDispatcherRunsAllSubscribersOnFailure(t *testing.T) {
	d := NewDispatcher(nil)
	boom := errors.New("boom")

	called := false
	d.Subscribe("broken", SinkFunc(func(context.Context, paygate.PaymentReceived) error { return boom }))
	d.Subscribe("healthy", SinkFunc(func(context.Context, paygate.PaymentReceived) error {
		called = true
		return nil
	}))

	err := d.Publish(context.Background(), samplePayment())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.True(t, called)
}

func TestDispatcherStopsAfterRequiredFailure(t *testing.T) {
	d := NewDispatcher(nil)
	storeErr := errors.New("insert failed")

	published := false
	d.SubscribeRequired("transactions", SinkFunc(func(context.Context, paygate.PaymentReceived) error { return storeErr }))
	d.Subscribe("redis", SinkFunc(func(context.Context, paygate.PaymentReceived) error {
		published = true
		return nil
	}))

	err := d.Publish(context.Background(), samplePayment())
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "transactions")
	assert.False(t, published)
}

func TestDispatcherRequiredSubscriberSuccessContinues(t *testing.T) {
	d := NewDispatcher(nil)

	published := false
	d.SubscribeRequired("transactions", SinkFunc(func(context.Context, paygate.PaymentReceived) error { return nil }))
	d.Subscribe("redis", SinkFunc(func(context.Context, paygate.PaymentReceived) error {
		published = true
		return nil
	}))

	require.NoError(t, d.Publish(context.Background(), samplePayment()))
	assert.True(t, published)
}

func TestDispatcherWithoutSubscribers(t *testing.T) {
	assert.NoError(t, NewDispatcher(nil).Publish(context.Background(), samplePayment()))
}

func TestRedisPublisher(t *testing.T) {
	client := new(MockRedis)
	client.On("Publish", mock.Anything, "paygate:payments", mock.Anything).Return(1, nil).Once()

	publisher := NewRedisPublisher(client, "paygate:payments")
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	require.NoError(t, publisher.Publish(context.Background(), samplePayment()))
	client.AssertExpectations(t)

	raw, ok := client.Calls[0].Arguments.Get(2).([]byte)
	require.True(t, ok)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.NotEmpty(t, envelope.ID)
	assert.Equal(t, PaymentReceivedEvent, envelope.Type)
	assert.True(t, fixed.Equal(envelope.OccurredAt))
	assert.Equal(t, "TXN123456", envelope.Payment.TxReference)
	assert.Equal(t, 1000.0, envelope.Payment.Amount)
}

func TestRedisPublisherError(t *testing.T) {
	client := new(MockRedis)
	client.On("Publish", mock.Anything, "paygate:payments", mock.Anything).Return(0, errors.New("connection refused"))

	err := NewRedisPublisher(client, "paygate:payments").Publish(context.Background(), samplePayment())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paygate:payments")
}
