package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/notify"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCountdownFixture(t *testing.T, orders ...entities.Order) (*CountdownEngine, *store.Store, *mockGateway, *stubNotifier) {
	t.Helper()

	st := store.New(2 * time.Minute)
	st.Load(orders)

	gw := new(mockGateway)
	notifier := &stubNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewOrderService(logger, st, gw, nil, notifier, 90*time.Minute)
	svc.nowFunc = func() time.Time { return testBase }

	engine := NewCountdownEngine(logger, st, svc, time.Second)
	return engine, st, gw, notifier
}

func TestCountdown_TickUpdatesRemaining(t *testing.T) {
	expiry := testBase.Add(120 * time.Second)
	engine, st, gw, _ := newCountdownFixture(t, entities.Order{
		ID:          "ORD-1",
		Status:      entities.StatusPending,
		OfferExpiry: &expiry,
	})

	// Отсчёт монотонный: на тике k секунд спустя остаётся 120-k.
	for _, k := range []int{1, 2, 30, 119} {
		engine.tick(context.Background(), testBase.Add(time.Duration(k)*time.Second))

		o, err := st.Get("ORD-1")
		require.NoError(t, err)
		assert.Equal(t, 120-k, o.TimeRemaining)
		assert.Equal(t, entities.StatusPending, o.Status)
	}

	gw.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCountdown_ExpiredOrderAutoDeclined(t *testing.T) {
	expiry := testBase.Add(5 * time.Second)
	engine, st, gw, notifier := newCountdownFixture(t, entities.Order{
		ID:          "ORD-1",
		Status:      entities.StatusPending,
		OfferExpiry: &expiry,
	})

	gw.On("UpdateOrderStatus", mock.Anything, "ORD-1", entities.StatusDeclined).
		Return(entities.Order{ID: "ORD-1", Status: entities.StatusDeclined}, nil).Once()

	engine.tick(context.Background(), testBase.Add(6*time.Second))

	o, err := st.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusDeclined, o.Status)
	assert.Nil(t, o.OfferExpiry)
	assert.Zero(t, o.TimeRemaining)

	expired := notifier.byType(notify.TypeOrderExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, "ORD-1", expired[0].OrderID)
	gw.AssertExpectations(t)
}

func TestCountdown_SkipsOrdersWithTransitionInFlight(t *testing.T) {
	expiry := testBase.Add(-time.Second)
	engine, st, gw, _ := newCountdownFixture(t, entities.Order{
		ID:          "ORD-1",
		Status:      entities.StatusPending,
		OfferExpiry: &expiry,
	})

	// Запрос мерчанта в полёте: тикер не вмешивается.
	require.True(t, st.BeginTransition("ORD-1"))
	engine.tick(context.Background(), testBase)

	o, err := st.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPending, o.Status)
	gw.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCountdown_GatewayFailureRetriedNextTick(t *testing.T) {
	expiry := testBase.Add(time.Second)
	engine, st, gw, _ := newCountdownFixture(t, entities.Order{
		ID:          "ORD-1",
		Status:      entities.StatusPending,
		OfferExpiry: &expiry,
	})

	gw.On("UpdateOrderStatus", mock.Anything, "ORD-1", entities.StatusDeclined).
		Return(entities.Order{}, &gatewayError{}).Once()
	gw.On("UpdateOrderStatus", mock.Anything, "ORD-1", entities.StatusDeclined).
		Return(entities.Order{ID: "ORD-1", Status: entities.StatusDeclined}, nil).Once()

	engine.tick(context.Background(), testBase.Add(2*time.Second))

	// Шлюз недоступен: заказ остаётся pending до следующего тика.
	o, err := st.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPending, o.Status)

	engine.tick(context.Background(), testBase.Add(3*time.Second))

	o, err = st.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusDeclined, o.Status)
	gw.AssertExpectations(t)
}

func TestCountdown_IgnoresNonPendingOrders(t *testing.T) {
	engine, st, gw, _ := newCountdownFixture(t,
		entities.Order{ID: "ORD-1", Status: entities.StatusAccepted},
		entities.Order{ID: "ORD-2", Status: entities.StatusDelivered},
	)

	engine.tick(context.Background(), testBase.Add(time.Hour))

	for _, id := range []string{"ORD-1", "ORD-2"} {
		o, err := st.Get(id)
		require.NoError(t, err)
		assert.Zero(t, o.TimeRemaining)
		assert.Nil(t, o.OfferExpiry)
	}
	gw.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCountdown_TickListener(t *testing.T) {
	expiry := testBase.Add(time.Minute)
	engine, _, _, _ := newCountdownFixture(t, entities.Order{
		ID:          "ORD-1",
		Status:      entities.StatusPending,
		OfferExpiry: &expiry,
	})

	var got []entities.Order
	engine.SetTickListener(func(orders []entities.Order) { got = orders })

	engine.tick(context.Background(), testBase.Add(10*time.Second))

	require.Len(t, got, 1)
	assert.Equal(t, 50, got[0].TimeRemaining)
}

// Сценарий из жизни: заказ с дедлайном через 5 секунд доживает до нуля,
// авто-отклоняется, после чего принять его уже нельзя.
func TestCountdown_ExpiryScenario(t *testing.T) {
	expiry := testBase.Add(5 * time.Second)
	engine, st, gw, notifier := newCountdownFixture(t, entities.Order{
		ID:          "ORD-1",
		Status:      entities.StatusPending,
		OfferExpiry: &expiry,
	})

	engine.tick(context.Background(), testBase.Add(time.Second))
	o, err := st.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, 4, o.TimeRemaining)

	gw.On("UpdateOrderStatus", mock.Anything, "ORD-1", entities.StatusDeclined).
		Return(entities.Order{ID: "ORD-1", Status: entities.StatusDeclined}, nil).Once()

	engine.tick(context.Background(), testBase.Add(5*time.Second))
	o, err = st.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusDeclined, o.Status)
	require.Len(t, notifier.byType(notify.TypeOrderExpired), 1)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewOrderService(logger, st, gw, nil, notifier, 90*time.Minute)
	_, err = svc.UpdateStatus(context.Background(), "ORD-1", entities.StatusAccepted, entities.TriggerMerchant)
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)
}
