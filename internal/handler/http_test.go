package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/gateway"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/handler"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/notify"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderService struct{ mock.Mock }

func (m *mockOrderService) ListOrders(f store.Filter) []entities.Order {
	args := m.Called(f)
	return args.Get(0).([]entities.Order)
}

func (m *mockOrderService) GetOrder(orderID string) (entities.Order, error) {
	args := m.Called(orderID)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID string, target entities.Status, trigger entities.Trigger) (entities.Order, error) {
	args := m.Called(ctx, orderID, target, trigger)
	return args.Get(0).(entities.Order), args.Error(1)
}

type mockCatalogService struct{ mock.Mock }

func (m *mockCatalogService) ListProducts(ctx context.Context) ([]entities.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.Product), args.Error(1)
}

func (m *mockCatalogService) CreateProduct(ctx context.Context, p entities.Product) (entities.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(entities.Product), args.Error(1)
}

func (m *mockCatalogService) UpdateProduct(ctx context.Context, p entities.Product) (entities.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(entities.Product), args.Error(1)
}

func (m *mockCatalogService) DeleteProduct(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

type mockOfferService struct{ mock.Mock }

func (m *mockOfferService) ListOffers(ctx context.Context) ([]entities.Offer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.Offer), args.Error(1)
}

func (m *mockOfferService) CreateOffer(ctx context.Context, o entities.Offer) (entities.Offer, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(entities.Offer), args.Error(1)
}

func (m *mockOfferService) UpdateOffer(ctx context.Context, o entities.Offer) (entities.Offer, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(entities.Offer), args.Error(1)
}

func (m *mockOfferService) DeleteOffer(ctx context.Context, offerID string) error {
	return m.Called(ctx, offerID).Error(0)
}

type mockMerchantService struct{ mock.Mock }

func (m *mockMerchantService) GetProfile(ctx context.Context) (entities.Merchant, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.Merchant), args.Error(1)
}

func (m *mockMerchantService) UpdateProfile(ctx context.Context, p entities.Merchant) (entities.Merchant, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(entities.Merchant), args.Error(1)
}

type stubNotifications struct{ items []notify.Notification }

func (s *stubNotifications) List() []notify.Notification { return s.items }

type fixture struct {
	router        *chi.Mux
	orders        *mockOrderService
	catalog       *mockCatalogService
	offers        *mockOfferService
	merchant      *mockMerchantService
	notifications *stubNotifications
}

func newFixture() *fixture {
	f := &fixture{
		router:        chi.NewRouter(),
		orders:        new(mockOrderService),
		catalog:       new(mockCatalogService),
		offers:        new(mockOfferService),
		merchant:      new(mockMerchantService),
		notifications: &stubNotifications{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewHTTPHandler(logger, f.orders, f.catalog, f.offers, f.merchant, f.notifications)
	h.Init(f.router)
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestListOrders(t *testing.T) {
	f := newFixture()

	expiry := time.Date(2025, 6, 1, 12, 2, 0, 0, time.UTC)
	f.orders.On("ListOrders", store.Filter{Status: entities.StatusPending}).Return([]entities.Order{
		{
			ID:            "ORD-1",
			CustomerName:  "Анна",
			Status:        entities.StatusPending,
			OfferExpiry:   &expiry,
			TimeRemaining: 95,
		},
	})

	rec := f.do(t, http.MethodGet, "/orders?status=pending", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var got []handler.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "ORD-1", got[0].ID)
	require.NotNil(t, got[0].TimeRemaining)
	assert.Equal(t, 95, *got[0].TimeRemaining)
	f.orders.AssertExpectations(t)
}

func TestListOrders_UnknownStatus(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/orders?status=bogus", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.orders.AssertNotCalled(t, "ListOrders", mock.Anything)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture()
	f.orders.On("GetOrder", "missing").Return(entities.Order{}, entities.ErrOrderNotFound)

	rec := f.do(t, http.MethodGet, "/orders/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture()

	eta := time.Date(2025, 6, 1, 13, 30, 0, 0, time.UTC)
	f.orders.On("UpdateStatus", mock.Anything, "ORD-1", entities.StatusAccepted, entities.TriggerMerchant).
		Return(entities.Order{ID: "ORD-1", Status: entities.StatusAccepted, EstimatedDelivery: &eta}, nil)

	rec := f.do(t, http.MethodPut, "/orders/ORD-1/status", `{"status":"accepted"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var got handler.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "accepted", got.Status)
	require.NotNil(t, got.EstimatedDelivery)
	assert.True(t, eta.Equal(*got.EstimatedDelivery))
	assert.Nil(t, got.TimeRemaining)
	f.orders.AssertExpectations(t)
}

func TestUpdateOrderStatus_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "invalid transition", err: entities.ErrInvalidTransition, code: http.StatusConflict},
		{name: "transition in flight", err: entities.ErrTransitionInFlight, code: http.StatusConflict},
		{name: "not found", err: entities.ErrOrderNotFound, code: http.StatusNotFound},
		{name: "auth expired", err: gateway.ErrUnauthorized, code: http.StatusUnauthorized},
		{name: "gateway rejected", err: &gateway.Error{StatusCode: 503, Message: "storefront down"}, code: http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.orders.On("UpdateStatus", mock.Anything, "ORD-1", entities.StatusDeclined, entities.TriggerMerchant).
				Return(entities.Order{}, tc.err)

			rec := f.do(t, http.MethodPut, "/orders/ORD-1/status", `{"status":"declined"}`)

			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestUpdateOrderStatus_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "not-json"},
		{name: "unknown status", body: `{"status":"misplaced"}`},
		{name: "empty status", body: `{}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()

			rec := f.do(t, http.MethodPut, "/orders/ORD-1/status", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateProduct(t *testing.T) {
	f := newFixture()

	f.catalog.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p entities.Product) bool {
		return p.Name == "Пицца Маргарита" && p.Price == 450
	})).Return(entities.Product{ID: "p-1", Name: "Пицца Маргарита", Price: 450}, nil)

	rec := f.do(t, http.MethodPost, "/products", `{"name":"Пицца Маргарита","price":450,"quantity":10,"in_stock":true}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got handler.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "p-1", got.ID)
	f.catalog.AssertExpectations(t)
}

func TestCreateProduct_MissingName(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/products", `{"price":450}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.catalog.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestCreateOffer_BadWindow(t *testing.T) {
	f := newFixture()

	f.offers.On("CreateOffer", mock.Anything, mock.Anything).
		Return(entities.Offer{}, entities.ErrOfferWindow)

	body := `{"title":"Скидка","kind":"percent","value":10,"valid_from":"2025-06-02T00:00:00Z","valid_until":"2025-06-01T00:00:00Z"}`
	rec := f.do(t, http.MethodPost, "/offers", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListNotifications(t *testing.T) {
	f := newFixture()
	f.notifications.items = []notify.Notification{
		{ID: "n-1", Type: notify.TypeOrderExpired, OrderID: "ORD-1", Message: "order offer expired"},
	}

	rec := f.do(t, http.MethodGet, "/notifications", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var got []notify.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, notify.TypeOrderExpired, got[0].Type)
}
