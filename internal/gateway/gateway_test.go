package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *Session) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	session := NewSession("test-token")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(logger, srv.URL, 5*time.Second, session), session
}

func TestClient_FetchOrders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{
			"id": "ORD-1",
			"customer_name": "Анна",
			"customer_phone": "+79001234567",
			"status": "pending",
			"total_amount": 850,
			"order_time": "2025-06-01T12:00:00Z",
			"offer_expiry": "2025-06-01T12:02:00Z",
			"items": [{"product_id": "p-1", "name": "Пицца", "quantity": 2, "unit_price": 425}]
		}]`)
	})

	orders, err := client.FetchOrders(context.Background(), entities.StatusPending)

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-1", orders[0].ID)
	assert.Equal(t, entities.StatusPending, orders[0].Status)
	require.NotNil(t, orders[0].OfferExpiry)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 2, 0, 0, time.UTC), orders[0].OfferExpiry.UTC())
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
}

func TestClient_UpdateOrderStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/orders/ORD-1/status", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "accepted", body["status"])

		io.WriteString(w, `{"id": "ORD-1", "status": "accepted"}`)
	})

	order, err := client.UpdateOrderStatus(context.Background(), "ORD-1", entities.StatusAccepted)

	require.NoError(t, err)
	assert.Equal(t, entities.StatusAccepted, order.Status)
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	client, session := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchOrders(context.Background(), "")

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, session.Get())
}

func TestClient_GatewayError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"message": "storefront maintenance"}`)
	})

	_, err := client.UpdateOrderStatus(context.Background(), "ORD-1", entities.StatusDeclined)

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusServiceUnavailable, gwErr.StatusCode)
	assert.Equal(t, "storefront maintenance", gwErr.Message)
}

func TestClient_GatewayErrorPlainBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "bad request\n")
	})

	_, err := client.FetchOrders(context.Background(), "")

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "bad request", gwErr.Message)
}

func TestProductDTO_SchemaVariants(t *testing.T) {
	legacyPrice := 450.0

	tests := []struct {
		name         string
		dto          productDTO
		wantPrice    float64
		wantCurrency string
	}{
		{
			name:         "v2 pricing object",
			dto:          productDTO{ID: "p-1", Pricing: &pricingDTO{SalePrice: 500, Currency: "RUB"}},
			wantPrice:    500,
			wantCurrency: "RUB",
		},
		{
			name:      "v1 flat price",
			dto:       productDTO{ID: "p-2", Price: &legacyPrice},
			wantPrice: 450,
		},
		{
			name: "no pricing at all",
			dto:  productDTO{ID: "p-3"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.dto.toEntity()
			assert.Equal(t, tc.wantPrice, p.Price)
			assert.Equal(t, tc.wantCurrency, p.Currency)
		})
	}
}

func TestOfferDTO_SchemaVariants(t *testing.T) {
	percent := 15.0

	tests := []struct {
		name        string
		dto         offerDTO
		wantKind    entities.DiscountKind
		wantValue   float64
		wantVersion int
	}{
		{
			name:        "v1 flat discount_percent",
			dto:         offerDTO{ID: "o-1", DiscountPercent: &percent},
			wantKind:    entities.DiscountPercent,
			wantValue:   15,
			wantVersion: 1,
		},
		{
			name:        "v2 discount object",
			dto:         offerDTO{ID: "o-2", Discount: &discountDTO{Type: "flat", Value: 200}},
			wantKind:    entities.DiscountFlat,
			wantValue:   200,
			wantVersion: 2,
		},
		{
			name:        "explicit schema_version wins",
			dto:         offerDTO{ID: "o-3", SchemaVersion: 3, Discount: &discountDTO{Type: "percent", Value: 5}},
			wantKind:    entities.DiscountPercent,
			wantValue:   5,
			wantVersion: 3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := tc.dto.toEntity()
			assert.Equal(t, tc.wantKind, o.Kind)
			assert.Equal(t, tc.wantValue, o.Value)
			assert.Equal(t, tc.wantVersion, o.SchemaVersion)
		})
	}
}

func TestOfferToDTO_WritesCurrentSchema(t *testing.T) {
	dto := offerToDTO(entities.Offer{
		ID:    "o-1",
		Kind:  entities.DiscountPercent,
		Value: 10,
	})

	assert.Equal(t, 2, dto.SchemaVersion)
	require.NotNil(t, dto.Discount)
	assert.Equal(t, "percent", dto.Discount.Type)
	assert.Nil(t, dto.DiscountPercent)
}

func TestSession(t *testing.T) {
	s := NewSession("")
	assert.Empty(t, s.Get())

	s.Set("token")
	assert.Equal(t, "token", s.Get())

	s.Clear()
	assert.Empty(t, s.Get())
}
