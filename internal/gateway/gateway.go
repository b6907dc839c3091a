package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
)

// ErrUnauthorized возвращается на 401 от шлюза. Сессия при этом уже
// сброшена, дальнейшие запросы бессмысленны до повторного входа.
var ErrUnauthorized = errors.New("gateway: unauthorized")

// Error — ошибка шлюза: не-2xx ответ с кодом и текстом из тела {message}.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %d %s", e.StatusCode, e.Message)
}

// Client — адаптер удалённого API витрины. Единственный источник
// персистентности: стор мутируется только после подтверждения отсюда.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	logger  *slog.Logger
}

func NewClient(logger *slog.Logger, baseURL string, timeout time.Duration, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: session,
		logger:  logger.With(slog.String("component", "gateway")),
	}
}

func (c *Client) FetchOrders(ctx context.Context, status entities.Status) ([]entities.Order, error) {
	path := "/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}

	var dtos []orderDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	orders := make([]entities.Order, 0, len(dtos))
	for _, d := range dtos {
		orders = append(orders, d.toEntity())
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status entities.Status) (entities.Order, error) {
	var dto orderDTO
	body := statusUpdateRequest{Status: string(status)}
	path := "/orders/" + url.PathEscape(orderID) + "/status"

	if err := c.do(ctx, http.MethodPut, path, body, &dto); err != nil {
		return entities.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}
	return dto.toEntity(), nil
}

func (c *Client) ListProducts(ctx context.Context) ([]entities.Product, error) {
	var dtos []productDTO
	if err := c.do(ctx, http.MethodGet, "/products", nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]entities.Product, 0, len(dtos))
	for _, d := range dtos {
		products = append(products, d.toEntity())
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, p entities.Product) (entities.Product, error) {
	var dto productDTO
	if err := c.do(ctx, http.MethodPost, "/products", productToDTO(p), &dto); err != nil {
		return entities.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	return dto.toEntity(), nil
}

func (c *Client) UpdateProduct(ctx context.Context, p entities.Product) (entities.Product, error) {
	var dto productDTO
	path := "/products/" + url.PathEscape(p.ID)
	if err := c.do(ctx, http.MethodPut, path, productToDTO(p), &dto); err != nil {
		return entities.Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	return dto.toEntity(), nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	path := "/products/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (c *Client) ListOffers(ctx context.Context) ([]entities.Offer, error) {
	var dtos []offerDTO
	if err := c.do(ctx, http.MethodGet, "/offers", nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}

	offers := make([]entities.Offer, 0, len(dtos))
	for _, d := range dtos {
		offers = append(offers, d.toEntity())
	}
	return offers, nil
}

func (c *Client) CreateOffer(ctx context.Context, o entities.Offer) (entities.Offer, error) {
	var dto offerDTO
	if err := c.do(ctx, http.MethodPost, "/offers", offerToDTO(o), &dto); err != nil {
		return entities.Offer{}, fmt.Errorf("failed to create offer: %w", err)
	}
	return dto.toEntity(), nil
}

func (c *Client) UpdateOffer(ctx context.Context, o entities.Offer) (entities.Offer, error) {
	var dto offerDTO
	path := "/offers/" + url.PathEscape(o.ID)
	if err := c.do(ctx, http.MethodPut, path, offerToDTO(o), &dto); err != nil {
		return entities.Offer{}, fmt.Errorf("failed to update offer: %w", err)
	}
	return dto.toEntity(), nil
}

func (c *Client) DeleteOffer(ctx context.Context, offerID string) error {
	path := "/offers/" + url.PathEscape(offerID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	return nil
}

func (c *Client) GetProfile(ctx context.Context) (entities.Merchant, error) {
	var dto merchantDTO
	if err := c.do(ctx, http.MethodGet, "/merchant/profile", nil, &dto); err != nil {
		return entities.Merchant{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return dto.toEntity(), nil
}

func (c *Client) UpdateProfile(ctx context.Context, m entities.Merchant) (entities.Merchant, error) {
	var dto merchantDTO
	if err := c.do(ctx, http.MethodPut, "/merchant/profile", merchantToDTO(m), &dto); err != nil {
		return entities.Merchant{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return dto.toEntity(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	requestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Clear()
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "gateway request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return &Error{StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readMessage достаёт текст ошибки из тела вида {"message": "..."}.
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		return strings.TrimSpace(string(data))
	}
	return body.Message
}
