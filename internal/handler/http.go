package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/gateway"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/notify"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/store"
	"github.com/Shimlamarket/shop-smart-merchant-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderService interface {
	ListOrders(f store.Filter) []entities.Order
	GetOrder(orderID string) (entities.Order, error)
	UpdateStatus(ctx context.Context, orderID string, target entities.Status, trigger entities.Trigger) (entities.Order, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context) ([]entities.Product, error)
	CreateProduct(ctx context.Context, p entities.Product) (entities.Product, error)
	UpdateProduct(ctx context.Context, p entities.Product) (entities.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

type OfferService interface {
	ListOffers(ctx context.Context) ([]entities.Offer, error)
	CreateOffer(ctx context.Context, o entities.Offer) (entities.Offer, error)
	UpdateOffer(ctx context.Context, o entities.Offer) (entities.Offer, error)
	DeleteOffer(ctx context.Context, offerID string) error
}

type MerchantService interface {
	GetProfile(ctx context.Context) (entities.Merchant, error)
	UpdateProfile(ctx context.Context, m entities.Merchant) (entities.Merchant, error)
}

type NotificationLister interface {
	List() []notify.Notification
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate

	orders        OrderService
	catalog       CatalogService
	offers        OfferService
	merchant      MerchantService
	notifications NotificationLister
}

func NewHTTPHandler(
	logger *slog.Logger,
	orders OrderService,
	catalog CatalogService,
	offers OfferService,
	merchant MerchantService,
	notifications NotificationLister,
) *HTTPHandler {
	return &HTTPHandler{
		logger:        logger.With(slog.String("handler", "http")),
		validate:      validator.New(),
		orders:        orders,
		catalog:       catalog,
		offers:        offers,
		merchant:      merchant,
		notifications: notifications,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{order_id}", h.GetOrder)
		r.Put("/{order_id}/status", h.UpdateOrderStatus)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Put("/{product_id}", h.UpdateProduct)
		r.Delete("/{product_id}", h.DeleteProduct)
	})

	r.Route("/offers", func(r chi.Router) {
		r.Get("/", h.ListOffers)
		r.Post("/", h.CreateOffer)
		r.Put("/{offer_id}", h.UpdateOffer)
		r.Delete("/{offer_id}", h.DeleteOffer)
	})

	r.Get("/merchant/profile", h.GetProfile)
	r.Put("/merchant/profile", h.UpdateProfile)

	r.Get("/notifications", h.ListNotifications)
}

// ListOrders возвращает заказы мерчанта.
// @Summary      Список заказов
// @Description  Фильтр по статусу и поиск по имени, телефону и номеру заказа
// @Tags         orders
// @Param        status  query  string  false  "Статус заказа"
// @Param        search  query  string  false  "Поисковая строка"
// @Success      200  {array}  Order
// @Router       /orders [get]
func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	f := store.Filter{
		Status: entities.Status(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
	}

	if f.Status != "" && !entities.ValidStatus(f.Status) {
		utils.WriteError(w, "unknown status", http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, OrdersEntityToJSON(h.orders.ListOrders(f)), http.StatusOK)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	order, err := h.orders.GetOrder(orderID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// UpdateOrderStatus меняет статус заказа.
// @Summary      Смена статуса заказа
// @Description  Переход валидируется по таблице состояний, применяется после подтверждения шлюза
// @Tags         orders
// @Param        order_id  path  string               true  "Идентификатор заказа"
// @Param        body      body  UpdateStatusRequest  true  "Целевой статус"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      409  {object}  utils.ErrorResponse "Недопустимый переход"
// @Router       /orders/{order_id}/status [put]
func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	var req UpdateStatusRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.UpdateStatus(ctx, orderID, entities.Status(req.Status), entities.TriggerMerchant)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res := make([]Product, 0, len(products))
	for _, p := range products {
		res = append(res, ProductEntityToJSON(p))
	}
	utils.WriteJSON(w, res, http.StatusOK)
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req Product
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	created, err := h.catalog.CreateProduct(r.Context(), ProductJSONToEntity(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, ProductEntityToJSON(created), http.StatusCreated)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req Product
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}
	req.ID = chi.URLParam(r, "product_id")

	updated, err := h.catalog.UpdateProduct(r.Context(), ProductJSONToEntity(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, ProductEntityToJSON(updated), http.StatusOK)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "product_id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.ListOffers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res := make([]Offer, 0, len(offers))
	for _, o := range offers {
		res = append(res, OfferEntityToJSON(o))
	}
	utils.WriteJSON(w, res, http.StatusOK)
}

func (h *HTTPHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req Offer
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	created, err := h.offers.CreateOffer(r.Context(), OfferJSONToEntity(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, OfferEntityToJSON(created), http.StatusCreated)
}

func (h *HTTPHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	var req Offer
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}
	req.ID = chi.URLParam(r, "offer_id")

	updated, err := h.offers.UpdateOffer(r.Context(), OfferJSONToEntity(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, OfferEntityToJSON(updated), http.StatusOK)
}

func (h *HTTPHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.offers.DeleteOffer(r.Context(), chi.URLParam(r, "offer_id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.merchant.GetProfile(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, MerchantEntityToJSON(profile), http.StatusOK)
}

func (h *HTTPHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req Merchant
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	updated, err := h.merchant.UpdateProfile(r.Context(), MerchantJSONToEntity(req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, MerchantEntityToJSON(updated), http.StatusOK)
}

func (h *HTTPHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.notifications.List(), http.StatusOK)
}

// writeServiceError переводит ошибки доменного слоя и шлюза в HTTP-коды.
func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var gwErr *gateway.Error

	switch {
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrInvalidTransition):
		utils.WriteError(w, "invalid status transition", http.StatusConflict)
	case errors.Is(err, entities.ErrTransitionInFlight):
		utils.WriteError(w, "status change already in progress", http.StatusConflict)
	case errors.Is(err, entities.ErrOfferWindow):
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, gateway.ErrUnauthorized):
		utils.WriteError(w, "authentication expired", http.StatusUnauthorized)
	case errors.As(err, &gwErr):
		utils.WriteError(w, gwErr.Message, http.StatusBadGateway)
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.Any("error", err), slog.String("path", r.URL.Path))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
