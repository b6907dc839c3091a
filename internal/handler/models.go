package handler

import (
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
)

// Order представляет заказ в ответах API
type Order struct {
	ID                string     `json:"id"`
	CustomerName      string     `json:"customer_name"`
	CustomerPhone     string     `json:"customer_phone"`
	Address           string     `json:"address"`
	Items             []Item     `json:"items"`
	TotalAmount       float64    `json:"total_amount"`
	Status            string     `json:"status"`
	OrderTime         time.Time  `json:"order_time"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	OfferExpiry       *time.Time `json:"offer_expiry,omitempty"`
	TimeRemaining     *int       `json:"time_remaining,omitempty"`
}

// Item товар в заказе
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted declined in-delivery delivered"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price" validate:"gte=0"`
	Currency    string    `json:"currency,omitempty"`
	InStock     bool      `json:"in_stock"`
	Quantity    int       `json:"quantity" validate:"gte=0"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

type Offer struct {
	ID            string    `json:"id"`
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description,omitempty"`
	Kind          string    `json:"kind" validate:"required,oneof=percent flat"`
	Value         float64   `json:"value" validate:"gte=0"`
	MinOrderTotal float64   `json:"min_order_total" validate:"gte=0"`
	ValidFrom     time.Time `json:"valid_from" validate:"required"`
	ValidUntil    time.Time `json:"valid_until" validate:"required"`
	Active        bool      `json:"active"`
	SchemaVersion int       `json:"schema_version,omitempty"`
}

type Merchant struct {
	ID              string    `json:"id"`
	Name            string    `json:"name" validate:"required"`
	Description     string    `json:"description,omitempty"`
	Phone           string    `json:"phone" validate:"required"`
	Email           string    `json:"email,omitempty" validate:"omitempty,email"`
	Address         string    `json:"address,omitempty"`
	OpeningTime     string    `json:"opening_time,omitempty"`
	ClosingTime     string    `json:"closing_time,omitempty"`
	AcceptingOrders bool      `json:"accepting_orders"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]Item, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	res := Order{
		ID:                o.ID,
		CustomerName:      o.CustomerName,
		CustomerPhone:     o.CustomerPhone,
		Address:           o.Address,
		Items:             items,
		TotalAmount:       o.TotalAmount,
		Status:            string(o.Status),
		OrderTime:         o.OrderTime,
		EstimatedDelivery: o.EstimatedDelivery,
		OfferExpiry:       o.OfferExpiry,
	}

	// time_remaining отдаётся только пока заказ pending.
	if o.Pending() && o.OfferExpiry != nil {
		rem := o.TimeRemaining
		res.TimeRemaining = &rem
	}
	return res
}

func OrdersEntityToJSON(orders []entities.Order) []Order {
	res := make([]Order, 0, len(orders))
	for _, o := range orders {
		res = append(res, OrderEntityToJSON(o))
	}
	return res
}

func ProductEntityToJSON(p entities.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Currency:    p.Currency,
		InStock:     p.InStock,
		Quantity:    p.Quantity,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ProductJSONToEntity(p Product) entities.Product {
	return entities.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Currency:    p.Currency,
		InStock:     p.InStock,
		Quantity:    p.Quantity,
		ImageURL:    p.ImageURL,
	}
}

func OfferEntityToJSON(o entities.Offer) Offer {
	return Offer{
		ID:            o.ID,
		Title:         o.Title,
		Description:   o.Description,
		Kind:          string(o.Kind),
		Value:         o.Value,
		MinOrderTotal: o.MinOrderTotal,
		ValidFrom:     o.ValidFrom,
		ValidUntil:    o.ValidUntil,
		Active:        o.Active,
		SchemaVersion: o.SchemaVersion,
	}
}

func OfferJSONToEntity(o Offer) entities.Offer {
	return entities.Offer{
		ID:            o.ID,
		Title:         o.Title,
		Description:   o.Description,
		Kind:          entities.DiscountKind(o.Kind),
		Value:         o.Value,
		MinOrderTotal: o.MinOrderTotal,
		ValidFrom:     o.ValidFrom,
		ValidUntil:    o.ValidUntil,
		Active:        o.Active,
	}
}

func MerchantEntityToJSON(m entities.Merchant) Merchant {
	return Merchant{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Phone:           m.Phone,
		Email:           m.Email,
		Address:         m.Address,
		OpeningTime:     m.OpeningTime,
		ClosingTime:     m.ClosingTime,
		AcceptingOrders: m.AcceptingOrders,
		UpdatedAt:       m.UpdatedAt,
	}
}

func MerchantJSONToEntity(m Merchant) entities.Merchant {
	return entities.Merchant{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Phone:           m.Phone,
		Email:           m.Email,
		Address:         m.Address,
		OpeningTime:     m.OpeningTime,
		ClosingTime:     m.ClosingTime,
		AcceptingOrders: m.AcceptingOrders,
	}
}
