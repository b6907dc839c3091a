package gateway

import (
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
)

type itemDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type orderDTO struct {
	ID            string     `json:"id"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	Address       string     `json:"address"`
	Items         []itemDTO  `json:"items"`
	TotalAmount   float64    `json:"total_amount"`
	Status        string     `json:"status"`
	OrderTime     time.Time  `json:"order_time"`
	EstimatedETA  *time.Time `json:"estimated_delivery,omitempty"`
	OfferExpiry   *time.Time `json:"offer_expiry,omitempty"`
}

func (d orderDTO) toEntity() entities.Order {
	items := make([]entities.Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, entities.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return entities.Order{
		ID:                d.ID,
		CustomerName:      d.CustomerName,
		CustomerPhone:     d.CustomerPhone,
		Address:           d.Address,
		Items:             items,
		TotalAmount:       d.TotalAmount,
		Status:            entities.Status(d.Status),
		OrderTime:         d.OrderTime,
		EstimatedDelivery: d.EstimatedETA,
		OfferExpiry:       d.OfferExpiry,
	}
}

type pricingDTO struct {
	SalePrice float64 `json:"sale_price"`
	Currency  string  `json:"currency"`
}

// productDTO терпит обе версии схемы: плоское поле price (v1) и объект
// pricing (v2). Нормализация происходит здесь и только здесь.
type productDTO struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	Price       *float64    `json:"price,omitempty"`
	Pricing     *pricingDTO `json:"pricing,omitempty"`
	InStock     bool        `json:"in_stock"`
	Quantity    int         `json:"quantity"`
	ImageURL    string      `json:"image_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (d productDTO) toEntity() entities.Product {
	p := entities.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		InStock:     d.InStock,
		Quantity:    d.Quantity,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	switch {
	case d.Pricing != nil:
		p.Price = d.Pricing.SalePrice
		p.Currency = d.Pricing.Currency
	case d.Price != nil:
		p.Price = *d.Price
	}
	return p
}

func productToDTO(p entities.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Pricing:     &pricingDTO{SalePrice: p.Price, Currency: p.Currency},
		InStock:     p.InStock,
		Quantity:    p.Quantity,
		ImageURL:    p.ImageURL,
	}
}

type discountDTO struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// offerDTO — версионированный конверт оффера. v1 несёт плоский
// discount_percent, v2 — типизированный объект discount. Дрейф формы
// дальше этой границы не распространяется.
type offerDTO struct {
	SchemaVersion int    `json:"schema_version,omitempty"`
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`

	DiscountPercent *float64     `json:"discount_percent,omitempty"`
	Discount        *discountDTO `json:"discount,omitempty"`

	MinOrderTotal float64   `json:"min_order_total,omitempty"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
	Active        bool      `json:"active"`
}

func (d offerDTO) toEntity() entities.Offer {
	o := entities.Offer{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		MinOrderTotal: d.MinOrderTotal,
		ValidFrom:     d.ValidFrom,
		ValidUntil:    d.ValidUntil,
		Active:        d.Active,
		SchemaVersion: d.SchemaVersion,
	}
	switch {
	case d.Discount != nil:
		o.Kind = entities.DiscountKind(d.Discount.Type)
		o.Value = d.Discount.Value
		if o.SchemaVersion == 0 {
			o.SchemaVersion = 2
		}
	case d.DiscountPercent != nil:
		o.Kind = entities.DiscountPercent
		o.Value = *d.DiscountPercent
		if o.SchemaVersion == 0 {
			o.SchemaVersion = 1
		}
	}
	return o
}

// Исходящие офферы всегда пишутся в актуальной (второй) версии схемы.
func offerToDTO(o entities.Offer) offerDTO {
	return offerDTO{
		SchemaVersion: 2,
		ID:            o.ID,
		Title:         o.Title,
		Description:   o.Description,
		Discount:      &discountDTO{Type: string(o.Kind), Value: o.Value},
		MinOrderTotal: o.MinOrderTotal,
		ValidFrom:     o.ValidFrom,
		ValidUntil:    o.ValidUntil,
		Active:        o.Active,
	}
}

type merchantDTO struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email,omitempty"`
	Address         string    `json:"address,omitempty"`
	OpeningTime     string    `json:"opening_time,omitempty"`
	ClosingTime     string    `json:"closing_time,omitempty"`
	AcceptingOrders bool      `json:"accepting_orders"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (d merchantDTO) toEntity() entities.Merchant {
	return entities.Merchant{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		Phone:           d.Phone,
		Email:           d.Email,
		Address:         d.Address,
		OpeningTime:     d.OpeningTime,
		ClosingTime:     d.ClosingTime,
		AcceptingOrders: d.AcceptingOrders,
		UpdatedAt:       d.UpdatedAt,
	}
}

func merchantToDTO(m entities.Merchant) merchantDTO {
	return merchantDTO{
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

type statusUpdateRequest struct {
	Status string `json:"status"`
}
