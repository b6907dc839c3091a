package entities

import (
	"errors"
	"time"
)

// DiscountKind — единая форма скидки. Разные версии схемы шлюза
// приводятся к ней один раз на границе (internal/gateway).
type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountFlat    DiscountKind = "flat"
)

type Offer struct {
	ID            string
	Title         string
	Description   string
	Kind          DiscountKind
	Value         float64
	MinOrderTotal float64
	ValidFrom     time.Time
	ValidUntil    time.Time
	Active        bool

	// Версия схемы, в которой оффер пришёл от шлюза.
	SchemaVersion int
}

var ErrOfferWindow = errors.New("offer valid_until must be after valid_from")

// Validate проверяет окно действия оффера до отправки в шлюз.
func (o Offer) Validate() error {
	if !o.ValidUntil.After(o.ValidFrom) {
		return ErrOfferWindow
	}
	return nil
}
