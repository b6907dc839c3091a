package entities

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusDeclined   Status = "declined"
	StatusInDelivery Status = "in-delivery"
	StatusDelivered  Status = "delivered"
)

// Trigger — источник смены статуса. Автоматический decline по таймауту и
// действие мерчанта различаются только им, это важно для аудита и уведомлений.
type Trigger string

const (
	TriggerMerchant Trigger = "merchant"
	TriggerTimeout  Trigger = "timeout"
)

type Item struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice float64
}

type Order struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	Address       string
	Items         []Item
	TotalAmount   float64

	Status    Status
	OrderTime time.Time

	// Выставляется один раз при переходе pending -> accepted.
	EstimatedDelivery *time.Time

	// Присутствуют только пока заказ в статусе pending.
	OfferExpiry   *time.Time
	TimeRemaining int
}

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTransitionInFlight: по заказу уже выполняется запрос смены
	// статуса, конкурирующий переход отклоняется не начавшись.
	ErrTransitionInFlight = errors.New("status change already in progress")
)

// allowedTransitions — допустимые переходы статусов.
// declined и delivered терминальны, из них переходов нет.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusDeclined},
	StatusAccepted:   {StatusInDelivery},
	StatusInDelivery: {StatusDelivered},
	StatusDeclined:   {},
	StatusDelivered:  {},
}

func ValidStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Remaining возвращает целые секунды до истечения оффера, не меньше нуля.
func (o *Order) Remaining(now time.Time) int {
	if o.OfferExpiry == nil {
		return 0
	}
	rem := o.OfferExpiry.Sub(now) / time.Second
	if rem < 0 {
		return 0
	}
	return int(rem)
}

func (o *Order) Pending() bool {
	return o.Status == StatusPending
}
