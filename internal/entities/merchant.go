package entities

import "time"

type Merchant struct {
	ID          string
	Name        string
	Description string
	Phone       string
	Email       string
	Address     string

	OpeningTime     string
	ClosingTime     string
	AcceptingOrders bool

	UpdatedAt time.Time
}
