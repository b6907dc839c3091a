package entities

import (
	"bytes"
	"encoding/gob"
	"time"
)

type Product struct {
	ID          string
	Name        string
	Description string
	Category    string

	Price    float64
	Currency string
	InStock  bool
	Quantity int
	ImageURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductList поддерживает gob-кодирование, чтобы храниться в кеше.
type ProductList struct {
	Products []Product
}

func (l *ProductList) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *ProductList) Unmarshal(data []byte) error {
	return gob.NewDecoder(bytes.NewBuffer(data)).Decode(l)
}

func init() {
	gob.Register(ProductList{})
	gob.Register(Product{})
}
