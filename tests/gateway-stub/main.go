// Заглушка API витрины для локальной разработки. Раздаёт заказы со
// случайными дедлайнами оффера и подтверждает смены статуса, чтобы
// дашборд можно было гонять без настоящего шлюза.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

type item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type order struct {
	ID            string     `json:"id"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	Address       string     `json:"address"`
	Items         []item     `json:"items"`
	TotalAmount   float64    `json:"total_amount"`
	Status        string     `json:"status"`
	OrderTime     time.Time  `json:"order_time"`
	OfferExpiry   *time.Time `json:"offer_expiry,omitempty"`
}

type stub struct {
	mu     sync.Mutex
	orders map[string]*order
	seq    int
}

var names = []string{"Анна", "Борис", "Вера", "Григорий", "Дарья"}
var dishes = []string{"Пицца Маргарита", "Том Ям", "Цезарь", "Борщ", "Рамен"}

func (s *stub) seedOrder() *order {
	s.seq++
	id := fmt.Sprintf("ORD-%04d", s.seq)

	qty := rand.Intn(3) + 1
	price := float64(rand.Intn(800) + 200)
	expiry := time.Now().Add(time.Duration(rand.Intn(110)+10) * time.Second)

	o := &order{
		ID:            id,
		CustomerName:  names[rand.Intn(len(names))],
		CustomerPhone: fmt.Sprintf("+7900%07d", rand.Intn(9999999)),
		Address:       fmt.Sprintf("ул. Ленина, д. %d", rand.Intn(100)+1),
		Items: []item{{
			ProductID: fmt.Sprintf("p-%d", rand.Intn(100)),
			Name:      dishes[rand.Intn(len(dishes))],
			Quantity:  qty,
			UnitPrice: price,
		}},
		TotalAmount: float64(qty) * price,
		Status:      "pending",
		OrderTime:   time.Now(),
		OfferExpiry: &expiry,
	}
	s.orders[id] = o
	return o
}

func (s *stub) listOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := r.URL.Query().Get("status")
	res := make([]*order, 0, len(s.orders))
	for _, o := range s.orders {
		if status == "" || o.Status == status {
			res = append(res, o)
		}
	}
	writeJSON(w, res)
}

func (s *stub) updateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"message": "invalid body"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[r.PathValue("id")]
	if !ok {
		http.Error(w, `{"message": "order not found"}`, http.StatusNotFound)
		return
	}

	o.Status = body.Status
	if body.Status != "pending" {
		o.OfferExpiry = nil
	}
	log.Println("status updated", o.ID, "->", o.Status)
	writeJSON(w, o)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func main() {
	s := &stub{orders: make(map[string]*order)}
	for range 3 {
		s.seedOrder()
	}

	// Новый pending-заказ каждые 20 секунд, чтобы отсчёты не кончались.
	go func() {
		ticker := time.NewTicker(20 * time.Second)
		for range ticker.C {
			s.mu.Lock()
			o := s.seedOrder()
			s.mu.Unlock()
			log.Println("order seeded", o.ID)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders", s.listOrders)
	mux.HandleFunc("PUT /orders/{id}/status", s.updateStatus)
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"id": "p-1", "name": "Пицца Маргарита", "pricing": map[string]any{"sale_price": 450, "currency": "RUB"}, "in_stock": true, "quantity": 12},
			{"id": "p-2", "name": "Том Ям", "price": 520, "in_stock": true, "quantity": 5},
		})
	})
	mux.HandleFunc("GET /offers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"id": "o-1", "title": "Счастливые часы", "discount_percent": 15, "valid_from": "2025-01-01T00:00:00Z", "valid_until": "2026-01-01T00:00:00Z", "active": true},
			{"id": "o-2", "title": "Фикс на первый заказ", "schema_version": 2, "discount": map[string]any{"type": "flat", "value": 200}, "valid_from": "2025-01-01T00:00:00Z", "valid_until": "2026-01-01T00:00:00Z", "active": true},
		})
	})
	mux.HandleFunc("GET /merchant/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"id": "m-1", "name": "Тестовая витрина", "phone": "+79000000000", "accepting_orders": true,
		})
	})

	log.Println("gateway stub listening on :9090")
	log.Fatal(http.ListenAndServe(":9090", mux))
}
