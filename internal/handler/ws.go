package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/notify"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Hub раздаёт подключённым клиентам дашборда коллекцию заказов раз в тик
// (для перерисовки отсчётов) и уведомления по мере появления.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With(slog.String("handler", "ws")),
		upgrader: websocket.Upgrader{
			// Cross-origin решается на уровне CORS-конфига приложения.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Init(r chi.Router) {
	r.Get("/ws/orders", h.serveWS)
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	wsClients.Set(float64(n))

	h.logger.Debug("dashboard client connected", slog.String("remote", conn.RemoteAddr().String()))

	// Читаем только чтобы вовремя узнать о закрытии.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	conn.Close()

	h.mu.Lock()
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	wsClients.Set(float64(n))
}

type ordersMessage struct {
	Type   string  `json:"type"`
	Orders []Order `json:"orders"`
}

type notificationMessage struct {
	Type         string              `json:"type"`
	Notification notify.Notification `json:"notification"`
}

// BroadcastOrders вызывается движком отсчёта после каждого тика.
func (h *Hub) BroadcastOrders(orders []entities.Order) {
	h.broadcast(ordersMessage{Type: "orders", Orders: OrdersEntityToJSON(orders)})
}

func (h *Hub) BroadcastNotification(n notify.Notification) {
	h.broadcast(notificationMessage{Type: "notification", Notification: n})
}

func (h *Hub) broadcast(payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
	wsClients.Set(float64(len(h.clients)))
}

// Close закрывает все клиентские соединения при остановке приложения.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	wsClients.Set(0)
	return nil
}
