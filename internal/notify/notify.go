package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// TypeOrderExpired — автоматический decline по таймауту. Отличается
	// от merchant-отклонения, чтобы оператор видел разницу.
	TypeOrderExpired  = "order_expired"
	TypeStatusChanged = "status_changed"
	TypeSyncFailed    = "sync_failed"
)

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Broadcaster доставляет уведомление подключённым клиентам дашборда.
type Broadcaster interface {
	BroadcastNotification(n Notification)
}

// Feed — ограниченная лента уведомлений в памяти. Новые вытесняют
// старые, чтение отдаёт их от новых к старым.
type Feed struct {
	mu          sync.RWMutex
	items       []Notification
	capacity    int
	broadcaster Broadcaster
	nowFunc     func() time.Time
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 100
	}
	return &Feed{
		capacity: capacity,
		nowFunc:  time.Now,
	}
}

func (f *Feed) SetBroadcaster(b Broadcaster) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcaster = b
}

func (f *Feed) Push(typ, orderID, message string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		OrderID:   orderID,
		Message:   message,
		CreatedAt: f.nowFunc(),
	}

	f.mu.Lock()
	f.items = append(f.items, n)
	if len(f.items) > f.capacity {
		f.items = f.items[len(f.items)-f.capacity:]
	}
	b := f.broadcaster
	f.mu.Unlock()

	if b != nil {
		b.BroadcastNotification(n)
	}
	return n
}

func (f *Feed) List() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	res := make([]Notification, len(f.items))
	for i, n := range f.items {
		res[len(f.items)-1-i] = n
	}
	return res
}
