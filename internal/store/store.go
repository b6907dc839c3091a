package store

import (
	"strings"
	"sync"
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
)

// Store — канонический in-memory набор заказов. Перезаполняется целиком
// из шлюза и точечно мутируется контроллером статусов и обратным отсчётом.
type Store struct {
	mu           sync.RWMutex
	byID         map[string]*entities.Order
	ids          []string
	inflight     map[string]struct{}
	acceptWindow time.Duration
	nowFunc      func() time.Time
}

func New(acceptWindow time.Duration) *Store {
	return &Store{
		byID:         make(map[string]*entities.Order),
		inflight:     make(map[string]struct{}),
		acceptWindow: acceptWindow,
		nowFunc:      time.Now,
	}
}

// Load заменяет всё содержимое. Для pending-заказов без offer_expiry
// дедлайн назначается здесь (now + acceptWindow); если заказ уже был в
// сторе с назначенным дедлайном, дедлайн сохраняется, чтобы повторная
// загрузка того же ответа шлюза не сдвигала таймеры.
func (s *Store) Load(orders []entities.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	prev := s.byID

	s.byID = make(map[string]*entities.Order, len(orders))
	s.ids = make([]string, 0, len(orders))

	for _, o := range orders {
		if o.Pending() {
			if o.OfferExpiry == nil {
				if old, ok := prev[o.ID]; ok && old.Pending() && old.OfferExpiry != nil {
					o.OfferExpiry = old.OfferExpiry
				} else {
					expiry := now.Add(s.acceptWindow)
					o.OfferExpiry = &expiry
				}
			}
			o.TimeRemaining = o.Remaining(now)
		} else {
			o.OfferExpiry = nil
			o.TimeRemaining = 0
		}

		if _, ok := s.byID[o.ID]; ok {
			continue
		}
		s.byID[o.ID] = &o
		s.ids = append(s.ids, o.ID)
	}
}

func (s *Store) Get(id string) (entities.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.byID[id]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return *o, nil
}

// Patch — частичное обновление заказа. Ненулевые поля сливаются в
// хранимый заказ, ClearTimer снимает offer_expiry и time_remaining.
type Patch struct {
	Status            *entities.Status
	TimeRemaining     *int
	EstimatedDelivery *time.Time
	ClearTimer        bool
}

func (s *Store) Apply(id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok {
		return entities.ErrOrderNotFound
	}

	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.TimeRemaining != nil {
		o.TimeRemaining = *p.TimeRemaining
	}
	if p.EstimatedDelivery != nil {
		t := *p.EstimatedDelivery
		o.EstimatedDelivery = &t
	}
	if p.ClearTimer {
		o.OfferExpiry = nil
		o.TimeRemaining = 0
	}
	return nil
}

type Filter struct {
	Status entities.Status
	Search string
}

// List — чистая проекция: фильтр по статусу и поиск по имени, телефону
// и подстроке идентификатора. Порядок — порядок вставки.
func (s *Store) List(f Filter) []entities.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	res := make([]entities.Order, 0, len(s.ids))

	for _, id := range s.ids {
		o := s.byID[id]
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if search != "" && !matches(o, search) {
			continue
		}
		res = append(res, *o)
	}
	return res
}

// Snapshot возвращает копию всех заказов в порядке вставки.
func (s *Store) Snapshot() []entities.Order {
	return s.List(Filter{})
}

func matches(o *entities.Order, search string) bool {
	return strings.Contains(strings.ToLower(o.CustomerName), search) ||
		strings.Contains(strings.ToLower(o.CustomerPhone), search) ||
		strings.Contains(strings.ToLower(o.ID), search)
}

// BeginTransition помечает заказ как имеющий незавершённый запрос смены
// статуса. Пока отметка стоит, обратный отсчёт не авто-отклоняет заказ.
// Возвращает false, если запрос по заказу уже в полёте.
func (s *Store) BeginTransition(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inflight[id]; ok {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *Store) EndTransition(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

func (s *Store) InFlight(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.inflight[id]
	return ok
}
