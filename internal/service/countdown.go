package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/store"
)

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID string, target entities.Status, trigger entities.Trigger) (entities.Order, error)
}

// CountdownEngine раз в секунду пересчитывает time_remaining у
// pending-заказов и авто-отклоняет просроченные через контроллер
// статусов. Заказы с запросом смены статуса в полёте пропускаются.
type CountdownEngine struct {
	logger   *slog.Logger
	store    *store.Store
	orders   StatusUpdater
	interval time.Duration
	onTick   func([]entities.Order)
	nowFunc  func() time.Time
}

func NewCountdownEngine(logger *slog.Logger, st *store.Store, orders StatusUpdater, interval time.Duration) *CountdownEngine {
	return &CountdownEngine{
		logger:   logger.With(slog.String("service", "countdown")),
		store:    st,
		orders:   orders,
		interval: interval,
		nowFunc:  time.Now,
	}
}

// SetTickListener регистрирует получателя коллекции заказов после
// каждого тика (websocket-хаб для перерисовки отсчётов).
func (e *CountdownEngine) SetTickListener(fn func([]entities.Order)) {
	e.onTick = fn
}

// Run крутит тикер до отмены ctx. Тикер — ресурс с областью видимости:
// вместе с контекстом приложения он и останавливается.
func (e *CountdownEngine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.tick(ctx, e.nowFunc())
		}
	}
}

func (e *CountdownEngine) tick(ctx context.Context, now time.Time) {
	for _, o := range e.store.Snapshot() {
		if !o.Pending() || o.OfferExpiry == nil {
			continue
		}
		if e.store.InFlight(o.ID) {
			continue
		}

		remaining := o.Remaining(now)
		if err := e.store.Apply(o.ID, store.Patch{TimeRemaining: &remaining}); err != nil {
			continue
		}
		if remaining > 0 {
			continue
		}

		if _, err := e.orders.UpdateStatus(ctx, o.ID, entities.StatusDeclined, entities.TriggerTimeout); err != nil {
			// Запрос мерчанта успел первым — уступаем без шума.
			if errors.Is(err, entities.ErrTransitionInFlight) || errors.Is(err, entities.ErrInvalidTransition) {
				continue
			}
			// Шлюз недоступен: локальный статус не трогаем, следующий
			// тик попробует снова.
			e.logger.ErrorContext(ctx, "failed to auto-decline expired order",
				slog.Any("error", err), slog.String("order_id", o.ID))
		}
	}

	if e.onTick != nil {
		e.onTick(e.store.Snapshot())
	}
}
