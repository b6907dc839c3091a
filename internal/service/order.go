package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/audit"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/entities"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/notify"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/store"
)

type OrderGateway interface {
	FetchOrders(ctx context.Context, status entities.Status) ([]entities.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status entities.Status) (entities.Order, error)
}

type AuditPublisher interface {
	Publish(ctx context.Context, e audit.Event) error
}

type Notifier interface {
	Push(typ, orderID, message string) notify.Notification
}

// orderService — единственная точка смены статуса заказа. И действия
// мерчанта, и авто-decline обратного отсчёта проходят через UpdateStatus.
type orderService struct {
	logger         *slog.Logger
	store          *store.Store
	gateway        OrderGateway
	audit          AuditPublisher
	notifier       Notifier
	deliveryWindow time.Duration
	nowFunc        func() time.Time
}

func NewOrderService(
	logger *slog.Logger,
	st *store.Store,
	gateway OrderGateway,
	auditPub AuditPublisher,
	notifier Notifier,
	deliveryWindow time.Duration,
) *orderService {
	return &orderService{
		logger:         logger.With(slog.String("service", "order")),
		store:          st,
		gateway:        gateway,
		audit:          auditPub,
		notifier:       notifier,
		deliveryWindow: deliveryWindow,
		nowFunc:        time.Now,
	}
}

// Refresh перезагружает стор авторитетным списком заказов из шлюза.
func (s *orderService) Refresh(ctx context.Context) error {
	orders, err := s.gateway.FetchOrders(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to refresh orders: %w", err)
	}
	s.store.Load(orders)
	s.logger.DebugContext(ctx, "orders refreshed", slog.Int("count", len(orders)))
	return nil
}

func (s *orderService) ListOrders(f store.Filter) []entities.Order {
	return s.store.List(f)
}

func (s *orderService) GetOrder(orderID string) (entities.Order, error) {
	return s.store.Get(orderID)
}

// UpdateStatus валидирует переход по таблице состояний, подтверждает его
// в шлюзе и только после подтверждения мутирует локальный стор. Пока
// запрос в полёте, заказ помечен и не может быть авто-отклонён тикером.
func (s *orderService) UpdateStatus(ctx context.Context, orderID string, target entities.Status, trigger entities.Trigger) (entities.Order, error) {
	order, err := s.store.Get(orderID)
	if err != nil {
		return entities.Order{}, err
	}

	if !entities.ValidStatus(target) || !entities.CanTransition(order.Status, target) {
		return entities.Order{}, fmt.Errorf("%w: %s -> %s", entities.ErrInvalidTransition, order.Status, target)
	}

	if !s.store.BeginTransition(orderID) {
		return entities.Order{}, entities.ErrTransitionInFlight
	}
	defer s.store.EndTransition(orderID)

	if _, err := s.gateway.UpdateOrderStatus(ctx, orderID, target); err != nil {
		return entities.Order{}, err
	}

	now := s.nowFunc()
	patch := store.Patch{Status: &target}
	if order.Status == entities.StatusPending {
		patch.ClearTimer = true
		if target == entities.StatusAccepted {
			eta := now.Add(s.deliveryWindow)
			patch.EstimatedDelivery = &eta
		}
	}

	if err := s.store.Apply(orderID, patch); err != nil {
		return entities.Order{}, err
	}

	statusTransitions.WithLabelValues(string(order.Status), string(target), string(trigger)).Inc()
	if trigger == entities.TriggerTimeout {
		ordersAutoDeclined.Inc()
	}

	s.publishAudit(ctx, audit.Event{
		OrderID: orderID,
		From:    order.Status,
		To:      target,
		Trigger: trigger,
		At:      now,
	})
	s.notifyTransition(orderID, target, trigger)

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", orderID),
		slog.String("from", string(order.Status)),
		slog.String("to", string(target)),
		slog.String("trigger", string(trigger)),
	)

	return s.store.Get(orderID)
}

// Аудит не должен ронять сам переход: шлюз уже подтвердил смену статуса.
func (s *orderService) publishAudit(ctx context.Context, e audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Publish(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish audit event",
			slog.Any("error", err), slog.String("order_id", e.OrderID))
	}
}

func (s *orderService) notifyTransition(orderID string, target entities.Status, trigger entities.Trigger) {
	if s.notifier == nil {
		return
	}
	if trigger == entities.TriggerTimeout {
		s.notifier.Push(notify.TypeOrderExpired, orderID,
			fmt.Sprintf("Order %s expired and was automatically declined", orderID))
		return
	}
	s.notifier.Push(notify.TypeStatusChanged, orderID,
		fmt.Sprintf("Order %s moved to %s", orderID, target))
}
