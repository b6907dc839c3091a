package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/gateway"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/notify"
	"github.com/Shimlamarket/shop-smart-merchant-hub/pkg/utils"
)

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Poller периодически подтягивает авторитетный список заказов из шлюза.
// Первая синхронизация выполняется сразу при старте.
type Poller struct {
	logger   *slog.Logger
	svc      Refresher
	notifier Notifier
	interval time.Duration
}

func NewPoller(logger *slog.Logger, svc Refresher, notifier Notifier, interval time.Duration) *Poller {
	return &Poller{
		logger:   logger.With(slog.String("service", "poller")),
		svc:      svc,
		notifier: notifier,
		interval: interval,
	}
}

func (p *Poller) Run(ctx context.Context) error {
	p.sync(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.sync(ctx)
		}
	}
}

func (p *Poller) sync(ctx context.Context) {
	cfg := utils.RetryConfig{
		InitialDelay: 200 * time.Millisecond,
		MaxAttempts:  3,
		Multiplier:   2,
	}

	err := utils.Retry(cfg, func() error {
		return p.svc.Refresh(ctx)
	}, gateway.ErrUnauthorized, context.Canceled)

	if err != nil {
		syncFailures.Inc()
		p.logger.ErrorContext(ctx, "failed to sync orders", slog.Any("error", err))
		if p.notifier != nil {
			p.notifier.Push(notify.TypeSyncFailed, "", "Failed to refresh orders from the storefront API")
		}
	}
}
