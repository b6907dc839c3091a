package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/app"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/audit"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/config"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/gateway"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/handler"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/notify"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/service"
	"github.com/Shimlamarket/shop-smart-merchant-hub/internal/store"
	"github.com/Shimlamarket/shop-smart-merchant-hub/pkg/cache"

	"github.com/joho/godotenv"
)

// @title           Merchant Hub API
// @version         1.0
// @description     HTTP API дашборда мерчанта
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	handler.RegisterMetrics()

	session := gateway.NewSession(conf.Gateway.Token)
	gw := gateway.NewClient(logger, conf.Gateway.BaseURL, conf.Gateway.Timeout, session)

	feed := notify.NewFeed(100)
	hub := handler.NewHub(logger)
	feed.SetBroadcaster(hub)

	orderStore := store.New(conf.Orders.AcceptWindow)

	closers := []io.Closer{hub}
	var auditPub service.AuditPublisher
	if len(conf.Kafka.Brokers) > 0 {
		kafkaPub := audit.NewKafkaPublisher(logger, conf.Kafka)
		auditPub = kafkaPub
		closers = append(closers, kafkaPub)
		logger.Info("audit publisher enabled", slog.String("topic", conf.Kafka.Topic))
	}

	orderService := service.NewOrderService(logger, orderStore, gw, auditPub, feed, conf.Orders.DeliveryWindow)
	countdown := service.NewCountdownEngine(logger, orderStore, orderService, conf.Orders.TickInterval)
	countdown.SetTickListener(hub.BroadcastOrders)
	poller := service.NewPoller(logger, orderService, feed, conf.Gateway.PollInterval)

	productCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)
	catalogService := service.NewCatalogService(logger, gw, productCache)
	offerService := service.NewOfferService(logger, gw)
	merchantService := service.NewMerchantService(logger, gw)

	httpHandler := handler.NewHTTPHandler(logger, orderService, catalogService, offerService, merchantService, feed)

	app := app.New(logger, conf)

	app.SetHTTPHandlers(httpHandler, hub)
	app.SetRunners(poller, countdown)
	app.SetClosers(closers...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	productCache.StartJanitor(ctx)

	app.Start(ctx)
	<-ctx.Done()
	app.Stop()
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
