package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/nikolayk812/ecomall/internal/api"
	"github.com/nikolayk812/ecomall/internal/config"
	"github.com/nikolayk812/ecomall/internal/events"
	"github.com/nikolayk812/ecomall/internal/port"
	"github.com/nikolayk812/ecomall/internal/repository"
	"github.com/nikolayk812/ecomall/internal/service"
	"github.com/nikolayk812/ecomall/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	lg, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("build logger failed: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	if err := cfg.Admin.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DB.DSN(), cfg.DB.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		return err
	}

	productRepo, err := repository.NewProduct(pool)
	if err != nil {
		return err
	}

	orderRepo, err := repository.NewOrder(pool)
	if err != nil {
		return err
	}

	var publisher port.OrderEventPublisher
	if cfg.Kafka.Enabled() {
		p, err := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic, lg.Named("events"))
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	} else {
		lg.Info("KAFKA_BOOTSTRAP_SERVERS is empty, order events disabled")
	}

	cur, err := cfg.Checkout.CurrencyUnit()
	if err != nil {
		return err
	}

	catalog, err := service.NewCatalogService(productRepo, cur, lg.Named("catalog"))
	if err != nil {
		return err
	}

	orders, err := service.NewOrderService(orderRepo, publisher, cfg.Checkout.Rules(), lg.Named("orders"))
	if err != nil {
		return err
	}

	engine := api.NewEngine(lg.Named("http"))
	api.RegisterRoutes(engine, api.NewProductHandler(catalog), api.NewOrderHandler(orders, cur), cfg.Admin.Token)

	return api.NewServer(cfg.Server.Address(), engine, lg).Run(ctx)
}
