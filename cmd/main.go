package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/localmart/order-service/internal/app"
	"github.com/localmart/order-service/internal/clients"
	"github.com/localmart/order-service/internal/config"
	"github.com/localmart/order-service/internal/events"
	"github.com/localmart/order-service/internal/handler"
	"github.com/localmart/order-service/internal/postgres"
	"github.com/localmart/order-service/internal/repo"
	"github.com/localmart/order-service/internal/service"
	"github.com/localmart/order-service/pkg/cache"
	"github.com/localmart/order-service/pkg/trm"

	_ "github.com/localmart/order-service/docs"

	"github.com/joho/godotenv"
)

// @title           Order Fulfillment API
// @version         1.0
// @description     Оркестратор оформления и жизненного цикла заказов
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	orderRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)
	orderCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)

	httpClient := clients.NewHTTPClient(conf.Clients.ConnectTimeout)
	external := service.ExternalClients{
		Cart:     clients.NewCartClient(conf.Clients.CartURL, httpClient, conf.Clients.RequestTimeout),
		Products: clients.NewProductClient(conf.Clients.ProductURL, httpClient, conf.Clients.RequestTimeout),
		Profiles: clients.NewProfileClient(conf.Clients.ProfileURL, httpClient, conf.Clients.RequestTimeout),
		Delivery: clients.NewDeliveryClient(conf.Clients.DeliveryURL, httpClient, conf.Clients.RequestTimeout),
	}

	publisher := events.NewKafkaPublisher(conf.Kafka)

	orderService := service.NewOrderService(
		logger,
		txManager,
		orderRepo,
		orderCache,
		external,
		publisher,
		conf.Clients.StockUpdateWorkers,
	)

	httpHandler := handler.NewHTTPHandler(logger, orderService)

	application := app.New(logger, conf)
	application.SetHTTPHandlers(httpHandler)
	application.SetClosers(publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	orderCache.StartJanitor(ctx)
	application.Start(ctx)
	<-ctx.Done()
	application.Stop()
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
