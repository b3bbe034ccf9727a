package main

import (
	"context"
	"errors"
	"go-restaurant-pos/src/config"
	"go-restaurant-pos/src/controllers"
	"go-restaurant-pos/src/controllers/middleware"
	"go-restaurant-pos/src/infrastructure/log"
	"go-restaurant-pos/src/infrastructure/mongo"
	"go-restaurant-pos/src/infrastructure/rabbitmq"
	"go-restaurant-pos/src/infrastructure/scheduler"
	"go-restaurant-pos/src/services/events"
	"go-restaurant-pos/src/services/menu"
	"go-restaurant-pos/src/services/notification"
	"go-restaurant-pos/src/services/order/domain"
	"go-restaurant-pos/src/services/order/domain/persistence"
	"go-restaurant-pos/src/services/stats"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go-restaurant-pos/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"golang.org/x/sync/errgroup"
)

type storage struct {
	orders  domain.OrderStore
	outbox  notification.EventOutbox
	catalog menu.Catalog
	checks  map[string]controllers.HealthCheck
}

// @title        Restaurant POS API
// @version      1.0
// @description  Order lifecycle and live order feed for cashier, kitchen and admin stations.
// @BasePath     /
func main() {
	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.NewLogger()

	configs, err := config.LoadConfig()
	if err != nil {
		logger.Fatal(ctx, "Failed to load configuration", err)
	}
	logger.Info(ctx, "Configuration loaded successfully")

	// Money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	store, err := openStorage(ctx, configs, logger)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize storage", err)
	}

	if configs.SeedMenu {
		if err := store.catalog.Seed(ctx, menu.DefaultItems()); err != nil {
			logger.Fatal(ctx, "Failed to seed menu", err)
		}
		logger.Info(ctx, "Menu seeded successfully")
	}

	hub := notification.NewHub(logger)

	// Broker relay is optional; without it events only reach live viewers
	var relay *notification.BrokerRelay
	var replayer controllers.Replayer
	if configs.RelayEnabled() {
		rabbitmqService, err := rabbitmq.NewRabbitMQService(configs.RabbitMQHostName, configs.RabbitMQExchange, events.Types)
		if err != nil {
			logger.Fatal(ctx, "Failed to create RabbitMQ service", err)
		}
		defer rabbitmqService.Close()

		if !rabbitmqService.IsHealthy() {
			logger.Fatal(ctx, "RabbitMQ connection is not healthy", nil)
		}
		logger.Info(ctx, "RabbitMQ connection successful")

		relay = notification.NewBrokerRelay(logger, rabbitmqService, store.outbox, configs.RelayBufferSize)
		if err := hub.Subscribe(relay); err != nil {
			logger.Fatal(ctx, "Failed to subscribe broker relay", err)
		}
		replayer = relay
		store.checks["rabbitmq"] = func(context.Context) error {
			if !rabbitmqService.IsHealthy() {
				return errors.New("message queue connection closed")
			}
			return nil
		}
	} else {
		logger.Warn(ctx, "RABBITMQ_HOSTNAME not set, broker relay disabled")
	}

	orderService := domain.NewOrderService(logger, store.orders, store.catalog, hub)
	aggregator := stats.NewAggregator(store.orders)

	jobs, err := scheduler.NewJobScheduler(logger)
	if err != nil {
		logger.Fatal(ctx, "Failed to create job scheduler", err)
	}
	if relay != nil {
		if err := jobs.AddJob("replay-failed-events", configs.ReplayInterval, relay.ReplayFailedEvents); err != nil {
			logger.Fatal(ctx, "Failed to register replay job", err)
		}
	}
	if err := jobs.AddJob("stats-snapshot", configs.StatsSnapshotInterval, func(ctx context.Context) error {
		return stats.LogSnapshot(ctx, aggregator, logger)
	}); err != nil {
		logger.Fatal(ctx, "Failed to register stats job", err)
	}
	jobs.Start()

	app := fiber.New(fiber.Config{
		ReadBufferSize:  81920,
		WriteBufferSize: 81920,
		ServerHeader:    "Restaurant-POS-Service",
		ErrorHandler:    controllers.ErrorHandler(logger),
	})

	app.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowOriginsFunc: func(_ string) bool { return true },
	}))
	app.Use(recover.New())
	app.Use(middleware.AccessLog(logger))

	app.Get("/api/swagger/*", fiberSwagger.WrapHandler)
	controllers.NewHealthController(store.checks).Route(app)
	controllers.NewMenuController(store.catalog).Route(app)
	// Stream first so /stream is not routed as an order id
	controllers.NewStreamController(hub, logger, configs.SessionBufferSize).Route(app)
	controllers.NewOrderController(orderService, aggregator, replayer, logger).Route(app)

	group, groupCtx := errgroup.WithContext(ctx)
	if relay != nil {
		group.Go(func() error { return relay.Run(groupCtx) })
	}
	group.Go(func() error {
		logger.Info(ctx, "Starting server on port "+configs.HTTPPort)
		return app.Listen(":" + configs.HTTPPort)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down gracefully...")

		// Ends open event streams so the server can drain
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Exception(ctx, "Server error occurred", err)
	}

	if err := jobs.Stop(); err != nil {
		logger.Exception(ctx, "Job scheduler shutdown error", err)
	}
	if configs.StoreDriver == config.StoreDriverMongo {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongo.Disconnect(disconnectCtx); err != nil {
			logger.Exception(ctx, "MongoDB disconnect error", err)
		}
	}

	logger.Info(ctx, "Server shutdown complete")
}

func openStorage(ctx context.Context, configs *config.Config, logger log.Logger) (*storage, error) {
	if configs.StoreDriver == config.StoreDriverMemory {
		logger.Warn(ctx, "Using in-memory storage, orders are lost on restart")
		return &storage{
			orders:  persistence.NewMemoryOrderRepository(),
			outbox:  persistence.NewMemoryOrderEventRepository(),
			catalog: menu.NewStaticCatalog(),
			checks:  map[string]controllers.HealthCheck{},
		}, nil
	}

	db, err := mongo.GetDatabase(configs)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "MongoDB connection successful")

	orders := persistence.NewOrderRepository(db)
	if err := orders.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	outbox := persistence.NewOrderEventRepository(db)
	if err := outbox.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return &storage{
		orders:  orders,
		outbox:  outbox,
		catalog: menu.NewMenuItemRepository(db),
		checks:  map[string]controllers.HealthCheck{"mongodb": mongo.Ping},
	}, nil
}
