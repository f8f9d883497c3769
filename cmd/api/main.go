package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/sagaflow-backend/api/routes"
	"github.com/angelmondragon/sagaflow-backend/internal/inventory"
	"github.com/angelmondragon/sagaflow-backend/internal/payment"
	product "github.com/angelmondragon/sagaflow-backend/internal/products"
	sagasvc "github.com/angelmondragon/sagaflow-backend/internal/saga"
	"github.com/angelmondragon/sagaflow-backend/pkg/config"
	"github.com/angelmondragon/sagaflow-backend/pkg/db"
	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
	"github.com/angelmondragon/sagaflow-backend/pkg/migrate"
	"github.com/angelmondragon/sagaflow-backend/pkg/outbox"
	"github.com/angelmondragon/sagaflow-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outboxRepo, logg)

	inventoryService := sagasvc.NewResilientInventory(inventory.NewService(logg, cfg.Inventory.OutOfStockSKU))
	paymentService := sagasvc.NewResilientPayment(payment.NewService(logg, cfg.Payment.ChargeLimit))

	sagaService, err := sagasvc.NewService(
		sagasvc.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		inventoryService,
		paymentService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create saga service", err)
		os.Exit(1)
	}

	productRepo := product.NewRepository(dbClient.DB())
	productCommands, err := product.NewCommandService(productRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create product command service", err)
		os.Exit(1)
	}
	productQueries, err := product.NewQueryService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product query service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sagaService,
			outboxRepo,
			productCommands,
			productQueries,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
