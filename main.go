package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"go.uber.org/zap"

	"libsense_backend/internals/configs"
	database "libsense_backend/internals/databases"
	orderService "libsense_backend/internals/features/orders/service"
	reportService "libsense_backend/internals/features/reports/service"
	"libsense_backend/internals/logger"
	"libsense_backend/internals/middlewares"
	middlewareLogger "libsense_backend/internals/middlewares/logger"
	routes "libsense_backend/internals/route"
	"libsense_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	if err := logger.Initialize(configs.GetEnv("LOG_LEVEL", "info")); err != nil {
		panic(err)
	}
	defer logger.Sync()

	settings, err := configs.NewFileSettings(configs.SettingsPath)
	if err != nil {
		logger.Log.Fatal("could not load settings", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
	})

	app.Use(middlewares.RequestID())
	app.Use(middlewares.RecoveryMiddleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(middlewares.CorsMiddleware())
	app.Use(middlewares.GlobalRateLimiter())
	app.Use(middlewareLogger.LoggerMiddleware())

	database.ConnectDB()
	database.Migrate()
	database.TunePool()
	database.WarmUpQueries()

	if configs.GetEnv("RUN_SEEDS", "true") == "true" {
		seeds.RunAllSeeds(database.DB)
	}

	// daily report digest
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailer := reportService.Mailer(reportService.LogMailer{})
	builder := reportService.NewBuilder(orderService.NewReportService(database.DB, settings))
	scheduler := reportService.NewScheduler(builder, mailer, settings, 24*time.Hour)
	go scheduler.Run(ctx)

	routes.SetupRoutes(app, database.DB, settings, mailer)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		logger.Log.Info("listening", zap.String("port", port))
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
