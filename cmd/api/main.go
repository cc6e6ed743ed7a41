package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gearhub/internal/checkout"
	"gearhub/internal/config"
	"gearhub/internal/database"
	"gearhub/internal/discount"
	"gearhub/internal/handler"
	"gearhub/internal/mail"
	"gearhub/internal/repository"
	"gearhub/internal/router"
	"gearhub/internal/service"
	"gearhub/internal/tax"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const migrationsPath = "migrations"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting gearhub API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Apply schema migrations before serving traffic
	if err := database.Migrate(cfg.Database, migrationsPath, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize the Redis client backing checkout sessions
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	shippingRepo := repository.NewShippingMethodRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	sessionStore := checkout.NewRedisStore(redisClient, logger)

	// Initialize the discount loader with S3 and local fallback
	var discountLoader discount.Loader
	if cfg.Discount.S3Enabled {
		s3Loader, err := discount.NewS3Loader(ctx, cfg.Discount.S3Bucket, cfg.Discount.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			discountLoader = discount.NewFileLoader(logger)
		} else {
			discountLoader = s3Loader
		}
	} else {
		discountLoader = discount.NewFileLoader(logger)
		logger.Info().Msg("using local file system for discount codes (S3 disabled)")
	}

	discountValidator, err := discount.NewValidator(ctx, discountLoader, cfg.Discount.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize discount validator: %w", err)
	}

	var taxPolicy tax.Policy = tax.ZeroTax{}
	if cfg.Tax.FlatRate > 0 {
		taxPolicy = tax.FlatRate{Rate: decimal.NewFromFloat(cfg.Tax.FlatRate)}
	}

	var mailer mail.Sender = mail.NopSender{}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger)
	} else {
		logger.Info().Msg("SMTP host not set, order confirmations disabled")
	}

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	checkoutService := service.NewCheckoutService(cartRepo, shippingRepo, sessionStore, discountValidator, taxPolicy, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, sessionStore, discountValidator, taxPolicy, mailer, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Initialize router
	mux := router.New(productHandler, cartHandler, checkoutHandler, orderHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
