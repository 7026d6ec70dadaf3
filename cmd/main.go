package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pizzeria-system/internal/config"
	"pizzeria-system/internal/logger"
	"pizzeria-system/internal/menu"
	"pizzeria-system/internal/messaging"
	"pizzeria-system/internal/models"
	"pizzeria-system/internal/services/order"
	"pizzeria-system/internal/storage"
)

func main() {
	var (
		configPath  = flag.String("config", "config.yaml", "Path to the YAML config file")
		port        = flag.Int("port", 0, "HTTP port (overrides config)")
		deliveryFee = flag.Float64("delivery-fee", 0, "Delivery fee (overrides config)")
		serviceFee  = flag.Float64("service-fee", 0, "Service fee rate (overrides config)")
	)
	flag.Parse()

	log := logger.New("order-service")
	requestID := "startup"

	cfg, err := loadConfig(*configPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags set on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "delivery-fee":
			cfg.Pricing.DeliveryFee = deliveryFee
		case "service-fee":
			cfg.Pricing.ServiceFeeRate = serviceFee
		}
	})

	// Pricing is shared by every order and written only here, at startup.
	pricing := &models.Pricing{
		DeliveryFee:    *cfg.Pricing.DeliveryFee,
		ServiceFeeRate: *cfg.Pricing.ServiceFeeRate,
	}

	log.Info("service_started", "Starting order service", requestID, map[string]interface{}{
		"port":             cfg.Server.Port,
		"delivery_fee":     pricing.DeliveryFee,
		"service_fee_rate": pricing.ServiceFeeRate,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	catalog := menu.FromConfig(cfg.Menu)

	store, closeStore, err := newStore(ctx, cfg, pricing, log)
	if err != nil {
		log.Error("startup_failed", "Failed to initialize order store", requestID, err, nil)
		os.Exit(1)
	}
	defer closeStore()

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		log.Error("startup_failed", "Failed to connect to RabbitMQ", requestID, err, nil)
		os.Exit(1)
	}
	if publisher != nil {
		defer publisher.Close()
	}

	service := order.NewService(catalog, store, pricing, publisher, log)
	handler := order.NewHandler(service, catalog, pricing, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      order.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown_failed", "Failed to shut down HTTP server", requestID, err, nil)
			os.Exit(1)
		}
	case err := <-errCh:
		log.Error("server_failed", "HTTP server failed", requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// loadConfig loads the config file, falling back to built-in defaults
// when the file does not exist.
func loadConfig(path string, log *logger.Logger) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("config_defaulted", fmt.Sprintf("Config file %s not found, using defaults", path), "startup", nil)
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// newStore picks the order store: PostgreSQL when configured, the
// in-memory store otherwise.
func newStore(ctx context.Context, cfg *config.Config, pricing *models.Pricing, log *logger.Logger) (storage.OrderStore, func(), error) {
	if cfg.Database == nil {
		log.Info("store_selected", "Using in-memory order store", "startup", nil)
		return storage.NewMemoryStore(), func() {}, nil
	}

	pg, err := storage.NewPostgresStore(ctx, cfg, pricing, log)
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

// newPublisher connects to RabbitMQ when configured; a nil publisher
// means status updates stay local.
func newPublisher(cfg *config.Config, log *logger.Logger) (*messaging.Publisher, error) {
	if cfg.RabbitMQ == nil {
		return nil, nil
	}
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return nil, err
	}
	return messaging.NewPublisher(conn, log), nil
}
