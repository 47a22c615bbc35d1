package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/circuitbreaker"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/relay"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()

	var newRelay session.RelayFactory
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("redis ping succeeded", zap.String("addr", cfg.Redis.Addr))

		newRelay = func(sessionID string) session.Relay {
			return relay.NewRedisRelay(redisClient, sessionID, cfg.Redis.TTL, log)
		}
	}

	sess, err := session.New(log, newRelay)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	catalogClient := catalog.NewClient(catalog.Config{
		URL:       cfg.Catalog.URL,
		AccessKey: cfg.Catalog.AccessKey,
		Timeout:   cfg.Catalog.Timeout,
		Breaker: circuitbreaker.Settings{
			ConsecutiveFailures: cfg.Catalog.BreakerFailures,
			OpenTimeout:         cfg.Catalog.BreakerOpenDelay,
		},
	}, nil, log)

	router := h.NewRouter(h.Handlers{
		Products: h.NewProductHandler(catalogClient, log),
		Cart:     h.NewCartHandler(sess.Cart),
		Checkout: h.NewCheckoutHandler(checkout.NewService(sess.Cart, log)),
	}, log, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("storefront listening", zap.String("port", cfg.HTTPPort), zap.String("session_id", sess.ID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info("shutting down storefront...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := sess.Close(shutdownCtx); err != nil {
		log.Warn("session close", zap.Error(err))
	}

	log.Info("storefront stopped")
	return nil
}
