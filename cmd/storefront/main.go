package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/thesahilsinghh/shoppers/internal/backend"
	"github.com/thesahilsinghh/shoppers/internal/cart"
	"github.com/thesahilsinghh/shoppers/internal/checkout"
	"github.com/thesahilsinghh/shoppers/internal/config"
	"github.com/thesahilsinghh/shoppers/internal/draftstore"
	"github.com/thesahilsinghh/shoppers/internal/httpapi"
	"github.com/thesahilsinghh/shoppers/internal/orders"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if cfg.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	}

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	log.WithFields(log.Fields{"addr": cfg.RedisAddr}).Info("connected to redis")

	httpClient := backend.NewHTTPClient(cfg.RequestTimeout)
	cartClient := backend.NewCartClient(cfg.CartAPIBase, httpClient)
	gqlClient := backend.NewGraphQLClient(cfg.GraphQLEndpoint, httpClient)

	draftStore := draftstore.NewRedisStore(redisClient)
	sessions := cart.NewSessions(cartClient)
	histories := orders.NewHistories(gqlClient)
	builder := checkout.NewDraftBuilder(draftStore)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Sessions:       sessions,
		Histories:      histories,
		DraftBuilder:   builder,
		Payments:       gqlClient,
		DraftStore:     draftStore,
		GraphQL:        gqlClient,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{"port": cfg.HTTPPort}).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}
