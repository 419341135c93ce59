package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"sodavend/internal/api"
	"sodavend/internal/config"
	"sodavend/internal/reservation"
	"sodavend/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zlog.With().Str("service", "orderservice").Logger()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}

	inventory := store.NewInventoryStore(cfg.InventoryFile())

	var orders store.OrderStore
	switch cfg.OrderBackend {
	case config.BackendPostgres:
		pg, err := store.NewPostgresOrderStore(cfg.DBSource)
		if err != nil {
			zlog.Fatal().Err(err).Msg("unable to connect to database")
		}
		defer pg.Close()
		orders = pg
	default:
		orders = store.NewFileOrderStore(cfg.OrdersFile())
	}

	reservations := reservation.NewService(inventory, orders)
	handler := api.NewHandler(orders, reservations)
	router := api.NewRouter(handler, cfg.StaticDir)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		zlog.Info().Str("port", cfg.Port).Str("backend", cfg.OrderBackend).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("shutdown error")
	}
}
