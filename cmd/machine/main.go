package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"sodavend/internal/config"
	"sodavend/internal/machine"
	"sodavend/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zlog.With().Str("service", "machine").Logger()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}

	inventory := store.NewInventoryStore(cfg.InventoryFile())
	if err := inventory.Load(); err != nil {
		zlog.Fatal().Err(err).Msg("inventory file unreadable")
	}
	orders := store.NewFileOrderStore(cfg.OrdersFile())

	m := machine.New(inventory, orders, os.Stdout)
	if err := m.Run(context.Background(), os.Stdin); err != nil {
		zlog.Fatal().Err(err).Msg("input error")
	}
}
