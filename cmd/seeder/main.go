package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"

	"sodavend/internal/config"
	"sodavend/internal/domain"
)

var defaultInventory = []domain.Soda{
	{Name: "Cola", Stock: 10, Price: 8},
	{Name: "Cola Diet", Stock: 8, Price: 8},
	{Name: "Fanta", Stock: 6, Price: 7},
	{Name: "Sprite", Stock: 5, Price: 7},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log.Println("--- Seeding data directory ---")
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Unable to create data dir: %v", err)
	}

	seedJSON(cfg.InventoryFile(), defaultInventory)
	seedJSON(cfg.OrdersFile(), []domain.Order{})

	if cfg.OrderBackend == config.BackendPostgres {
		seedPostgres(cfg.DBSource)
	}
}

// seedJSON writes the seed collection unless the file already exists; a
// running machine's state is never clobbered.
func seedJSON(path string, v interface{}) {
	if _, err := os.Stat(path); err == nil {
		log.Printf("%s already exists. Skipping.", filepath.Base(path))
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Marshal failed: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("Write failed: %v", err)
	}
	log.Printf("Wrote %s", path)
}

func seedPostgres(dbURL string) {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS soda_orders (
			id          BIGINT PRIMARY KEY,
			soda        TEXT NOT NULL,
			pin_code    INT NOT NULL,
			is_complete BOOLEAN NOT NULL DEFAULT FALSE
		)`)
	if err != nil {
		log.Fatalf("Table creation failed: %v", err)
	}
	log.Println("soda_orders table ready")
}
