package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	DataDir      string
	Port         string
	Env          string
	OrderBackend string
	DBSource     string
	StaticDir    string
}

func Load() (*Config, error) {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	backend := os.Getenv("ORDER_BACKEND")
	if backend == "" {
		backend = BackendFile
	}
	if backend != BackendFile && backend != BackendPostgres {
		return nil, fmt.Errorf("ORDER_BACKEND must be %q or %q, got %q", BackendFile, BackendPostgres, backend)
	}

	dbSource := os.Getenv("DB_SOURCE")
	if backend == BackendPostgres && dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required with ORDER_BACKEND=postgres")
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "web/static"
	}

	return &Config{
		DataDir:      dataDir,
		Port:         port,
		Env:          env,
		OrderBackend: backend,
		DBSource:     dbSource,
		StaticDir:    staticDir,
	}, nil
}

// InventoryFile is the path of the shared soda inventory document.
func (c *Config) InventoryFile() string {
	return filepath.Join(c.DataDir, "inventory.json")
}

// OrdersFile is the path of the shared reservation order document.
func (c *Config) OrdersFile() string {
	return filepath.Join(c.DataDir, "orders.json")
}
