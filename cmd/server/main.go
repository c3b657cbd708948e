package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/minhhq2805/prefdash/internal/api"
	"github.com/minhhq2805/prefdash/internal/config"
	"github.com/minhhq2805/prefdash/internal/keyvalue"
	"github.com/minhhq2805/prefdash/internal/syncer"
	"github.com/minhhq2805/prefdash/internal/wallet"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "./data", "path to data directory")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure data directory exists.
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Open the key-value store backend.
	store, err := openStore(cfg, *dataDir)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	// Connect the wallet account: configured key, or a fresh one.
	var w *wallet.Provider
	if cfg.Wallet.WIF != "" {
		w, err = wallet.Load(cfg.Wallet.WIF)
	} else {
		w, err = wallet.Generate()
	}
	if err != nil {
		slog.Error("failed to set up wallet", "error", err)
		os.Exit(1)
	}
	w.OnChange(func(address string) {
		slog.Info("active account changed", "address", address)
	})

	// Build the synchronizer and router.
	sync := syncer.New(store, w, syncer.Options{ComputeDelay: cfg.ComputeDelay()})
	router := api.NewRouter(sync, w, store)

	// Localhost only: the dashboard UI is the sole intended client.
	addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)

	slog.Info("starting server", "addr", "http://"+addr, "account", w.Address())
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// openStore builds the configured key-value backend.
func openStore(cfg *config.Config, dataDir string) (keyvalue.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		slog.Warn("using in-memory store, records are lost on restart")
		return keyvalue.NewMemory(), nil
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = filepath.Join(dataDir, "prefdash.db")
		}
		return keyvalue.OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
