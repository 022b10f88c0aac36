// Command agrosim serves Agro Hegemony games over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/agro-hegemony/internal/api"
	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/config"
	"github.com/talgya/agro-hegemony/internal/engine"
	"github.com/talgya/agro-hegemony/internal/persistence"
	"github.com/talgya/agro-hegemony/internal/session"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "", "path to agrosim.yaml (default: ./agrosim.yaml when present)")
	flag.Parse()

	slog.Info("Agro Hegemony simulation server")

	// ── Configuration ─────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// ── Catalog ───────────────────────────────────────────────────────
	var cat *catalog.Catalog
	if cfg.CatalogDir != "" {
		cat, err = catalog.Load(cfg.CatalogDir)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		slog.Error("failed to load catalog", "dir", cfg.CatalogDir, "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded",
		"rulesets", len(cat.Rulesets),
		"roles", len(cat.Roles),
		"crops", len(cat.Crops),
		"regions", len(cat.Regions),
		"digest", short(cat.Digest),
	)

	// ── Database ──────────────────────────────────────────────────────
	ctx := context.Background()
	db, err := persistence.Open(ctx, cfg.DatabaseOptions())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "dialect", db.Dialect())

	if prev, err := db.GetMeta(ctx, "catalog_digest"); err == nil && prev != "" && prev != cat.Digest {
		slog.Warn("catalog changed since last run; saved games are normalized on load", "previous", short(prev))
	}
	if err := db.SaveMeta(ctx, "catalog_digest", cat.Digest); err != nil {
		slog.Error("failed to save metadata", "error", err)
	}

	// ── Simulation Core ───────────────────────────────────────────────
	core := engine.New(cat)
	core.Source = cfg.Source()
	if core.Source == nil {
		slog.Info("entropy: per-game seeded streams (replayable)")
	} else {
		slog.Info("entropy: shared source", "mode", cfg.Entropy.Mode)
	}
	sessions := session.NewManager(core, db)

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("AGROSIM_ADMIN_KEY not set; snapshot endpoints will be disabled")
	}
	apiServer := &api.Server{
		Sessions:    sessions,
		DB:          db,
		Addr:        cfg.Addr,
		AdminKey:    cfg.AdminKey,
		SnapshotDir: cfg.SnapshotDir,
		ActionRate:  cfg.ActionRate,
	}
	apiServer.Start()

	fmt.Printf("\nAgro Hegemony is listening on %s\n", cfg.Addr)
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.Addr)
	fmt.Println("Press Ctrl+C to stop.")

	// ── Shutdown ──────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	fmt.Println("Server stopped. Games are saved after every action.")
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
