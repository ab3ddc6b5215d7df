package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/madebycotrim/printlog-sub001/internal/config"
	"github.com/madebycotrim/printlog-sub001/internal/db"
	"github.com/madebycotrim/printlog-sub001/internal/history"
	"github.com/madebycotrim/printlog-sub001/internal/migrations"
	"github.com/madebycotrim/printlog-sub001/internal/seed"
	"github.com/madebycotrim/printlog-sub001/internal/settings"
)

type server struct {
	log      *slog.Logger
	settings *settings.Store
	history  *history.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, cfg.MigrationsDir); err != nil {
			log.Error("failed to run database migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	stats, err := seed.Run(database)
	if err != nil {
		log.Error("failed to run startup seed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if stats.Inserts > 0 {
		log.Info("startup seed applied", slog.Int("inserts", stats.Inserts))
	}

	srv := &server{
		log:      log,
		settings: settings.NewStore(database),
		history:  history.NewStore(database),
	}

	addr := ":" + cfg.Port
	log.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env))
	if err := http.ListenAndServe(addr, srv.routes(cfg)); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
