package main

import (
	"finreport-backend/config"
	"finreport-backend/dao"
	"finreport-backend/router"
	"log/slog"
	"os"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	if err := config.Load(configPath); err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	if err := dao.InitPostgres(); err != nil {
		slog.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	r := router.Register()
	addr := config.Cfg.Server.Host + ":" + config.Cfg.Server.Port
	slog.Info("server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
