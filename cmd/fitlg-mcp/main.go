// Command fitlg-mcp serves the fitlg MCP tools over stdio. It reads the
// database directly, or with -remote talks to a fitlg server's JSON
// endpoints, typically across the tailnet.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/fitlg/internal/api"
	"github.com/claude/fitlg/internal/config"
	"github.com/claude/fitlg/internal/mcp"
	"github.com/claude/fitlg/internal/program"
	"github.com/claude/fitlg/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	remote := flag.String("remote", "", "base URL of a fitlg server (e.g. http://fitlg); reads the database when empty")
	apiKey := flag.String("api-key", os.Getenv("FITLG_API_KEY"), "API key of the remote server")
	flag.Parse()

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	userID, isAdmin := 1, false
	ctx := context.Background()

	if *remote != "" {
		ds = api.NewClient(*remote, *apiKey)
		log.Info("mcp data source", "mode", "remote", "url", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		isAdmin = cfg.Auth.IsAdmin(cfg.Auth.DevUser)
		userID, err = db.GetOrCreateUser(ctx, cfg.Auth.DevUser, "", isAdmin)
		if err != nil {
			log.Error("failed to resolve user", "login", cfg.Auth.DevUser, "error", err)
			os.Exit(1)
		}
		ds = program.NewService(db, log)
		log.Info("mcp data source", "mode", "local", "user", cfg.Auth.DevUser, "user_id", userID)
	}

	s := mcp.New(ds, Version, log)
	err := server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return mcp.WithUser(ctx, userID, isAdmin)
	}))
	if err != nil {
		log.Error("stdio server stopped", "error", err)
		os.Exit(1)
	}
}
