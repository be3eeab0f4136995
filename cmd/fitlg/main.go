package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailscale.com/tsnet"

	"github.com/claude/fitlg/internal/api"
	"github.com/claude/fitlg/internal/catalog"
	"github.com/claude/fitlg/internal/config"
	"github.com/claude/fitlg/internal/mcp"
	"github.com/claude/fitlg/internal/program"
	"github.com/claude/fitlg/internal/server"
	"github.com/claude/fitlg/internal/session"
	"github.com/claude/fitlg/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	seed := flag.Bool("seed", false, "load the default movement catalog before serving")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("fitlg starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	if *seed {
		n, err := db.UpsertCatalog(ctx, catalog.Defaults())
		if err != nil {
			log.Error("seeding movement catalog failed", "error", err)
			os.Exit(1)
		}
		log.Info("movement catalog seeded", "movements", n)
	}

	sessions, err := session.Open(ctx, session.Options{
		Kind:          cfg.Session.Store,
		SQLitePath:    cfg.Session.SQLitePath,
		RedisAddr:     cfg.Session.RedisAddr,
		RedisPassword: cfg.Session.RedisPassword,
		RedisDB:       cfg.Session.RedisDB,
		TTL:           cfg.Session.TTL,
	})
	if err != nil {
		log.Error("failed to open session store", "store", cfg.Session.Store, "error", err)
		os.Exit(1)
	}
	defer sessions.Close()
	log.Info("session store ready", "store", cfg.Session.Store)

	programs := program.NewService(db, log)

	var backend server.BackendFunc
	if cfg.Backend.Mode == "remote" {
		backend = server.StaticBackend(api.NewClient(cfg.Backend.URL, cfg.Backend.APIKey))
		log.Info("wizard backend", "mode", "remote", "url", cfg.Backend.URL)
	}

	// Create server
	srv := server.New(server.Deps{
		Programs: programs,
		Users:    db,
		Sessions: sessions,
		Backend:  backend,
		Auth:     cfg.Auth,
		Log:      log,
	})
	srv.MountMCP(mcp.NewHTTPHandler(mcp.New(programs, Version, log)))

	// Start server over tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)", "user", cfg.Auth.DevUser)
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
