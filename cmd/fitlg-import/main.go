package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/fitlg/internal/catalog"
	"github.com/claude/fitlg/internal/config"
	"github.com/claude/fitlg/internal/models"
	"github.com/claude/fitlg/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	csvPath := flag.String("path", "", "path to a movement catalog CSV (name;equipment;settings)")
	defaults := flag.Bool("defaults", false, "import the built-in default catalog")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*csvPath == "") == !*defaults {
		fmt.Fprintf(os.Stderr, "Usage: fitlg-import -config config.yaml (-path catalog.csv | -defaults) [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	seeds, err := loadSeeds(*csvPath)
	if err != nil {
		log.Error("reading catalog failed", "path", *csvPath, "error", err)
		os.Exit(1)
	}
	log.Info("catalog parsed", "movements", len(seeds))

	if *dryRun {
		for _, s := range seeds {
			log.Info("movement", "name", s.Name, "equipment", s.Equipment, "settings", s.Settings)
		}
		log.Info("dry-run: nothing written")
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	n, err := db.UpsertCatalog(ctx, seeds)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete", "movements", n)
}

// loadSeeds parses the CSV at path, or returns the default catalog when
// path is empty.
func loadSeeds(path string) ([]models.CatalogSeed, error) {
	if path == "" {
		return catalog.Defaults(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catalog.Parse(f)
}
