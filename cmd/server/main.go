package main // Entry point package

import (
    "context"
    "fmt"
    "os"
    "os/signal"
    "syscall"

    "github.com/spf13/pflag" // POSIX-style flags

    "github.com/iliyamo/auditorium-seat-reservation/internal/app"     // Service assembly
    "github.com/iliyamo/auditorium-seat-reservation/internal/config"  // Internal config loader
    "github.com/iliyamo/auditorium-seat-reservation/internal/logging" // Process logger
)

func main() {
    envFile := pflag.String("env-file", "", "dotenv file to load before the environment (default .env if present)")
    migrate := pflag.Bool("migrate", false, "apply the database schema on startup")
    catalogFile := pflag.String("catalog", "", "show catalog YAML to import on startup (overrides SHOW_CATALOG_FILE)")
    pflag.Parse()

    cfg, err := config.Load(*envFile) // Load environment config
    if err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
    logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    a, err := app.New(ctx, cfg, logger, app.Options{Migrate: *migrate, CatalogFile: *catalogFile})
    if err != nil {
        logger.WithError(err).Fatal("startup failed")
    }
    if err := a.Run(ctx); err != nil { // Serve until SIGINT/SIGTERM
        logger.WithError(err).Fatal("server stopped")
    }
    logger.Info("shutdown complete")
}
