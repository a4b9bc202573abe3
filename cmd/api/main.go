package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animal-registry/internal/adapters/owners/directory"
	"animal-registry/internal/adapters/storage/file"
	mem "animal-registry/internal/adapters/storage/memory"
	pg "animal-registry/internal/adapters/storage/postgres"
	"animal-registry/internal/domain/animals"
	"animal-registry/internal/domain/owners"
	"animal-registry/internal/platform/config"
	"animal-registry/internal/platform/logger"
	"animal-registry/internal/router"
)

func main() {
	configFile := flag.String("config", "", "archivo de config YAML (opcional)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.AppName,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	delim, err := animals.ParseDelimiter(cfg.Delimiter)
	if err != nil {
		return err
	}

	gw, closeGW, err := openGateway(cfg)
	if err != nil {
		return err
	}
	defer closeGW()

	seed := []owners.Owner{}
	if cfg.OwnersSeed != "" {
		seed, err = mem.ReadOwnerSeedFile(cfg.OwnersSeed)
		if err != nil {
			return err
		}
	}
	ownersSvc := owners.NewService(mem.NewOwnerRepo(seed...))

	var resolver animals.OwnerResolver = ownersSvc
	if cfg.Directory.BaseURL != "" {
		resolver, err = directory.NewResolver(directory.Config{
			BaseURL:  cfg.Directory.BaseURL,
			APIKey:   cfg.Directory.APIKey,
			CacheTTL: cfg.Directory.CacheTTL,
		}, log)
		if err != nil {
			return err
		}
	}

	r := router.NewRouter(router.Options{
		Log:           log,
		Gateway:       gw,
		Owners:        ownersSvc,
		OwnerResolver: resolver,
		Delimiter:     delim,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":    srv.Addr,
			"storage": cfg.Storage,
			"owners":  len(seed),
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openGateway elige el medio de almacenamiento según config.storage.
func openGateway(cfg config.Config) (animals.Gateway, func(), error) {
	noop := func() {}

	switch cfg.Storage {
	case config.StorageMemory:
		return mem.NewGateway(), noop, nil

	case config.StoragePostgres:
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return nil, noop, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return pg.NewGateway(db), closeDB(db), nil

	default:
		gw, err := file.NewGateway(cfg.DataDir)
		if err != nil {
			return nil, noop, err
		}
		return gw, noop, nil
	}
}

func closeDB(db *sql.DB) func() {
	return func() { _ = db.Close() }
}
