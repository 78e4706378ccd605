package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/avquote/internal/bom"
	"github.com/Simplici0/avquote/internal/config"
	"github.com/Simplici0/avquote/internal/db"
	"github.com/Simplici0/avquote/internal/migrations"
	"github.com/Simplici0/avquote/internal/quote"
	"github.com/Simplici0/avquote/internal/seed"
	"github.com/Simplici0/avquote/internal/store"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  a.runServe,
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()

			if err := migrations.Up(database, a.logger); err != nil {
				return err
			}
			version, err := migrations.Version(database, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var withCatalog bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert default pricing settings and the starter catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()

			if err := migrations.Up(database, a.logger); err != nil {
				return err
			}

			var catalog []bom.Equipment
			if withCatalog {
				catalog = seed.StarterCatalog()
			}
			stats, err := a.seed(cmd.Context(), database, catalog)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed complete: %d inserts\n", stats.Inserts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withCatalog, "catalog", true, "Also insert the starter equipment catalog")
	return cmd
}

func (a *app) seed(ctx context.Context, database *sql.DB, catalog []bom.Equipment) (seed.Stats, error) {
	defaults, err := config.LoadPricingDefaults(a.cfg.PricingFile)
	if err != nil {
		return seed.Stats{}, err
	}
	stats, err := seed.Run(ctx, database, seed.Config{Pricing: defaults, Catalog: catalog})
	if err != nil {
		return seed.Stats{}, fmt.Errorf("failed to seed database: %w", err)
	}
	a.logger.Info("seed complete", zap.Int("inserts", stats.Inserts))
	return stats, nil
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var catalog []bom.Equipment
	if a.cfg.IsDev() {
		if err := migrations.Up(database, a.logger); err != nil {
			return err
		}
		catalog = seed.StarterCatalog()
	}
	if _, err := a.seed(ctx, database, catalog); err != nil {
		return err
	}

	defaults, err := config.LoadPricingDefaults(a.cfg.PricingFile)
	if err != nil {
		return err
	}

	st := store.New(database)
	srv := newServer(st, quote.NewService(st, defaults.MarginPercent, a.logger), a.cfg.Currency, a.logger)

	httpServer := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", a.cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
