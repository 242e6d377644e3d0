package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-contact-backend/internal/config"
	"github.com/tbourn/go-contact-backend/internal/domain"
	httpapi "github.com/tbourn/go-contact-backend/internal/http"
	"github.com/tbourn/go-contact-backend/internal/observability"
	"github.com/tbourn/go-contact-backend/internal/repo"
	"github.com/tbourn/go-contact-backend/internal/sysutil"
)

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	cfg     config.Config
	db      *gorm.DB
	catalog domain.Catalog
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var envFile string

	root := &cobra.Command{
		Use:           "contactd",
		Short:         "Contact form backend",
		Long:          "contactd serves the contact form API (default) and offers operator commands for stored submissions.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is normal outside development.
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			sysutil.ConfigureLogger(cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.serve(cmd.Context())
			},
		},
		newStatsCmd(a),
		newClearCmd(a),
		newPurgeCmd(a),
	)
	return root
}

func newStatsCmd(a *app) *cobra.Command {
	var client string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the submission statistics of one visitor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			subSvc, _ := httpapi.NewServices(a.db, a.catalog, a.cfg)
			fmt.Fprintln(cmd.OutOrStdout(), subSvc.Stats(cmd.Context(), client))
			return nil
		},
	}
	cmd.Flags().StringVar(&client, "client", "", "visitor namespace (X-Client-ID value or ip:<addr>)")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	var client string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored submission of one visitor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			subSvc, _ := httpapi.NewServices(a.db, a.catalog, a.cfg)
			if err := subSvc.Clear(cmd.Context(), client); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared submissions of %s\n", client)
			return nil
		},
	}
	cmd.Flags().StringVar(&client, "client", "", "visitor namespace (X-Client-ID value or ip:<addr>)")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete idempotency records whose replay window has closed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			n, err := repo.PurgeExpiredIdempotency(cmd.Context(), a.db, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("purge: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired idempotency records\n", n)
			return nil
		},
	}
}

// sweepIdempotency purges expired idempotency records every interval until
// ctx ends.
func sweepIdempotency(ctx context.Context, db *gorm.DB, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("idempotency sweep")
			}
		}
	}
}

// open connects the database, migrates it and loads the service catalog.
func (a *app) open() error {
	db, err := repo.Open(a.cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	catalog, err := config.LoadCatalog(a.cfg.Site.CatalogPath)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	a.db, a.catalog = db, catalog
	return nil
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupOTel(ctx, a.cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer observability.Flush(shutdownTracing, 5*time.Second)

	if err := a.open(); err != nil {
		return err
	}

	gin.SetMode(a.cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, a.db, a.catalog, a.cfg)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadTimeout:       a.cfg.ReadTimeout,
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       a.cfg.IdleTimeout,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	go sweepIdempotency(ctx, a.db, time.Hour)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("company", a.cfg.Site.CompanyName).
			Int("max_submissions", a.cfg.Site.MaxSubmissions).
			Int("services", a.catalog.Len()).
			Str("version", sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)).
			Msg("contactd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
