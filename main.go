package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tournevent/shipping-connector/internal/server"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "shipping-connector",
	Short:   "UPS shipping connector - quoting, shipments and tracking for marketplace channels",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Poll the carrier for tracking updates on open shipments",
	RunE:  runReconcile,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var (
	reconcileInterval time.Duration
	reconcileOnce     bool
)

func init() {
	reconcileCmd.Flags().DurationVar(&reconcileInterval, "interval", 0,
		"time between reconciliation passes (default from RECONCILE_INTERVAL)")
	reconcileCmd.Flags().BoolVar(&reconcileOnce, "once", false,
		"run a single pass and exit")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	app.logger.Info("Starting shipping connector",
		zap.Int("port", app.cfg.Port),
		zap.String("version", app.cfg.Version),
		zap.Bool("ups_mock", app.cfg.UPSUseMock),
	)

	srv := server.New(server.Config{
		Port:         app.cfg.Port,
		SharedSecret: app.cfg.SharedSecret,
		Channels:     app.cfg.Channels,
	}, app.service, app.logger, app.metrics)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	interval := reconcileInterval
	if interval == 0 {
		interval = app.cfg.ReconcileInterval
	}

	pass := func() {
		if err := app.service.ReconcilePass(ctx, app.cfg.ReconcileWorkers); err != nil {
			app.logger.Error("reconciliation pass failed", zap.Error(err))
		}
	}

	pass()
	if reconcileOnce {
		return nil
	}

	app.logger.Info("Reconciler running", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pass()
		}
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	app, err := initApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close(cmd.Context())

	if app.gormStore == nil {
		return fmt.Errorf("migrate requires a database-backed store")
	}
	if err := app.gormStore.Migrate(); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	app.logger.Info("Schema migrated",
		zap.String("dialect", app.cfg.DBDialect))
	return nil
}
