package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deposit-reconciliation-service/cmd/depositd/config"
	"deposit-reconciliation-service/internal/recon"
	"deposit-reconciliation-service/internal/scheduler"
	"deposit-reconciliation-service/internal/store"
	"deposit-reconciliation-service/internal/users"
	"deposit-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the serve command
var (
	logFormat     string
	matchInterval time.Duration
	sweepInterval time.Duration
	adminEmail    string
	adminPassword string
)

// serveCmd runs the background reconciliation daemon
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconciliation daemon",
	Long: `Serve starts the scheduled reconciliation pass and staleness sweep
against the durable state file and blocks until interrupted.

Examples:
  depositd serve --data-file data/state.json
  depositd serve --match-interval 30s --sweep-interval 2m
  depositd serve --admin-email ops@example.com --admin-password changeme`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&logFormat, "log-format", "text", "log format: text, json")
	serveCmd.Flags().DurationVar(&matchInterval, "match-interval", 0, "reconciliation pass cadence (default 60s)")
	serveCmd.Flags().DurationVar(&sweepInterval, "sweep-interval", 0, "staleness sweep cadence (default 5m)")
	serveCmd.Flags().StringVar(&adminEmail, "admin-email", "", "bootstrap admin account email (optional)")
	serveCmd.Flags().StringVar(&adminPassword, "admin-password", "", "bootstrap admin account password")

	viper.BindPFlag("log-format", serveCmd.Flags().Lookup("log-format"))
	viper.BindPFlag("match-interval", serveCmd.Flags().Lookup("match-interval"))
	viper.BindPFlag("sweep-interval", serveCmd.Flags().Lookup("sweep-interval"))
	viper.BindPFlag("admin-email", serveCmd.Flags().Lookup("admin-email"))
	viper.BindPFlag("admin-password", serveCmd.Flags().Lookup("admin-password"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logCfg, err := config.CreateLoggerConfig(viper.GetBool("verbose"), viper.GetString("log-format"))
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.SetGlobalLogger(log)

	st, err := openStore()
	if err != nil {
		return err
	}

	if email := viper.GetString("admin-email"); email != "" {
		password := viper.GetString("admin-password")
		if password == "" {
			return fmt.Errorf("admin-password is required when admin-email is set")
		}
		if err := users.NewService(st).EnsureAdmin(email, password); err != nil {
			return fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
	}

	engine, err := recon.NewEngine(st, nil)
	if err != nil {
		return fmt.Errorf("failed to create reconciliation engine: %w", err)
	}

	schedCfg, err := config.CreateSchedulerConfig(
		viper.GetDuration("match-interval"),
		viper.GetDuration("sweep-interval"),
	)
	if err != nil {
		return err
	}

	sched, err := scheduler.New(engine, schedCfg)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cancel()
	return sched.Stop()
}

func openStore() (*store.Store, error) {
	path := viper.GetString("data-file")
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state file %s: %w", path, err)
	}
	return st, nil
}
