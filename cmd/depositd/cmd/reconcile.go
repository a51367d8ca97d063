package cmd

import (
	"context"
	"fmt"
	"time"

	"deposit-reconciliation-service/cmd/depositd/config"
	"deposit-reconciliation-service/internal/recon"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags shared by the one-shot reconcile and sweep commands
var (
	amountTolerance float64
	matchWindow     time.Duration
	staleAfter      time.Duration
)

// reconcileCmd runs a single reconciliation pass
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation pass",
	Long: `Reconcile scans pending deposits that carry a UTR or transaction hash and
matches each against the first unmatched ledger entry with the same proof
string and method whose amount and timing fall within tolerance. Matched
deposits become SUCCESS and their ledger entries are consumed.

Examples:
  depositd reconcile --data-file data/state.json
  depositd reconcile --amount-tolerance 0.05 --match-window 1h`,
	RunE: runReconcilePass,
}

// sweepCmd runs a single staleness sweep
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one staleness sweep",
	Long: `Sweep flags deposits that have been pending with proof for longer than the
stale-after cutoff and for which no ledger entry with the same proof string
and method was ever observed.

Examples:
  depositd sweep --data-file data/state.json
  depositd sweep --stale-after 2h`,
	RunE: runSweepPass,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(sweepCmd)

	for _, c := range []*cobra.Command{reconcileCmd, sweepCmd} {
		c.Flags().Float64Var(&amountTolerance, "amount-tolerance", 0, "amount tolerance (default 0.01)")
		c.Flags().DurationVar(&matchWindow, "match-window", 0, "match window between claim and payment (default 30m)")
		c.Flags().DurationVar(&staleAfter, "stale-after", 0, "age after which unmatched deposits are flagged (default 1h)")
	}

	viper.BindPFlag("amount-tolerance", reconcileCmd.Flags().Lookup("amount-tolerance"))
	viper.BindPFlag("match-window", reconcileCmd.Flags().Lookup("match-window"))
	viper.BindPFlag("stale-after", sweepCmd.Flags().Lookup("stale-after"))
}

func buildEngine() (*recon.Engine, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}

	cfg, err := config.CreateReconConfig(amountTolerance, matchWindow, staleAfter)
	if err != nil {
		return nil, err
	}

	return recon.NewEngine(st, cfg)
}

func runReconcilePass(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}

	matched, err := engine.RunPass(context.Background())
	if err != nil {
		return fmt.Errorf("reconciliation pass failed: %w", err)
	}

	fmt.Printf("Matched %d deposits\n", matched)
	return nil
}

func runSweepPass(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}

	flagged, err := engine.RunSweep(context.Background())
	if err != nil {
		return fmt.Errorf("staleness sweep failed: %w", err)
	}

	fmt.Printf("Flagged %d deposits\n", flagged)
	return nil
}
