package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"deposit-reconciliation-service/internal/ledger"
	"deposit-reconciliation-service/internal/parsers"

	"github.com/spf13/cobra"
)

// Flags for the ingest command
var (
	ingestSource string
	ingestFile   string
)

// ingestCmd normalizes a raw payment signal and stores the resulting ledger
// entries
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a raw payment signal into the incoming ledger",
	Long: `Ingest parses a raw payment notification and stores the extracted entries
in the incoming ledger, where the next reconciliation pass can match them.

Sources:
  email  credit notification email text
  sms    credit notification SMS text
  chain  blockchain transaction payload (JSON)

Examples:
  depositd ingest --source email --file notification.txt
  depositd ingest --source sms --file credit_sms.txt
  depositd ingest --source chain --file trc20_tx.json`,
	PreRunE: validateIngestFlags,
	RunE:    runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "signal source: email, sms, chain (required)")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "path to the raw signal file (required)")

	ingestCmd.MarkFlagRequired("source")
	ingestCmd.MarkFlagRequired("file")
}

func validateIngestFlags(cmd *cobra.Command, args []string) error {
	switch ingestSource {
	case "email", "sms", "chain":
	default:
		return fmt.Errorf("invalid source %q: must be email, sms or chain", ingestSource)
	}

	info, err := os.Stat(ingestFile)
	if os.IsNotExist(err) {
		return fmt.Errorf("signal file does not exist: %s", ingestFile)
	}
	if err != nil {
		return fmt.Errorf("error accessing signal file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("signal file is a directory: %s", ingestFile)
	}

	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(ingestFile)
	if err != nil {
		return fmt.Errorf("reading signal file: %w", err)
	}

	entries, err := extractEntries(string(raw))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no ledger entries recognized in %s", ingestFile)
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	stored, err := ledger.NewService(st).IngestAll(entries)
	if err != nil {
		return fmt.Errorf("ingesting entries: %w", err)
	}

	fmt.Printf("Ingested %d ledger entries\n", len(stored))
	return nil
}

func extractEntries(raw string) ([]ledger.CanonicalEntry, error) {
	switch ingestSource {
	case "email":
		return parsers.NewEmailParser().Extract(raw)
	case "sms":
		return parsers.NewSMSParser().Extract(raw)
	case "chain":
		var tx parsers.ChainTransaction
		if err := json.Unmarshal([]byte(raw), &tx); err != nil {
			return nil, fmt.Errorf("decoding chain transaction: %w", err)
		}
		entry, err := parsers.NewChainParser().Parse(tx)
		if err != nil {
			return nil, err
		}
		return []ledger.CanonicalEntry{entry}, nil
	}
	return nil, fmt.Errorf("unknown source %q", ingestSource)
}
