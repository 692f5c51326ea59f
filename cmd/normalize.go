package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gtj-aero/trustscore-cli/internal/evidence"
	"github.com/gtj-aero/trustscore-cli/internal/normalize"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize raw UCC filing pages to the canonical shape",
	Long: `Convert raw jurisdiction UCC query results into canonical filings.

The input is a JSON array of raw filing pages, each tagged with its
source shape (compact_api or generic_scrape). Output is a JSON object
keyed by jurisdiction. Pages with an unknown source kind are skipped
with a warning.

Examples:
  trustscore-cli normalize --input ucc_pages.json
  trustscore-cli normalize --input ucc_pages.json --output filings.json

  # Persist for later scoring runs
  trustscore-cli normalize --input ucc_pages.json --operator "Skyline Charters" --save`,
	RunE: runNormalize,
}

func init() {
	f := normalizeCmd.Flags()
	f.String("input", "", "raw filing pages JSON file (required)")
	f.String("output", "", "output file path (default: stdout)")
	f.String("operator", "", "operator name to store filings under")
	f.Bool("save", false, "persist normalized filings to the store (requires --operator)")
	_ = normalizeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("normalize"); err != nil {
		return err
	}

	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	operator, _ := cmd.Flags().GetString("operator")
	save, _ := cmd.Flags().GetBool("save")

	if save && operator == "" {
		return eris.New("normalize: --save requires --operator")
	}

	pages, err := evidence.LoadFilingPages(inputPath)
	if err != nil {
		return err
	}

	byJurisdiction := normalize.NormalizeAll(pages)

	total := 0
	for _, filings := range byJurisdiction {
		total += len(filings)
	}
	zap.L().Info("normalize: complete",
		zap.Int("pages", len(pages)),
		zap.Int("jurisdictions", len(byJurisdiction)),
		zap.Int("filings", total),
	)

	if save {
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		for jurisdiction, filings := range byJurisdiction {
			n, err := st.SaveFilings(ctx, operator, jurisdiction, filings)
			if err != nil {
				return err
			}
			fmt.Printf("Saved %d filings for %s/%s\n", n, operator, jurisdiction)
		}
	}

	w := os.Stdout
	if outputPath != "" {
		if w, err = os.Create(outputPath); err != nil {
			return eris.Wrapf(err, "normalize: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(byJurisdiction), "normalize: encode filings")
}
