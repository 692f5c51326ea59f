package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gtj-aero/trustscore-cli/internal/model"
	"github.com/gtj-aero/trustscore-cli/internal/store"
	"github.com/gtj-aero/trustscore-cli/internal/trustscore"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score a manifest of operators concurrently",
	Long: `Score every operator listed in a manifest file.

The manifest is a JSON array of evidence path sets, one per operator:

  [
    {"profile": "skyline.json", "events": "skyline_events.json",
     "filings": "skyline_ucc.json"},
    {"profile": "crosswind.json", "events_csv": "crosswind_ntsb.csv"}
  ]

Operators are scored concurrently up to batch.max_concurrent_operators.
One operator's failure is logged and counted; it never aborts the rest.

Examples:
  trustscore-cli batch --manifest operators.json --save
  trustscore-cli batch --manifest operators.json --narrative --concurrency 10`,
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.String("manifest", "", "manifest JSON file (required)")
	f.Int("concurrency", 0, "max operators scored at once (overrides config)")
	f.Bool("save", false, "persist scores and filings to the store")
	f.Bool("narrative", false, "generate analyst prose via the Anthropic API")
	_ = batchCmd.MarkFlagRequired("manifest")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if v, _ := cmd.Flags().GetBool("narrative"); v {
		cfg.Narrative.Enabled = true
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		cfg.Batch.MaxConcurrentOperators = v
	}
	if err := cfg.Validate("batch"); err != nil {
		return err
	}

	manifestPath, _ := cmd.Flags().GetString("manifest")
	save, _ := cmd.Flags().GetBool("save")

	entries, err := loadManifest(manifestPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Manifest is empty; nothing to score.")
		return nil
	}

	var st store.Store
	if save {
		if st, err = openStore(ctx); err != nil {
			return err
		}
		defer st.Close()
	}

	var narrator trustscore.NarrativeGenerator
	if cfg.Narrative.Enabled {
		gen := newGenerator()
		// Warm the prompt cache once so the fan-out reads the shared
		// system prompt from cache.
		gen.Prime(ctx)
		narrator = gen
	}
	calc := trustscore.NewCalculator(calcConfig(), narrator)

	log := zap.L().With(zap.String("command", "batch"))
	log.Info("starting batch scoring",
		zap.Int("operators", len(entries)),
		zap.Int("concurrency", cfg.Batch.MaxConcurrentOperators),
	)

	scored, failed, tierCounts := runManifest(ctx, entries, cfg.Batch.MaxConcurrentOperators,
		func(ctx context.Context, entry evidencePaths) (*model.ScoreResult, error) {
			return scoreOperator(ctx, calc, st, entry)
		})
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "batch: interrupted")
	}

	log.Info("batch scoring complete",
		zap.Int("scored", scored),
		zap.Int("failed", failed),
	)
	printBatchSummary(scored, failed, tierCounts)
	return nil
}

// scoreFunc scores one manifest entry.
type scoreFunc func(ctx context.Context, entry evidencePaths) (*model.ScoreResult, error)

// runManifest fans the entries out over a bounded errgroup. One entry's
// failure is counted and logged; it never aborts the rest of the run.
func runManifest(ctx context.Context, entries []evidencePaths, concurrency int, score scoreFunc) (int, int, map[model.ScoreTier]int) {
	var scored, failed atomic.Int64
	var mu sync.Mutex
	tierCounts := make(map[model.ScoreTier]int)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, entry := range entries {
		g.Go(func() error {
			result, err := score(gctx, entry)
			if err != nil {
				failed.Add(1)
				zap.L().Warn("batch: operator scoring failed",
					zap.String("profile", entry.Profile),
					zap.Error(err),
				)
				return nil
			}
			scored.Add(1)
			mu.Lock()
			tierCounts[result.ScoreTier]++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are counted

	return int(scored.Load()), int(failed.Load()), tierCounts
}

func loadManifest(path string) ([]evidencePaths, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read manifest %s", path)
	}
	var entries []evidencePaths
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "batch: parse manifest %s", path)
	}
	for i, e := range entries {
		if e.Profile == "" {
			return nil, eris.Errorf("batch: manifest entry %d has no profile", i)
		}
	}
	return entries, nil
}

func printBatchSummary(scored, failed int, tiers map[model.ScoreTier]int) {
	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Scored: %d\n", scored)
	fmt.Printf("Failed: %d\n", failed)
	for _, tier := range []model.ScoreTier{model.TierPinnacle, model.TierPremier, model.TierBenchmark, model.TierStandard} {
		if n := tiers[tier]; n > 0 {
			fmt.Printf("  %-10s %d\n", tier, n)
		}
	}
}
