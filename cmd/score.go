package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gtj-aero/trustscore-cli/internal/evidence"
	"github.com/gtj-aero/trustscore-cli/internal/model"
	"github.com/gtj-aero/trustscore-cli/internal/narrative"
	"github.com/gtj-aero/trustscore-cli/internal/normalize"
	"github.com/gtj-aero/trustscore-cli/internal/resilience"
	"github.com/gtj-aero/trustscore-cli/internal/store"
	"github.com/gtj-aero/trustscore-cli/internal/trustscore"
	"github.com/gtj-aero/trustscore-cli/pkg/anthropic"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one operator from evidence files",
	Long: `Compute a TrustScore for a single charter operator.

Evidence is loaded from local files: an operator profile (JSON), incident
events (JSON or an NTSB-style CSV export), and optionally raw UCC filing
pages as captured by the jurisdiction scrapers. Filing pages are
normalized to the canonical shape before scoring.

Examples:
  # Score from a profile and an events export
  trustscore-cli score --profile skyline.json --events events.json

  # Include UCC filings and persist the result
  trustscore-cli score --profile skyline.json --events-csv ntsb.csv \
    --filings ucc_pages.json --save

  # Add analyst prose (requires anthropic key)
  trustscore-cli score --profile skyline.json --narrative --format json`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("profile", "", "operator profile JSON file (required)")
	f.String("events", "", "fleet incident events JSON file")
	f.String("events-csv", "", "fleet incident events CSV export (NTSB shape)")
	f.String("tail-events", "", "tail-specific incident events JSON file")
	f.String("filings", "", "raw UCC filing pages JSON file")
	f.String("format", "table", "output format: table or json")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("save", false, "persist the score (and filings, if given) to the store")
	f.Bool("narrative", false, "generate analyst prose via the Anthropic API")
	_ = scoreCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(scoreCmd)
}

// evidencePaths names the files one operator's score is computed from. It
// doubles as the batch manifest entry shape.
type evidencePaths struct {
	Profile    string `json:"profile"`
	Events     string `json:"events,omitempty"`
	EventsCSV  string `json:"events_csv,omitempty"`
	TailEvents string `json:"tail_events,omitempty"`
	Filings    string `json:"filings,omitempty"`
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if v, _ := cmd.Flags().GetBool("narrative"); v {
		cfg.Narrative.Enabled = true
	}
	if err := cfg.Validate("score"); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "json" {
		return eris.Errorf("score: --format must be table or json (got %q)", format)
	}
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")

	paths := evidencePaths{}
	paths.Profile, _ = cmd.Flags().GetString("profile")
	paths.Events, _ = cmd.Flags().GetString("events")
	paths.EventsCSV, _ = cmd.Flags().GetString("events-csv")
	paths.TailEvents, _ = cmd.Flags().GetString("tail-events")
	paths.Filings, _ = cmd.Flags().GetString("filings")

	var st store.Store
	if save {
		var err error
		if st, err = openStore(ctx); err != nil {
			return err
		}
		defer st.Close()
	}

	calc := trustscore.NewCalculator(calcConfig(), newNarrator())

	result, err := scoreOperator(ctx, calc, st, paths)
	if err != nil {
		return err
	}

	return outputResult(result, format, outputPath)
}

// scoreOperator loads one operator's evidence, normalizes any raw filing
// pages, and runs the calculation. When st is non-nil the normalized
// filings and the score are persisted.
func scoreOperator(ctx context.Context, calc *trustscore.Calculator, st store.Store, paths evidencePaths) (*model.ScoreResult, error) {
	profile, err := evidence.LoadOperatorProfile(paths.Profile)
	if err != nil {
		return nil, err
	}
	if profile.Aircraft == nil {
		return nil, eris.Errorf("score: profile %s has no aircraft record", paths.Profile)
	}

	var fleetEvents []model.Event
	switch {
	case paths.Events != "":
		if fleetEvents, err = evidence.LoadEvents(paths.Events); err != nil {
			return nil, err
		}
	case paths.EventsCSV != "":
		if fleetEvents, err = evidence.LoadEventsCSV(paths.EventsCSV); err != nil {
			return nil, err
		}
	}

	var tailEvents []model.Event
	if paths.TailEvents != "" {
		if tailEvents, err = evidence.LoadEvents(paths.TailEvents); err != nil {
			return nil, err
		}
	}

	var filings []model.NormalizedFiling
	if paths.Filings != "" {
		pages, err := evidence.LoadFilingPages(paths.Filings)
		if err != nil {
			return nil, err
		}
		byJurisdiction := normalize.NormalizeAll(pages)
		for jurisdiction, fs := range byJurisdiction {
			filings = append(filings, fs...)
			if st != nil {
				if _, err := st.SaveFilings(ctx, profile.OperatorName, jurisdiction, fs); err != nil {
					return nil, err
				}
			}
		}
	}

	fleet := model.FleetScoreInput{
		OperatorName:      profile.OperatorName,
		OperatorAgeYears:  profile.OperatorAgeYears,
		FleetSize:         profile.FleetSize,
		FleetEvents:       fleetEvents,
		UCCFilings:        filings,
		ArgusRating:       profile.ArgusRating,
		WyvernRating:      profile.WyvernRating,
		BankruptcyHistory: profile.BankruptcyHistory,
	}
	tail := model.TailScoreInput{
		AircraftAgeYears: profile.Aircraft.AircraftAgeYears,
		OperatorName:     profile.OperatorName,
		RegisteredOwner:  profile.Aircraft.RegisteredOwner,
		FractionalOwner:  profile.Aircraft.FractionalOwner,
		TailEvents:       tailEvents,
	}

	result, err := calc.CalculateTrustScore(ctx, fleet, tail)
	if err != nil {
		return nil, err
	}

	if st != nil {
		saved, err := st.SaveScore(ctx, profile.OperatorName, profile.Aircraft.TailNumber, result)
		if err != nil {
			return nil, err
		}
		zap.L().Info("score: saved",
			zap.String("id", saved.ID),
			zap.String("operator", saved.OperatorName),
		)
	}

	return result, nil
}

func calcConfig() trustscore.CalcConfig {
	return trustscore.CalcConfig{
		OperatorWeight: cfg.Scoring.OperatorWeight,
		TailWeight:     cfg.Scoring.TailWeight,
		Baseline:       cfg.Scoring.Baseline,
		Spread:         cfg.Scoring.Spread,
		ConfidenceRate: cfg.Scoring.ConfidenceRate,
	}
}

// newNarrator builds the prose generator, or returns nil when narration is
// disabled so the calculator skips it entirely.
func newNarrator() trustscore.NarrativeGenerator {
	if !cfg.Narrative.Enabled {
		return nil
	}
	return newGenerator()
}

func newGenerator() *narrative.Generator {
	return narrative.NewGenerator(anthropic.NewClient(cfg.Anthropic.Key), narrative.Config{
		Model:             cfg.Narrative.Model,
		MaxTokens:         cfg.Narrative.MaxTokens,
		Temperature:       cfg.Narrative.Temperature,
		RequestTimeoutSec: cfg.Narrative.RequestTimeoutSec,
		RequestsPerSecond: cfg.Narrative.RequestsPerSecond,
		Retry: resilience.FromRetryConfig(
			cfg.Retry.MaxAttempts,
			cfg.Retry.InitialBackoffMs,
			cfg.Retry.MaxBackoffMs,
			cfg.Retry.Multiplier,
			cfg.Retry.JitterFraction,
		),
		Breaker: resilience.FromCircuitConfig(cfg.Retry.FailureThreshold, cfg.Retry.ResetTimeoutSecs),
	})
}

func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func outputResult(result *model.ScoreResult, format, outputPath string) error {
	w := os.Stdout
	if outputPath != "" {
		var err error
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "score: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "score: encode result")
	default:
		printScoreTable(w, result)
		return nil
	}
}

func printScoreTable(w *os.File, r *model.ScoreResult) {
	fmt.Fprintf(w, "TrustScore:  %.2f / 100  (%s)\n", r.TrustScore, r.ScoreTier)
	fmt.Fprintf(w, "Fleet score: %.2f\n", r.FleetScore)
	fmt.Fprintf(w, "Confidence:  %.4f\n", r.ConfidenceScore)
	fmt.Fprintf(w, "\nOperator sub-score: %.2f   (%s)\n", r.OperatorScore, r.FleetBreakdown.Formula)
	printComponents(w, r.FleetBreakdown)
	fmt.Fprintf(w, "\nAircraft sub-score: %.2f   (%s)\n", r.TailScore, r.TailBreakdown.Formula)
	printComponents(w, r.TailBreakdown)

	if r.FleetBreakdown.Explanation != "" {
		fmt.Fprintf(w, "\nFleet analysis:\n%s\n", r.FleetBreakdown.Explanation)
	}
	if r.TailBreakdown.Explanation != "" {
		fmt.Fprintf(w, "\nAircraft analysis:\n%s\n", r.TailBreakdown.Explanation)
	}
	if r.AIInsights != "" {
		fmt.Fprintf(w, "\nAnalyst summary:\n%s\n", r.AIInsights)
	}
}

func printComponents(w *os.File, b model.Breakdown) {
	names := make([]string, 0, len(b.Components))
	for name := range b.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := b.Components[name]
		fmt.Fprintf(w, "  %-4s %8.2f  %s\n", name, c.Value, c.Description)
	}
}
