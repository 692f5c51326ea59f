package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gtj-aero/trustscore-cli/internal/model"
	"github.com/gtj-aero/trustscore-cli/internal/store"
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "List stored scores",
	Long: `List previously saved scores, newest first.

Examples:
  trustscore-cli scores
  trustscore-cli scores --operator "Skyline Charters"
  trustscore-cli scores --tier Pinnacle --limit 20`,
	RunE: runScores,
}

func init() {
	f := scoresCmd.Flags()
	f.String("operator", "", "filter by operator name")
	f.String("tier", "", "filter by tier (Pinnacle, Premier, Benchmark, Standard)")
	f.Int("limit", 50, "maximum rows")
	f.Int("offset", 0, "rows to skip")

	rootCmd.AddCommand(scoresCmd)
}

func runScores(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("score"); err != nil {
		return err
	}

	operator, _ := cmd.Flags().GetString("operator")
	tier, _ := cmd.Flags().GetString("tier")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	scores, err := st.ListScores(ctx, store.ScoreFilter{
		OperatorName: operator,
		Tier:         model.ScoreTier(tier),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		fmt.Println("No stored scores match.")
		return nil
	}

	fmt.Printf("%-36s %-30s %-10s %7s %-10s %s\n",
		"ID", "Operator", "Tail", "Score", "Tier", "Calculated")
	for _, s := range scores {
		fmt.Printf("%-36s %-30s %-10s %7.2f %-10s %s\n",
			s.ID, s.OperatorName, s.TailNumber,
			s.Result.TrustScore, s.Result.ScoreTier,
			s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
