package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/simulate"
	"github.com/jengzang/healthtwin-backend/internal/stats"
	"github.com/jengzang/healthtwin-backend/internal/ui"
)

func newSimulateCmd() *cobra.Command {
	var f runFlags
	var quiet bool
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the engine for N days with a seeded completion chance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.validate(); err != nil {
				return err
			}
			res, err := simulate.Run(simulate.Config{
				Goal:        models.Goal(f.goal),
				Plan:        models.Plan(f.plan),
				Age:         f.age,
				Days:        f.days,
				Seed:        f.seed,
				Probability: f.probability,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Title.Render(fmt.Sprintf("Simulated %d days of %s (%s)", f.days, models.Goal(f.goal).DisplayName(), models.Plan(f.plan).DisplayName())))
			if !quiet {
				for _, d := range res.Days {
					mark := ui.Bad.Render("x")
					if d.FullDay {
						mark = ui.Good.Render("✓")
					}
					fmt.Fprintf(out, "%s day %3d  done %d  missed %d  lvl %d  xp %3d  coins %4d  streak %2d  score %s\n",
						mark, d.Day, d.Completed, d.Failed, d.Level, d.XP, d.Coins, d.Streak, ui.Score(d.HealthScore))
				}
			}

			st := res.State
			trend := stats.SummarizeHistory(st.History)
			summary := []string{
				ui.LabelValue("Level", st.Level),
				ui.LabelValue("Coins", st.Coins),
				ui.LabelValue("Streak", st.Streak),
				ui.LabelValue("Completion rate", fmt.Sprintf("%.1f%%", st.CompletionRate())),
				ui.LabelValue("Health score", ui.Score(st.HealthScore)),
				ui.LabelValue("Body state", st.BodyState),
				ui.LabelValue("Score slope/day", trend.SlopePerDay),
				ui.LabelValue("Longest streak", trend.LongestStreak),
			}
			fmt.Fprintln(out, ui.Panel.Render(strings.Join(summary, "\n")))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the summary")
	return cmd
}
